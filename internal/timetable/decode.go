package timetable

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// rawSchedule mirrors the on-disk document. Unknown keys such as "$schema"
// are ignored.
type rawSchedule struct {
	Weeks    [][]string            `json:"weeks" yaml:"weeks"`
	Subjects map[string]rawSubject `json:"subjects" yaml:"subjects"`
	Teachers map[string]rawTeacher `json:"teachers" yaml:"teachers"`
	Schedule []rawEntry            `json:"schedule" yaml:"schedule"`
}

type rawSubject struct {
	Name  string `json:"name" yaml:"name"`
	Short string `json:"short,omitempty" yaml:"short,omitempty"`
}

type rawTeacher struct {
	Name string `json:"name" yaml:"name"`
}

type rawLocation struct {
	Building string `json:"building" yaml:"building"`
	Room     string `json:"room" yaml:"room"`
}

type rawWeeks struct {
	From   *int   `json:"from,omitempty" yaml:"from,omitempty"`
	To     *int   `json:"to,omitempty" yaml:"to,omitempty"`
	Parity string `json:"parity,omitempty" yaml:"parity,omitempty"`
	Only   []int  `json:"only,omitempty" yaml:"only,omitempty"`
}

type rawEntry struct {
	Subject  string       `json:"subject" yaml:"subject"`
	Type     string       `json:"type" yaml:"type"`
	Day      string       `json:"day" yaml:"day"`
	Time     string       `json:"time" yaml:"time"`
	Location *rawLocation `json:"location,omitempty" yaml:"location,omitempty"`
	Teachers []string     `json:"teachers,omitempty" yaml:"teachers,omitempty"`
	Weeks    *rawWeeks    `json:"weeks,omitempty" yaml:"weeks,omitempty"`
}

// DecodeJSON reads a JSON schedule document.
func DecodeJSON(r io.Reader) (*Schedule, error) {
	var raw rawSchedule
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode schedule json")
	}
	return raw.build()
}

// DecodeYAML reads a YAML schedule document with the same shape as the JSON one.
func DecodeYAML(r io.Reader) (*Schedule, error) {
	var raw rawSchedule
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode schedule yaml")
	}
	return raw.build()
}

func (raw rawSchedule) build() (*Schedule, error) {
	weeks := make([]Week, 0, len(raw.Weeks))
	for i, rw := range raw.Weeks {
		if len(rw) != DaysPerWeek {
			return nil, errors.Wrapf(ErrInvalidWeek, "weeks[%d]: expected %d dates per week, got %d", i, DaysPerWeek, len(rw))
		}
		var w Week
		for j, s := range rw {
			d, err := ParseDate(s)
			if err != nil {
				return nil, errors.Wrapf(err, "weeks[%d][%d]", i, j)
			}
			w[j] = d
		}
		weeks = append(weeks, w)
	}

	subjects := make(map[string]Subject, len(raw.Subjects))
	for id, rs := range raw.Subjects {
		subjects[id] = Subject{Name: rs.Name, Short: rs.Short}
	}
	teachers := make(map[string]Teacher, len(raw.Teachers))
	for id, rt := range raw.Teachers {
		teachers[id] = Teacher{Name: rt.Name}
	}

	entries := make([]ClassEntry, 0, len(raw.Schedule))
	for i, re := range raw.Schedule {
		e, err := re.build()
		if err != nil {
			return nil, errors.Wrapf(err, "schedule[%d]", i)
		}
		entries = append(entries, e)
	}

	return New(weeks, subjects, teachers, entries), nil
}

func (re rawEntry) build() (ClassEntry, error) {
	category, err := ParseCategory(re.Type)
	if err != nil {
		return ClassEntry{}, errors.Wrap(err, "type")
	}
	weekday, err := ParseWeekday(re.Day)
	if err != nil {
		return ClassEntry{}, errors.Wrap(err, "day")
	}
	period, err := ParseTimePeriod(re.Time)
	if err != nil {
		return ClassEntry{}, errors.Wrap(err, "time")
	}

	e := ClassEntry{
		Subject:  re.Subject,
		Category: category,
		Weekday:  weekday,
		Time:     period,
		Teachers: re.Teachers,
	}
	if re.Location != nil {
		e.Location = &Location{Building: re.Location.Building, Room: re.Location.Room}
	}
	if re.Weeks != nil {
		parity, err := ParseWeekParity(re.Weeks.Parity)
		if err != nil {
			return ClassEntry{}, errors.Wrap(err, "weeks.parity")
		}
		ws, err := NewWeekSelector(re.Weeks.From, re.Weeks.To, parity, re.Weeks.Only)
		if err != nil {
			return ClassEntry{}, errors.Wrap(err, "weeks")
		}
		e.Weeks = &ws
	}
	return e, nil
}
