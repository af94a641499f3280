// Package timetable models a recurring weekly class timetable over an
// explicitly dated term and answers which classes happen on a given day.
package timetable

import (
	"iter"
	"time"

	"github.com/pkg/errors"
)

// DaysPerWeek is the number of dates in a term week, Monday to Friday.
const DaysPerWeek = 5

// Week holds the dates of one term week, positionally Monday..Friday.
type Week [DaysPerWeek]Date

// SlotWeekday is the weekday a week slot is expected to fall on.
func SlotWeekday(slot int) time.Weekday {
	return time.Monday + time.Weekday(slot)
}

type Subject struct {
	Name  string
	Short string
}

// DisplayName returns the short name when short is set and one exists.
func (s Subject) DisplayName(short bool) string {
	if short && s.Short != "" {
		return s.Short
	}
	return s.Name
}

type Teacher struct {
	Name string
}

// Schedule is the parsed timetable document. It is read-only after New.
type Schedule struct {
	Weeks    []Week
	Subjects map[string]Subject
	Teachers map[string]Teacher
	Entries  []ClassEntry

	// byDate maps a date to its 0-indexed week. When a date appears in
	// several weeks the first one wins.
	byDate map[Date]int
}

// New assembles a Schedule. References between entries and the
// subject/teacher maps are not checked here; see Subject and Teacher.
func New(weeks []Week, subjects map[string]Subject, teachers map[string]Teacher, entries []ClassEntry) *Schedule {
	if subjects == nil {
		subjects = map[string]Subject{}
	}
	if teachers == nil {
		teachers = map[string]Teacher{}
	}

	s := &Schedule{
		Weeks:    weeks,
		Subjects: subjects,
		Teachers: teachers,
		Entries:  entries,
		byDate:   make(map[Date]int, len(weeks)*DaysPerWeek),
	}
	for i, w := range weeks {
		for _, d := range w {
			if _, ok := s.byDate[d]; !ok {
				s.byDate[d] = i
			}
		}
	}
	return s
}

// GetDay resolves a calendar date to its 1-indexed term week and the date's
// actual weekday.
func (s *Schedule) GetDay(d Date) (week int, weekday time.Weekday, err error) {
	i, ok := s.byDate[d]
	if !ok {
		return 0, 0, errors.Wrapf(ErrDateNotInTerm, "%s", d)
	}
	return i + 1, d.Weekday(), nil
}

// ClassesOn yields the entries occurring on weekday of the 1-indexed week,
// in declaration order. The sequence is recomputed on every iteration.
func (s *Schedule) ClassesOn(week int, weekday time.Weekday) iter.Seq[ClassEntry] {
	return func(yield func(ClassEntry) bool) {
		for _, e := range s.Entries {
			if !e.HappensOn(week, weekday) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Subject looks up a subject by id.
func (s *Schedule) Subject(id string) (Subject, error) {
	subj, ok := s.Subjects[id]
	if !ok {
		return Subject{}, errors.Wrapf(ErrUnknownSubject, "%q", id)
	}
	return subj, nil
}

// Teacher looks up a teacher by id.
func (s *Schedule) Teacher(id string) (Teacher, error) {
	t, ok := s.Teachers[id]
	if !ok {
		return Teacher{}, errors.Wrapf(ErrUnknownTeacher, "%q", id)
	}
	return t, nil
}

// TeacherNames resolves the entry's teacher ids in order, failing on the
// first unknown id.
func (s *Schedule) TeacherNames(e ClassEntry) ([]string, error) {
	names := make([]string, 0, len(e.Teachers))
	for _, id := range e.Teachers {
		t, err := s.Teacher(id)
		if err != nil {
			return nil, err
		}
		names = append(names, t.Name)
	}
	return names, nil
}
