package expand

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	appLog "classcal/internal/log"
	"classcal/internal/model"
	"classcal/internal/timetable"
)

// uidSeparator joins the UID components.
const uidSeparator = "-"

// Config controls how a schedule is materialized.
type Config struct {
	// Location is the timezone events are bound to. If nil, time.Local is used.
	Location *time.Location

	// Now supplies the generation timestamp. If nil, time.Now is used.
	Now func() time.Time
}

// Mismatch records a term week slot whose date does not fall on the weekday
// its position implies.
type Mismatch struct {
	Week     int // 1-indexed
	Slot     int // 0-indexed, 0 = Monday
	Date     timetable.Date
	Expected time.Weekday
	Actual   time.Weekday
}

// Result wraps the materialized events and any term data inconsistencies
// found on the way.
type Result struct {
	Events     []model.Event
	Mismatches []Mismatch
}

func (cfg Config) normalize() Config {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return cfg
}

// Expand turns every (class entry × matching term date) pair into an event.
//
// Events are ordered by week, then weekday slot, then entry declaration order.
// Slot dates that disagree with their positional weekday are logged and
// matched using the date's actual weekday. Any unresolved subject or teacher
// id, or a class time that is ambiguous in cfg.Location, aborts the whole
// expansion and no events are returned.
func Expand(s *timetable.Schedule, cfg Config) (Result, error) {
	cfg = cfg.normalize()
	created := cfg.Now().In(cfg.Location)

	var result Result
	events := make([]model.Event, 0)

	for wi, week := range s.Weeks {
		weekNo := wi + 1
		for slot, date := range week {
			expected := timetable.SlotWeekday(slot)
			actual := date.Weekday()
			if expected != actual {
				appLog.Warn("weekday mismatch in term calendar",
					"week", weekNo,
					"slot", slot+1,
					"date", date.String(),
					"expected", expected.String(),
					"actual", actual.String(),
				)
				result.Mismatches = append(result.Mismatches, Mismatch{
					Week:     weekNo,
					Slot:     slot,
					Date:     date,
					Expected: expected,
					Actual:   actual,
				})
			}

			for entry := range s.ClassesOn(weekNo, actual) {
				ev, err := makeEvent(s, entry, weekNo, date, created, cfg.Location)
				if err != nil {
					return Result{}, errors.Wrapf(err, "week %d, %s", weekNo, date)
				}
				events = append(events, ev)
			}
		}
	}

	result.Events = events
	return result, nil
}

// ExpandDay materializes the classes of a single term date.
func ExpandDay(s *timetable.Schedule, date timetable.Date, cfg Config) ([]model.Event, error) {
	cfg = cfg.normalize()
	created := cfg.Now().In(cfg.Location)

	weekNo, weekday, err := s.GetDay(date)
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0)
	for entry := range s.ClassesOn(weekNo, weekday) {
		ev, err := makeEvent(s, entry, weekNo, date, created, cfg.Location)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// makeEvent resolves names and binds the entry's time period to date in loc.
func makeEvent(s *timetable.Schedule, entry timetable.ClassEntry, weekNo int, date timetable.Date, created time.Time, loc *time.Location) (model.Event, error) {
	subject, err := s.Subject(entry.Subject)
	if err != nil {
		return model.Event{}, err
	}
	teachers, err := s.TeacherNames(entry)
	if err != nil {
		return model.Event{}, err
	}

	start, end, err := entry.Time.On(date, loc)
	if err != nil {
		return model.Event{}, errors.Wrapf(err, "%s %s", entry.Subject, entry.Time)
	}

	return model.Event{
		UID:         UID(entry, weekNo-1, date.Weekday()),
		Created:     created,
		Start:       start,
		End:         end,
		Summary:     entry.Category.Glyph() + " " + subject.Name,
		Description: description(entry.Category, teachers),
		Location:    entry.LocationString(),
		Week:        weekNo,
	}, nil
}

// UID builds the event identifier from the category name, subject id,
// abbreviated weekday ("Wed"), 0-indexed week and start time. Entries that
// differ only in teachers or location produce the same UID.
func UID(entry timetable.ClassEntry, weekIndex int, weekday time.Weekday) string {
	return strings.Join([]string{
		entry.Category.DisplayName(),
		strings.ReplaceAll(entry.Subject, " ", "_"),
		weekday.String()[:3],
		strconv.Itoa(weekIndex),
		// HHMM
		strings.ReplaceAll(entry.Time.Start.String(), ":", ""),
	}, uidSeparator)
}

func description(c timetable.Category, teachers []string) string {
	if len(teachers) == 0 {
		return c.DisplayName()
	}
	return c.DisplayName() + "\n" + strings.Join(teachers, "\n")
}
