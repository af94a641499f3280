package timetable

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// TimeOfDay is a wall-clock time with minute resolution.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns the number of minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is earlier in the day than o.
func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.Minutes() < o.Minutes()
}

// TimeOfDayOf returns the wall-clock time of t, dropping seconds.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// TimePeriod is a half-open wall-clock interval [Start, End) without a date.
// Start < End is not enforced.
type TimePeriod struct {
	Start TimeOfDay
	End   TimeOfDay
}

// ParseTimePeriod parses "H:MM-H:MM" or "HH:MM-HH:MM", allowing whitespace
// around either side of the separator.
func ParseTimePeriod(s string) (TimePeriod, error) {
	parts := strings.Split(s, "-")
	switch {
	case len(parts) < 2:
		return TimePeriod{}, errors.Wrapf(ErrInvalidTimePeriod, "%q: expected format 'HH:MM-HH:MM'", s)
	case len(parts) > 2:
		return TimePeriod{}, errors.Wrapf(ErrInvalidTimePeriod, "%q: too many '-' separators", s)
	}

	start, err := parseTimeOfDay(parts[0])
	if err != nil {
		return TimePeriod{}, errors.Wrapf(ErrInvalidTimePeriod, "invalid start time %q", parts[0])
	}
	end, err := parseTimeOfDay(parts[1])
	if err != nil {
		return TimePeriod{}, errors.Wrapf(ErrInvalidTimePeriod, "invalid end time %q", parts[1])
	}
	return TimePeriod{Start: start, End: end}, nil
}

// parseTimeOfDay accepts a 1- or 2-digit hour and an exactly 2-digit minute.
// The "15" layout element already accepts both hour widths.
func parseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return TimeOfDay{}, err
	}
	return TimeOfDayOf(t), nil
}

func (p TimePeriod) String() string {
	return p.Start.String() + "-" + p.End.String()
}

// Duration is End minus Start; negative when the period is inverted.
func (p TimePeriod) Duration() time.Duration {
	return time.Duration(p.End.Minutes()-p.Start.Minutes()) * time.Minute
}

// On binds the period to a date in loc. Either bound falling into a DST gap or
// overlap fails with ErrAmbiguousLocalTime.
func (p TimePeriod) On(d Date, loc *time.Location) (start, end time.Time, err error) {
	start, err = d.At(p.Start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(err, "start")
	}
	end, err = d.At(p.End, loc)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(err, "end")
	}
	return start, end, nil
}

func (p TimePeriod) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *TimePeriod) UnmarshalText(b []byte) error {
	parsed, err := ParseTimePeriod(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
