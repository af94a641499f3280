package timetable

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, errors.Wrapf(ErrInvalidDate, "%q (expected YYYY-MM-DD)", s)
	}
	return DateOf(t), nil
}

// DateOf returns the date of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Weekday returns the actual day of the week of d.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// At binds the wall-clock time t on date d in loc.
//
// Go's time.Date silently normalizes wall times that fall into a DST gap and
// picks one side of a DST overlap; both cases are reported as
// ErrAmbiguousLocalTime instead.
func (d Date) At(t TimeOfDay, loc *time.Location) (time.Time, error) {
	wall := time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, 0, 0, time.UTC)

	// Offsets in effect a little more than a day on each side cover every
	// interpretation the wall time can have.
	var found []time.Time
	for _, probe := range []time.Time{wall.Add(-26 * time.Hour), wall.Add(26 * time.Hour)} {
		_, off := probe.In(loc).Zone()
		cand := wall.Add(-time.Duration(off) * time.Second)
		if _, candOff := cand.In(loc).Zone(); candOff != off {
			continue
		}
		if len(found) == 0 || !found[0].Equal(cand) {
			found = append(found, cand)
		}
	}

	switch len(found) {
	case 1:
		return found[0].In(loc), nil
	case 0:
		return time.Time{}, errors.Wrapf(ErrAmbiguousLocalTime, "%s %s does not exist in %s", d, t, loc)
	default:
		return time.Time{}, errors.Wrapf(ErrAmbiguousLocalTime, "%s %s is ambiguous in %s", d, t, loc)
	}
}

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// ParseWeekday accepts a full English weekday name in any case.
func ParseWeekday(s string) (time.Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, errors.Wrapf(ErrInvalidWeekday, "%q", s)
	}
	return wd, nil
}
