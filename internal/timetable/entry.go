package timetable

import "time"

// Location is where a class takes place.
type Location struct {
	Building string
	Room     string
}

// String renders the location as "<room>/<building>".
func (l Location) String() string {
	return l.Room + "/" + l.Building
}

// ClassEntry is one recurring row of the weekly timetable.
type ClassEntry struct {
	Subject  string
	Category Category
	Weekday  time.Weekday
	Time     TimePeriod

	// Optional fields.
	Location *Location
	Teachers []string
	Weeks    *WeekSelector
}

// HappensOn reports whether the entry occurs on the given weekday of the
// given 1-indexed term week.
func (e ClassEntry) HappensOn(week int, weekday time.Weekday) bool {
	if e.Weekday != weekday {
		return false
	}
	if e.Weeks == nil {
		return true
	}
	return e.Weeks.HappensIn(week)
}

// LocationString returns "<room>/<building>" or "" when no location is set.
func (e ClassEntry) LocationString() string {
	if e.Location == nil {
		return ""
	}
	return e.Location.String()
}
