package model

import "time"

// Event is a single concrete class occurrence, bound to a date and zone,
// ready to be written to a calendar.
type Event struct {
	// UID is stable across regenerations of the same timetable.
	UID string

	// Created is when the event was generated, not when the class was
	// authored.
	Created time.Time

	// Start / End carry the target timezone as their Location.
	Start time.Time
	End   time.Time

	Summary     string
	Description string
	Location    string

	// Week is the 1-indexed term week the event was expanded from.
	Week int
}

// Duration returns End - Start.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}
