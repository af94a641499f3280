package ics

import (
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/pkg/errors"

	"classcal/internal/model"
)

const (
	// DefaultProdID identifies this generator in the PRODID property.
	DefaultProdID = "-//classcal//Planner//PL"
	// Version is the iCalendar VERSION value.
	Version = "2.0"

	stampLayout = "20060102T150405"
)

// EncodeOptions controls the calendar envelope.
type EncodeOptions struct {
	// ProdID overrides DefaultProdID when non-empty.
	ProdID string
}

// Encode writes events as a VCALENDAR in iCalendar format.
//
// Each timestamp is written as a local wall-clock stamp with an explicit
// TZID parameter naming the event's Location. Text values are escaped by the
// library: newlines become the two characters `\n`, and `,` `;` `\` are
// backslash-escaped as well, as RFC 5545 TEXT requires. All lines end with
// CRLF regardless of the host platform.
func Encode(w io.Writer, events []model.Event, opts EncodeOptions) error {
	cal := NewCalendar(events, opts)
	if err := cal.SerializeTo(w, ical.WithNewLineWindows); err != nil {
		return errors.Wrap(err, "write calendar")
	}
	return nil
}

// NewCalendar builds the calendar object for events without serializing it.
func NewCalendar(events []model.Event, opts EncodeOptions) *ical.Calendar {
	prodID := opts.ProdID
	if prodID == "" {
		prodID = DefaultProdID
	}

	cal := ical.NewCalendarFor("classcal")
	cal.SetProductId(prodID)
	cal.SetVersion(Version)

	for _, ev := range events {
		ve := cal.AddEvent(ev.UID)
		setZoned(ve, ical.ComponentProperty("DTSTAMP"), ev.Created)
		setZoned(ve, ical.ComponentPropertyDtStart, ev.Start)
		setZoned(ve, ical.ComponentPropertyDtEnd, ev.End)
		ve.SetSummary(ev.Summary)
		ve.SetLocation(ev.Location)
		ve.SetDescription(ev.Description)
	}
	return cal
}

// setZoned sets a DATE-TIME property as "<prop>;TZID=<zone>:YYYYMMDDTHHMMSS".
func setZoned(ve *ical.VEvent, prop ical.ComponentProperty, t time.Time) {
	ve.SetProperty(prop, t.Format(stampLayout), &ical.KeyValues{
		Key:   "TZID",
		Value: []string{t.Location().String()},
	})
}
