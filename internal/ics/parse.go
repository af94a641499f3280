package ics

import (
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/pkg/errors"

	appLog "classcal/internal/log"
	"classcal/internal/model"
)

// ParseEvents reads a previously exported calendar back into events.
//
//   - It relies on the library's TZID handling to construct time.Time values
//     with the right Location.
//   - VEVENTs without a UID are skipped and logged.
func ParseEvents(r io.Reader) ([]model.Event, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, errors.Wrap(err, "parse calendar")
	}

	events := make([]model.Event, 0)
	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(ve)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Warn("skipping calendar event", "err", perr.Error())
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("calendar parse completed", "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (model.Event, error) {
	var out model.Event

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = unescapeText(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = unescapeText(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = unescapeText(p.Value)
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, errors.Wrapf(err, "%s: DTSTART", out.UID)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return out, errors.Wrapf(err, "%s: DTEND", out.UID)
	}
	out.Start = start
	out.End = end

	if p := ve.GetProperty(ical.ComponentProperty("DTSTAMP")); p != nil {
		if t, err := parseStamp(p); err == nil {
			out.Created = t
		}
	}

	return out, nil
}

// parseStamp parses a DATE-TIME property honouring its TZID parameter.
func parseStamp(p *ical.IANAProperty) (time.Time, error) {
	v := strings.TrimSpace(p.Value)
	if strings.HasSuffix(v, "Z") {
		return time.Parse(stampLayout+"Z", v)
	}
	loc := time.Local
	if tzs, ok := p.ICalParameters["TZID"]; ok && len(tzs) > 0 {
		l, err := time.LoadLocation(tzs[0])
		if err != nil {
			return time.Time{}, errors.Wrapf(err, "TZID %q", tzs[0])
		}
		loc = l
	}
	return time.ParseInLocation(stampLayout, v, loc)
}

var textUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

// unescapeText reverses RFC 5545 TEXT escaping. Values the library already
// unescaped contain no backslash sequences and pass through unchanged.
func unescapeText(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	return textUnescaper.Replace(s)
}
