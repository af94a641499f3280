package ics

import (
	"slices"

	"classcal/internal/model"
)

// DiffResult lists the UIDs that differ between two calendars.
type DiffResult struct {
	Added   []string // present only in the new calendar
	Removed []string // present only in the old calendar
	Changed []string // present in both with different time, title or place
}

// Empty reports whether the calendars are equivalent.
func (d DiffResult) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Diff compares calendars by UID. When a UID occurs more than once the last
// occurrence wins. Result lists are sorted.
func Diff(old, updated []model.Event) DiffResult {
	oldByUID := indexByUID(old)
	newByUID := indexByUID(updated)

	var d DiffResult
	for uid, ne := range newByUID {
		oe, ok := oldByUID[uid]
		if !ok {
			d.Added = append(d.Added, uid)
			continue
		}
		if !sameEvent(oe, ne) {
			d.Changed = append(d.Changed, uid)
		}
	}
	for uid := range oldByUID {
		if _, ok := newByUID[uid]; !ok {
			d.Removed = append(d.Removed, uid)
		}
	}

	slices.Sort(d.Added)
	slices.Sort(d.Removed)
	slices.Sort(d.Changed)
	return d
}

func indexByUID(events []model.Event) map[string]model.Event {
	m := make(map[string]model.Event, len(events))
	for _, ev := range events {
		m[ev.UID] = ev
	}
	return m
}

// sameEvent ignores Created, which changes on every generation.
func sameEvent(a, b model.Event) bool {
	return a.Start.Equal(b.Start) &&
		a.End.Equal(b.End) &&
		a.Summary == b.Summary &&
		a.Location == b.Location &&
		a.Description == b.Description
}
