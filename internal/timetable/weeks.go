package timetable

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// WeekParity restricts a class to odd or even weeks of the term. Week 1 is odd.
type WeekParity int

const (
	ParityAll WeekParity = iota
	ParityOdd
	ParityEven
)

// ParseWeekParity accepts "all", "odd" or "even". The empty string is All.
func ParseWeekParity(s string) (WeekParity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ParityAll, nil
	case "odd":
		return ParityOdd, nil
	case "even":
		return ParityEven, nil
	}
	return ParityAll, errors.Wrapf(ErrInvalidParity, "%q", s)
}

// ParityOf returns Odd or Even for a 1-indexed week number; never All.
func ParityOf(week int) WeekParity {
	if (week-1)%2 == 0 {
		return ParityOdd
	}
	return ParityEven
}

// Includes reports whether week matches p.
func (p WeekParity) Includes(week int) bool {
	if p == ParityAll {
		return true
	}
	return p == ParityOf(week)
}

func (p WeekParity) String() string {
	switch p {
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	default:
		return "all"
	}
}

// WeekSelector decides which weeks of the term a class entry occurs in.
// The zero value matches every week.
type WeekSelector struct {
	// From and To are inclusive 1-indexed bounds; 0 means unbounded.
	From int
	To   int

	Parity WeekParity

	// Only, when non-nil, is an allow-list of week numbers. An empty
	// non-nil list matches nothing.
	Only []int
}

// NewWeekSelector builds a selector, rejecting non-positive week numbers.
// Nil from/to mean unbounded; nil only means no allow-list.
func NewWeekSelector(from, to *int, parity WeekParity, only []int) (WeekSelector, error) {
	ws := WeekSelector{Parity: parity}
	if from != nil {
		if *from < 1 {
			return WeekSelector{}, errors.Wrapf(ErrInvalidWeek, "from: %d", *from)
		}
		ws.From = *from
	}
	if to != nil {
		if *to < 1 {
			return WeekSelector{}, errors.Wrapf(ErrInvalidWeek, "to: %d", *to)
		}
		ws.To = *to
	}
	if only != nil {
		for _, w := range only {
			if w < 1 {
				return WeekSelector{}, errors.Wrapf(ErrInvalidWeek, "only: %d", w)
			}
		}
		ws.Only = slices.Clone(only)
		if ws.Only == nil {
			ws.Only = []int{}
		}
	}
	return ws, nil
}

// HappensIn reports whether the 1-indexed week satisfies the selector.
func (ws WeekSelector) HappensIn(week int) bool {
	if ws.Only != nil && !slices.Contains(ws.Only, week) {
		return false
	}
	if ws.From != 0 && week < ws.From {
		return false
	}
	if ws.To != 0 && week > ws.To {
		return false
	}
	return ws.Parity.Includes(week)
}
