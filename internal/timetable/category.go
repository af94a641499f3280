package timetable

import (
	"strings"

	"github.com/pkg/errors"
)

// Category is the kind of class. The zero value is not a valid category.
type Category int

const (
	Lecture Category = iota + 1
	Lab
	Exercise
	Seminar
	PE
	Languages
	Project
)

// Categories lists every category in declaration order.
var Categories = []Category{Lecture, Lab, Exercise, Seminar, PE, Languages, Project}

// ParseCategory maps a schedule keyword ("lecture", "lab", ...) to a Category.
func ParseCategory(s string) (Category, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if c.Keyword() == k {
			return c, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidCategory, "%q", s)
}

// Keyword is the lowercase identifier used in schedule documents.
func (c Category) Keyword() string {
	switch c {
	case Lecture:
		return "lecture"
	case Lab:
		return "lab"
	case Exercise:
		return "exercise"
	case Seminar:
		return "seminar"
	case PE:
		return "pe"
	case Languages:
		return "languages"
	case Project:
		return "project"
	}
	return ""
}

// DisplayName is the human readable name shown in calendars.
func (c Category) DisplayName() string {
	switch c {
	case Lecture:
		return "Wykład"
	case Lab:
		return "Laboratorium"
	case Exercise:
		return "Ćwiczenia"
	case Seminar:
		return "Seminarium"
	case PE:
		return "Wychowanie Fizyczne"
	case Languages:
		return "Lektorat"
	case Project:
		return "Projekt"
	}
	return ""
}

// Glyph is the emoji prefixed to event summaries.
func (c Category) Glyph() string {
	switch c {
	case Lecture:
		return "📚"
	case Lab:
		return "🧪"
	case Exercise:
		return "🏋️"
	case Seminar:
		return "📝"
	case PE:
		return "🏃"
	case Languages:
		return "🗣️"
	case Project:
		return "🛠️"
	}
	return ""
}

func (c Category) String() string {
	return c.Keyword()
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.Keyword()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
