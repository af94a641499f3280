package timetable

import "github.com/pkg/errors"

// Errors about schedule content wrap exactly one of these. Malformed JSON or
// YAML syntax is reported by the decoder as is.
var (
	ErrInvalidTimePeriod = errors.New("invalid time period")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidWeek       = errors.New("invalid week")
	ErrInvalidWeekday    = errors.New("invalid weekday")
	ErrInvalidCategory   = errors.New("invalid class type")
	ErrInvalidParity     = errors.New("invalid week parity")

	ErrDateNotInTerm = errors.New("date not found in term")

	ErrUnknownSubject = errors.New("subject not found")
	ErrUnknownTeacher = errors.New("teacher not found")

	ErrAmbiguousLocalTime = errors.New("ambiguous or non-existent local time")
)
