package timetable

import (
	"slices"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
)

func intp(v int) *int { return &v }

func matchingWeeks(ws WeekSelector, upTo int) []int {
	var out []int
	for w := 1; w <= upTo; w++ {
		if ws.HappensIn(w) {
			out = append(out, w)
		}
	}
	return out
}

func TestParityOf(t *testing.T) {
	assert.Equal(t, ParityOdd, ParityOf(1))
	assert.Equal(t, ParityEven, ParityOf(2))
	assert.Equal(t, ParityOdd, ParityOf(3))

	for w := 1; w <= 200; w++ {
		p := ParityOf(w)
		assert.NotEqual(t, ParityAll, p, "week %d", w)
		assert.True(t, p.Includes(w), "week %d", w)
		assert.True(t, ParityAll.Includes(w), "week %d", w)
	}
}

func TestParseWeekParity(t *testing.T) {
	tests := []struct {
		in      string
		want    WeekParity
		wantErr bool
	}{
		{in: "", want: ParityAll},
		{in: "all", want: ParityAll},
		{in: "Odd", want: ParityOdd},
		{in: "even", want: ParityEven},
		{in: "weekly", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekParity(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidParity))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWeekSelector_HappensIn(t *testing.T) {
	tests := []struct {
		name string
		ws   WeekSelector
		want []int
	}{
		{
			name: "zero value matches every week",
			ws:   WeekSelector{},
			want: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
		{
			name: "only list",
			ws:   WeekSelector{Only: []int{1, 3}},
			want: []int{1, 3},
		},
		{
			name: "empty only list matches nothing",
			ws:   WeekSelector{Only: []int{}},
			want: nil,
		},
		{
			name: "bounded odd weeks",
			ws:   WeekSelector{From: 1, To: 5, Parity: ParityOdd},
			want: []int{1, 3, 5},
		},
		{
			name: "even weeks from 4",
			ws:   WeekSelector{From: 4, Parity: ParityEven},
			want: []int{4, 6, 8, 10},
		},
		{
			name: "upper bound only",
			ws:   WeekSelector{To: 3},
			want: []int{1, 2, 3},
		},
		{
			name: "every constraint applies together",
			ws:   WeekSelector{From: 2, To: 8, Parity: ParityEven, Only: []int{1, 2, 3, 8, 10}},
			want: []int{2, 8},
		},
		{
			name: "inverted bounds match nothing",
			ws:   WeekSelector{From: 6, To: 2},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchingWeeks(tt.ws, 10))
		})
	}
}

func TestNewWeekSelector(t *testing.T) {
	ws, err := NewWeekSelector(intp(2), intp(6), ParityOdd, nil)
	require.NoError(t, err)
	assert.Equal(t, WeekSelector{From: 2, To: 6, Parity: ParityOdd}, ws)
	assert.Nil(t, ws.Only)

	only := []int{4, 5}
	ws, err = NewWeekSelector(nil, nil, ParityAll, only)
	require.NoError(t, err)
	only[0] = 99
	assert.Equal(t, []int{4, 5}, ws.Only)

	ws, err = NewWeekSelector(nil, nil, ParityAll, []int{})
	require.NoError(t, err)
	assert.NotNil(t, ws.Only)
	assert.Empty(t, matchingWeeks(ws, 10))

	for _, tc := range []struct {
		from, to *int
		only     []int
	}{
		{from: intp(0)},
		{to: intp(-1)},
		{only: []int{1, 0}},
	} {
		_, err := NewWeekSelector(tc.from, tc.to, ParityAll, tc.only)
		assert.True(t, errors.Is(err, ErrInvalidWeek), "got %v", err)
	}
}

// A biweekly RRULE anchored on the first selected week is the same set of
// weeks as a bounded parity selector.
func TestWeekSelector_AgreesWithBiweeklyRRule(t *testing.T) {
	termStart := time.Date(2025, time.February, 24, 9, 0, 0, 0, time.UTC)
	weekOf := func(tm time.Time) int {
		return int(tm.Sub(termStart).Hours()/24)/7 + 1
	}
	startOf := func(week int) time.Time {
		return termStart.AddDate(0, 0, (week-1)*7)
	}

	tests := []struct {
		from, to int
		parity   WeekParity
	}{
		{from: 1, to: 15, parity: ParityOdd},
		{from: 2, to: 15, parity: ParityEven},
		{from: 3, to: 9, parity: ParityOdd},
		{from: 4, to: 11, parity: ParityEven},
	}

	for _, tt := range tests {
		t.Run(tt.parity.String(), func(t *testing.T) {
			r, err := rrule.NewRRule(rrule.ROption{
				Freq:     rrule.WEEKLY,
				Interval: 2,
				Dtstart:  startOf(tt.from),
				Until:    startOf(tt.to),
			})
			require.NoError(t, err)

			var want []int
			for _, occ := range r.All() {
				want = append(want, weekOf(occ))
			}

			ws := WeekSelector{From: tt.from, To: tt.to, Parity: tt.parity}
			assert.Equal(t, want, matchingWeeks(ws, 20))
			assert.True(t, slices.IsSorted(want))
		})
	}
}
