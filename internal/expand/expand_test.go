package expand

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"

	appLog "classcal/internal/log"
	"classcal/internal/timetable"
)

var fixedNow = time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func warsaw(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)
	return loc
}

func decode(t *testing.T, doc string) *timetable.Schedule {
	t.Helper()
	s, err := timetable.DecodeJSON(strings.NewReader(doc))
	require.NoError(t, err)
	return s
}

func observeWarnings(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	appLog.SetLogger(zap.New(core))
	t.Cleanup(func() { appLog.SetLogger(zap.NewNop()) })
	return logs
}

const singleLecture = `{
  "weeks": [["2025-01-06","2025-01-07","2025-01-08","2025-01-09","2025-01-10"]],
  "subjects": {"s": {"name": "Subject"}},
  "teachers": {},
  "schedule": [{"subject": "s", "type": "lecture", "day": "wednesday", "time": "9:30-11:00"}]
}`

func TestExpand_SingleLecture(t *testing.T) {
	loc := warsaw(t)
	s := decode(t, singleLecture)

	res, err := Expand(s, Config{Location: loc, Now: fixedClock})
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.Empty(t, res.Mismatches)

	ev := res.Events[0]
	assert.True(t, ev.Start.Equal(time.Date(2025, time.January, 8, 9, 30, 0, 0, loc)), "start %v", ev.Start)
	assert.True(t, ev.End.Equal(time.Date(2025, time.January, 8, 11, 0, 0, 0, loc)), "end %v", ev.End)
	assert.Equal(t, "Europe/Warsaw", ev.Start.Location().String())
	assert.Equal(t, "📚 Subject", ev.Summary)
	assert.Equal(t, "Wykład", ev.Description)
	assert.Equal(t, "", ev.Location)
	assert.Equal(t, "Wykład-s-Wed-0-0930", ev.UID)
	assert.Equal(t, 1, ev.Week)
	assert.True(t, ev.Created.Equal(fixedNow))
	assert.Equal(t, 90*time.Minute, ev.Duration())
}

func TestExpand_DescriptionAndLocation(t *testing.T) {
	s := decode(t, `{
	  "weeks": [["2025-01-06","2025-01-07","2025-01-08","2025-01-09","2025-01-10"]],
	  "subjects": {"net": {"name": "Computer Networks"}},
	  "teachers": {"a": {"name": "Anna Nowak"}, "b": {"name": "Jan Kowalski"}},
	  "schedule": [{
	    "subject": "net", "type": "lab", "day": "monday", "time": "8:00-9:30",
	    "location": {"building": "B4", "room": "1.23"},
	    "teachers": ["b", "a"]
	  }]
	}`)

	res, err := Expand(s, Config{Location: warsaw(t), Now: fixedClock})
	require.NoError(t, err)
	require.Len(t, res.Events, 1)

	ev := res.Events[0]
	assert.Equal(t, "🧪 Computer Networks", ev.Summary)
	assert.Equal(t, "Laboratorium\nJan Kowalski\nAnna Nowak", ev.Description)
	assert.Equal(t, "1.23/B4", ev.Location)
}

func TestExpand_Ordering(t *testing.T) {
	s := decode(t, `{
	  "weeks": [
	    ["2025-01-06","2025-01-07","2025-01-08","2025-01-09","2025-01-10"],
	    ["2025-01-13","2025-01-14","2025-01-15","2025-01-16","2025-01-17"]
	  ],
	  "subjects": {"a": {"name": "A"}, "b": {"name": "B"}},
	  "teachers": {},
	  "schedule": [
	    {"subject": "b", "type": "lab", "day": "friday", "time": "8:00-9:00"},
	    {"subject": "a", "type": "lecture", "day": "monday", "time": "12:00-13:00"},
	    {"subject": "b", "type": "exercise", "day": "monday", "time": "8:00-9:00", "weeks": {"parity": "even"}}
	  ]
	}`)

	res, err := Expand(s, Config{Location: time.UTC, Now: fixedClock})
	require.NoError(t, err)

	var got []string
	for _, ev := range res.Events {
		got = append(got, ev.UID)
	}
	assert.Equal(t, []string{
		"Wykład-a-Mon-0-1200",
		"Laboratorium-b-Fri-0-0800",
		"Wykład-a-Mon-1-1200",
		"Ćwiczenia-b-Mon-1-0800",
		"Laboratorium-b-Fri-1-0800",
	}, got)
}

func TestExpand_WeekdayMismatch(t *testing.T) {
	logs := observeWarnings(t)

	// The Wednesday slot holds a Thursday.
	s := decode(t, `{
	  "weeks": [["2025-01-06","2025-01-07","2025-01-09","2025-01-09","2025-01-10"]],
	  "subjects": {"s": {"name": "Subject"}},
	  "teachers": {},
	  "schedule": [
	    {"subject": "s", "type": "lecture", "day": "wednesday", "time": "9:30-11:00"},
	    {"subject": "s", "type": "seminar", "day": "thursday", "time": "12:00-13:00"}
	  ]
	}`)

	res, err := Expand(s, Config{Location: warsaw(t), Now: fixedClock})
	require.NoError(t, err)

	require.Len(t, res.Mismatches, 1)
	assert.Equal(t, Mismatch{
		Week:     1,
		Slot:     2,
		Date:     timetable.Date{Year: 2025, Month: time.January, Day: 9},
		Expected: time.Wednesday,
		Actual:   time.Thursday,
	}, res.Mismatches[0])

	// The Wednesday lecture is not emitted; the Thursday seminar is emitted
	// once for each slot holding 2025-01-09.
	require.Len(t, res.Events, 2)
	for _, ev := range res.Events {
		assert.Equal(t, "📝 Subject", ev.Summary)
		assert.Equal(t, 9, ev.Start.Day())
	}

	warned := logs.FilterMessage("weekday mismatch in term calendar")
	require.Equal(t, 1, warned.Len())
	ctx := warned.All()[0].ContextMap()
	assert.EqualValues(t, 1, ctx["week"])
	assert.Equal(t, "2025-01-09", ctx["date"])
	assert.Equal(t, "Wednesday", ctx["expected"])
	assert.Equal(t, "Thursday", ctx["actual"])
}

func TestExpand_UnresolvedReferences(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		sentinel error
	}{
		{
			name: "unknown subject",
			doc: `{
			  "weeks": [["2025-01-06","2025-01-07","2025-01-08","2025-01-09","2025-01-10"]],
			  "subjects": {"s": {"name": "Subject"}},
			  "teachers": {},
			  "schedule": [
			    {"subject": "s", "type": "lecture", "day": "monday", "time": "8:00-9:00"},
			    {"subject": "ghost", "type": "lecture", "day": "friday", "time": "8:00-9:00"}
			  ]
			}`,
			sentinel: timetable.ErrUnknownSubject,
		},
		{
			name: "unknown teacher",
			doc: `{
			  "weeks": [["2025-01-06","2025-01-07","2025-01-08","2025-01-09","2025-01-10"]],
			  "subjects": {"s": {"name": "Subject"}},
			  "teachers": {"jk": {"name": "Jan Kowalski"}},
			  "schedule": [
			    {"subject": "s", "type": "lecture", "day": "monday", "time": "8:00-9:00", "teachers": ["jk"]},
			    {"subject": "s", "type": "lab", "day": "tuesday", "time": "8:00-9:00", "teachers": ["jk", "nobody"]}
			  ]
			}`,
			sentinel: timetable.ErrUnknownTeacher,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Expand(decode(t, tt.doc), Config{Location: time.UTC, Now: fixedClock})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
			assert.Empty(t, res.Events)
			assert.Empty(t, res.Mismatches)
		})
	}
}

func TestExpand_UnreferencedBadIDIsIgnored(t *testing.T) {
	// The entry never matches a week, so its unknown subject is never looked up.
	s := decode(t, `{
	  "weeks": [["2025-01-06","2025-01-07","2025-01-08","2025-01-09","2025-01-10"]],
	  "subjects": {},
	  "teachers": {},
	  "schedule": [{"subject": "ghost", "type": "lab", "day": "monday", "time": "8:00-9:00", "weeks": {"only": [7]}}]
	}`)

	res, err := Expand(s, Config{Location: time.UTC, Now: fixedClock})
	require.NoError(t, err)
	assert.Empty(t, res.Events)
}

func TestExpand_AmbiguousLocalTime(t *testing.T) {
	tests := []struct {
		name string
		date string
		time string
	}{
		{name: "spring forward", date: "2025-03-30", time: "2:30-3:30"},
		{name: "fall back", date: "2025-10-26", time: "1:00-2:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := timetable.ParseDate(tt.date)
			require.NoError(t, err)
			var w timetable.Week
			for i := range timetable.DaysPerWeek {
				w[i] = d.AddDays(i)
			}
			period, err := timetable.ParseTimePeriod(tt.time)
			require.NoError(t, err)

			s := timetable.New([]timetable.Week{w},
				map[string]timetable.Subject{"s": {Name: "Subject"}}, nil,
				[]timetable.ClassEntry{{Subject: "s", Category: timetable.Lecture, Weekday: time.Sunday, Time: period}},
			)

			observeWarnings(t)
			res, err := Expand(s, Config{Location: warsaw(t), Now: fixedClock})
			require.Error(t, err)
			assert.True(t, errors.Is(err, timetable.ErrAmbiguousLocalTime), "got %v", err)
			assert.Empty(t, res.Events)
		})
	}
}

func TestExpand_EmptySchedule(t *testing.T) {
	res, err := Expand(timetable.New(nil, nil, nil, nil), Config{Now: fixedClock})
	require.NoError(t, err)
	assert.NotNil(t, res.Events)
	assert.Empty(t, res.Events)
}

func TestExpand_DefaultsToLocal(t *testing.T) {
	s := decode(t, singleLecture)
	res, err := Expand(s, Config{Now: fixedClock})
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.Equal(t, time.Local, res.Events[0].Start.Location())
}

func TestExpand_CreatedIsSharedAcrossEvents(t *testing.T) {
	calls := 0
	now := func() time.Time {
		calls++
		return fixedNow.Add(time.Duration(calls) * time.Minute)
	}
	s := decode(t, `{
	  "weeks": [["2025-01-06","2025-01-07","2025-01-08","2025-01-09","2025-01-10"]],
	  "subjects": {"s": {"name": "Subject"}},
	  "teachers": {},
	  "schedule": [
	    {"subject": "s", "type": "lecture", "day": "monday", "time": "8:00-9:00"},
	    {"subject": "s", "type": "lecture", "day": "tuesday", "time": "8:00-9:00"}
	  ]
	}`)

	res, err := Expand(s, Config{Location: time.UTC, Now: now})
	require.NoError(t, err)
	require.Len(t, res.Events, 2)
	assert.Equal(t, 1, calls)
	assert.True(t, res.Events[0].Created.Equal(res.Events[1].Created))
}

func TestExpandDay(t *testing.T) {
	s := decode(t, singleLecture)
	cfg := Config{Location: warsaw(t), Now: fixedClock}

	events, err := ExpandDay(s, timetable.Date{Year: 2025, Month: time.January, Day: 8}, cfg)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Wykład-s-Wed-0-0930", events[0].UID)

	events, err = ExpandDay(s, timetable.Date{Year: 2025, Month: time.January, Day: 9}, cfg)
	require.NoError(t, err)
	assert.Empty(t, events)

	_, err = ExpandDay(s, timetable.Date{Year: 2025, Month: time.February, Day: 3}, cfg)
	assert.True(t, errors.Is(err, timetable.ErrDateNotInTerm))
}

func TestUID(t *testing.T) {
	period, err := timetable.ParseTimePeriod("8:05-9:35")
	require.NoError(t, err)
	entry := timetable.ClassEntry{Subject: "linear algebra", Category: timetable.Exercise, Time: period}

	assert.Equal(t, "Ćwiczenia-linear_algebra-Thu-11-0805", UID(entry, 11, time.Thursday))

	abbrev := map[time.Weekday]string{
		time.Monday: "Mon", time.Tuesday: "Tue", time.Wednesday: "Wed", time.Thursday: "Thu",
		time.Friday: "Fri", time.Saturday: "Sat", time.Sunday: "Sun",
	}
	for wd, want := range abbrev {
		assert.Equal(t, "Ćwiczenia-linear_algebra-"+want+"-0-0805", UID(entry, 0, wd))
	}
}

// UIDs are unique across a generation as long as no two entries share
// category, subject, weekday and start time.
func TestExpand_UIDsUnique(t *testing.T) {
	s := decode(t, `{
	  "weeks": [
	    ["2025-01-06","2025-01-07","2025-01-08","2025-01-09","2025-01-10"],
	    ["2025-01-13","2025-01-14","2025-01-15","2025-01-16","2025-01-17"],
	    ["2025-01-20","2025-01-21","2025-01-22","2025-01-23","2025-01-24"]
	  ],
	  "subjects": {"a": {"name": "A"}, "b": {"name": "B"}},
	  "teachers": {},
	  "schedule": [
	    {"subject": "a", "type": "lecture", "day": "monday", "time": "8:00-9:00"},
	    {"subject": "a", "type": "lab", "day": "monday", "time": "8:00-9:00"},
	    {"subject": "b", "type": "lecture", "day": "monday", "time": "8:00-9:00"},
	    {"subject": "a", "type": "lecture", "day": "monday", "time": "10:00-11:00"},
	    {"subject": "a", "type": "lecture", "day": "tuesday", "time": "8:00-9:00"}
	  ]
	}`)

	res, err := Expand(s, Config{Location: time.UTC, Now: fixedClock})
	require.NoError(t, err)
	require.Len(t, res.Events, 15)

	seen := make(map[string]bool, len(res.Events))
	for _, ev := range res.Events {
		assert.False(t, seen[ev.UID], "duplicate uid %s", ev.UID)
		seen[ev.UID] = true
	}
}
