package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/labstack/gommon/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	appLog "classcal/internal/log"
	"classcal/internal/timetable"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [SCHEDULE_PATH]",
		Short: "Show the plan for today",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := a.scheduleRef(args)
			if err != nil {
				return err
			}
			s, err := a.loadSchedule(cmd.Context(), ref)
			if err != nil {
				return err
			}
			loc, err := a.location()
			if err != nil {
				return err
			}

			out := io.Writer(colorable.NewColorableStdout())
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				color.Disable()
				out = cmd.OutOrStdout()
			}
			return renderDay(out, s, a.now().In(loc))
		},
	}
}

// renderDay prints the classes of now's date, striking through finished ones
// and highlighting the one in progress.
func renderDay(w io.Writer, s *timetable.Schedule, now time.Time) error {
	today := timetable.DateOf(now)
	week, weekday, err := s.GetDay(today)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, color.GreenBg(fmt.Sprintf(" - Week %d, %s - ", week, weekday)))

	classes := slices.Collect(s.ClassesOn(week, weekday))
	fmt.Fprintln(w, color.Dim(fmt.Sprintf("You have %d classes today:", len(classes))))

	clock := timetable.TimeOfDayOf(now)
	for _, c := range classes {
		subject, err := s.Subject(c.Subject)
		if err != nil {
			return err
		}

		line := c.Category.Glyph() + " " + subject.DisplayName(true)
		switch {
		case c.Time.End.Before(clock):
			appLog.Debug("class has already ended", "subject", subject.Name)
			line = color.Strikeout(line)
		case !clock.Before(c.Time.Start):
			line = color.Bold(line)
		}
		fmt.Fprintln(w, categoryColor(c.Category)(line))
		fmt.Fprintln(w, color.Dim("    "+c.Time.String()))
	}

	if len(classes) == 0 {
		return nil
	}

	lastEnd := classes[len(classes)-1].Time.End
	sinceMidnight := time.Duration(now.Hour())*time.Hour +
		time.Duration(now.Minute())*time.Minute +
		time.Duration(now.Second())*time.Second
	remaining := time.Duration(lastEnd.Minutes())*time.Minute - sinceMidnight
	if remaining > 0 {
		fmt.Fprintln(w, color.Bold(humanDuration(remaining))+" until the end!")
	}
	return nil
}

// categoryColor returns the terminal colour function for a class category.
func categoryColor(c timetable.Category) func(msg interface{}, styles ...string) string {
	switch c {
	case timetable.Lecture:
		return color.Magenta
	case timetable.Lab:
		return color.Green
	case timetable.Exercise, timetable.PE:
		return color.Red
	case timetable.Seminar:
		return color.Yellow
	case timetable.Languages:
		return color.Cyan
	default:
		return color.White
	}
}

// humanDuration formats d as "1h 2m 3s", dropping leading zero units.
func humanDuration(d time.Duration) string {
	total := int(d.Abs().Seconds())
	h, m, s := total/3600, (total%3600)/60, total%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
