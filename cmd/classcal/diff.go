package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"classcal/internal/expand"
	"classcal/internal/ics"
)

func newDiffCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diff [SCHEDULE_PATH] CALENDAR.ics",
		Short: "Compare the schedule against a previously exported calendar",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			calPath := args[len(args)-1]
			ref, err := a.scheduleRef(args[:len(args)-1])
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
			res, err := expand.Expand(s, expand.Config{Location: loc, Now: a.now})
			if err != nil {
				return err
			}

			f, err := os.Open(calPath)
			if err != nil {
				return errors.Wrap(err, "open calendar")
			}
			defer f.Close()
			existing, err := ics.ParseEvents(f)
			if err != nil {
				return err
			}

			printDiff(cmd.OutOrStdout(), ics.Diff(existing, res.Events))
			return nil
		},
	}
}

func printDiff(w io.Writer, d ics.DiffResult) {
	if d.Empty() {
		fmt.Fprintln(w, "Calendar is up to date.")
		return
	}
	for _, uid := range d.Added {
		fmt.Fprintln(w, "+ "+uid)
	}
	for _, uid := range d.Removed {
		fmt.Fprintln(w, "- "+uid)
	}
	for _, uid := range d.Changed {
		fmt.Fprintln(w, "~ "+uid)
	}
	fmt.Fprintf(w, "%d added, %d removed, %d changed\n", len(d.Added), len(d.Removed), len(d.Changed))
}
