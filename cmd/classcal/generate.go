package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"classcal/internal/expand"
	"classcal/internal/export"
	"classcal/internal/ics"
	appLog "classcal/internal/log"
	"classcal/internal/model"
	"classcal/internal/source"
	"classcal/internal/timetable"
)

const (
	formatICS  = "ics"
	formatXLSX = "xlsx"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "generate [SCHEDULE_PATH]",
		Short: "Generate an iCalendar (.ics) or spreadsheet (.xlsx) file of the schedule",
		Long: "Generate a calendar file of the schedule.\n\n" +
			"By default the output is written next to the schedule with its extension\n" +
			"replaced by .ics (or .xlsx with --format xlsx).",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := a.scheduleRef(args)
			if err != nil {
				return err
			}
			format, err = resolveFormat(format, output)
			if err != nil {
				return err
			}
			if output == "" {
				output = defaultOutput(ref, format)
			}
			appLog.Debug("will be saving", "output", output, "format", format)

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
			appLog.Info("successfully generated events",
				"events", len(res.Events),
				"weekday_mismatches", len(res.Mismatches),
			)

			if err := writeFile(output, func(w io.Writer) error {
				return render(w, format, s, res.Events, a.cfg.ProdID)
			}); err != nil {
				return err
			}
			appLog.Info("successfully exported calendar", "output", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Path at which the output file will be saved")
	cmd.Flags().StringVar(&format, "format", "", "Output format: ics or xlsx (default: from --output extension, else ics)")
	return cmd
}

// resolveFormat takes the explicit format, else the output file extension,
// else ics.
func resolveFormat(format, output string) (string, error) {
	if format == "" {
		if strings.EqualFold(filepath.Ext(output), "."+formatXLSX) {
			return formatXLSX, nil
		}
		return formatICS, nil
	}
	switch f := strings.ToLower(format); f {
	case formatICS, formatXLSX:
		return f, nil
	}
	return "", errors.Errorf("unknown format %q (want ics or xlsx)", format)
}

func defaultOutput(ref, format string) string {
	return source.OutputPath(ref, "."+format)
}

func render(w io.Writer, format string, s *timetable.Schedule, events []model.Event, prodID string) error {
	if format == formatXLSX {
		return export.WriteXLSX(w, s, events)
	}
	return ics.Encode(w, events, ics.EncodeOptions{ProdID: prodID})
}

// writeFile creates or truncates path and writes it with fn.
func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close output")
	}
	return nil
}
