package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"classcal/internal/timetable"
	"classcal/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve [SCHEDULE_PATH]",
		Short: "Serve the calendar over HTTP and refresh it periodically",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := a.scheduleRef(args)
			if err != nil {
				return err
			}
			loc, err := a.location()
			if err != nil {
				return err
			}
			if listen != "" {
				a.cfg.Listen = listen
			}

			srv := web.NewServer(a.cfg, loc, func(ctx context.Context) (*timetable.Schedule, error) {
				return a.loadSchedule(ctx, ref)
			})

			ctx := cmd.Context()
			if err := srv.Refresh(ctx); err != nil {
				return errors.Wrap(err, "initial refresh")
			}
			if _, err := web.StartRefresher(ctx, srv, a.cfg.Refresh); err != nil {
				return err
			}
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config)")
	return cmd
}
