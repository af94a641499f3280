package web

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	appLog "classcal/internal/log"
)

// StartRefresher schedules s.Refresh on the cron spec until ctx is done.
// Failed refreshes are logged and the last good snapshot is kept.
func StartRefresher(ctx context.Context, s *Server, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := s.Refresh(ctx); err != nil {
			appLog.Error("scheduled refresh failed; keeping previous calendar", err)
		}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "invalid refresh spec %q", spec)
	}
	c.Start()
	appLog.Info("refresh scheduled", "spec", spec)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}
