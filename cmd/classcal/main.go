package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"classcal/internal/config"
	appLog "classcal/internal/log"
	"classcal/internal/source"
	"classcal/internal/timetable"
)

const version = "0.3.0"

// app carries state shared by subcommands after the root pre-run.
type app struct {
	configPath string
	tz         string
	logLevel   string

	cfg    *config.Config
	loader *source.Loader
	now    func() time.Time
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{now: time.Now}
	err := newRootCmd(a).ExecuteContext(ctx)
	appLog.Sync()
	if err != nil {
		appLog.Error("classcal failed", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "classcal",
		Short:         "Turn a weekly class timetable into calendar events",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath(), "Path to config file")
	root.PersistentFlags().StringVar(&a.tz, "tz", "", "IANA timezone for events (overrides config)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	root.AddCommand(
		newShowCmd(a),
		newGenerateCmd(a),
		newDiffCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		if cfg == nil {
			return errors.Wrap(err, "load config")
		}
		// Defaults are usable even if the first-run file could not be written.
		appLog.Error("config file not written; continuing with defaults", err, "config_path", a.configPath)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.tz != "" {
		cfg.Timezone = a.tz
	}
	if err := appLog.Setup(appLog.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		return err
	}

	a.cfg = cfg
	a.loader = source.NewLoader(cfg.CacheDir)

	appLog.Debug("effective config",
		"config_path", a.configPath,
		"schedule", cfg.Schedule,
		"timezone", cfg.Timezone,
		"listen", cfg.Listen,
		"refresh", cfg.Refresh,
		"cache_dir", cfg.CacheDir,
	)
	return nil
}

// scheduleRef picks the schedule from the positional argument or config.
func (a *app) scheduleRef(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if a.cfg.Schedule != "" {
		return a.cfg.Schedule, nil
	}
	return "", errors.Errorf("no schedule given; pass SCHEDULE_PATH or set %s", config.LegacyScheduleEnv)
}

func (a *app) loadSchedule(ctx context.Context, ref string) (*timetable.Schedule, error) {
	s, err := a.loader.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	appLog.Info("schedule loaded",
		"weeks", len(s.Weeks),
		"subjects", len(s.Subjects),
		"teachers", len(s.Teachers),
		"classes", len(s.Entries),
	)
	return s, nil
}

func (a *app) location() (*time.Location, error) {
	loc, err := config.ResolveLocation(a.cfg.Timezone)
	if err != nil {
		return nil, err
	}
	appLog.Debug("using timezone", "timezone", loc.String())
	return loc, nil
}
