package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. CLASSCAL_TIMEZONE.
const EnvPrefix = "CLASSCAL"

// LegacyScheduleEnv names the schedule path variable older setups export.
const LegacyScheduleEnv = "PLANNER_SCHEDULE_PATH"

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for serve mode.
type BasicAuthConfig struct {
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Schedule is the default schedule path or http(s) URL.
	Schedule string `yaml:"schedule" mapstructure:"schedule"`

	// Timezone is the IANA zone events are bound to. Empty means detect the
	// system zone.
	Timezone string `yaml:"timezone" mapstructure:"timezone"`

	// ProdID is written as the calendar PRODID. The default names this
	// tool; set "-//TheChilliPL//Planner//PL" to match calendars exported by
	// the earlier Planner tool.
	ProdID string `yaml:"prod_id" mapstructure:"prod_id"`

	Log LogConfig `yaml:"log" mapstructure:"log"`

	// Listen is the HTTP listen address for serve mode.
	Listen string `yaml:"listen" mapstructure:"listen"`

	// Refresh is a cron spec (e.g. "*/15 * * * *") for reloading the
	// schedule in serve mode.
	Refresh string `yaml:"refresh" mapstructure:"refresh"`

	// CacheDir stores downloaded remote schedules.
	CacheDir string `yaml:"cache_dir" mapstructure:"cache_dir"`

	// BasicAuth, if set, protects every serve endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" mapstructure:"basic_auth"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		ProdID:   "-//classcal//Planner//PL",
		Log:      LogConfig{Level: "info", Format: "console"},
		Listen:   "127.0.0.1:8080",
		Refresh:  "*/15 * * * *",
		CacheDir: defaultCacheDir(),
	}
}

// DefaultPath is $XDG_CONFIG_HOME/classcal/config.yaml (or the platform
// equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "classcal.yaml"
	}
	return filepath.Join(dir, "classcal", "config.yaml")
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "./var/schedule-cache"
	}
	return filepath.Join(dir, "classcal")
}

// Normalize fills in missing/zero values so partially filled files still
// behave.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.ProdID == "" {
		c.ProdID = def.ProdID
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		c.Log.Format = def.Log.Format
	}
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Refresh == "" {
		c.Refresh = def.Refresh
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	// Empty credentials disable auth.
	if c.BasicAuth != nil && (c.BasicAuth.Username == "" || c.BasicAuth.Password == "") {
		c.BasicAuth = nil
	}
}

// Load reads configuration from path, layered as defaults < file < env.
//
// Behavior:
//   - If the file does not exist, a default config is written there
//     (0600) and used.
//   - CLASSCAL_* variables override file values; PLANNER_SCHEDULE_PATH
//     is honoured for the schedule when CLASSCAL_SCHEDULE is unset.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		// First run: create default config file. A failed save is not
		// fatal; env and defaults still apply.
		if err := Save(path, DefaultConfig()); err != nil {
			return loadFrom(newViper(""), err)
		}
	}

	return loadFrom(newViper(path), nil)
}

func newViper(path string) *viper.Viper {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("schedule", def.Schedule)
	v.SetDefault("timezone", def.Timezone)
	v.SetDefault("prod_id", def.ProdID)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("listen", def.Listen)
	v.SetDefault("refresh", def.Refresh)
	v.SetDefault("cache_dir", def.CacheDir)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("schedule", EnvPrefix+"_SCHEDULE", LegacyScheduleEnv)
	_ = v.BindEnv("basic_auth.username")
	_ = v.BindEnv("basic_auth.password")

	return v
}

// loadFrom reads v and returns the config together with saveErr, so callers
// learn that a first-run save failed while still getting a usable config.
func loadFrom(v *viper.Viper, saveErr error) (*Config, error) {
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.Normalize()

	if saveErr != nil {
		return &cfg, errors.Wrap(saveErr, "write default config")
	}
	return &cfg, nil
}

// Save writes cfg to path as YAML.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Writes atomically via a temp file + rename.
//   - Final file permissions are 0600 (the file may hold credentials).
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".classcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
