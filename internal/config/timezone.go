package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// localtimePath is a var so tests can point it elsewhere.
var localtimePath = "/etc/localtime"

// ResolveLocation loads the IANA zone name, falling back to the system zone
// when name is empty. Calendars need a real zone name for TZID, so a zone
// that can only be described as "Local" is an error.
func ResolveLocation(name string) (*time.Location, error) {
	if name == "" {
		name = SystemTimezone()
	}
	if name == "" {
		return nil, errors.New("cannot determine local timezone; set timezone in config or pass --tz")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid timezone %q", name)
	}
	if loc.String() == "Local" {
		return nil, errors.New("timezone must be an IANA name such as Europe/Warsaw")
	}
	return loc, nil
}

// SystemTimezone guesses the system's IANA zone from $TZ or the
// /etc/localtime symlink. It returns "" when neither names a zone.
func SystemTimezone() string {
	if tz := strings.TrimPrefix(os.Getenv("TZ"), ":"); tz != "" && !filepath.IsAbs(tz) {
		return tz
	}
	target, err := filepath.EvalSymlinks(localtimePath)
	if err != nil {
		return ""
	}
	const marker = "zoneinfo/"
	if i := strings.LastIndex(target, marker); i >= 0 {
		return target[i+len(marker):]
	}
	return ""
}
