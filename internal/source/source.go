// Package source loads schedule documents from disk or over HTTP.
package source

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"classcal/internal/timetable"
)

// Loader resolves a schedule reference to a parsed Schedule.
type Loader struct {
	Fetcher *Fetcher
}

// NewLoader returns a Loader whose remote fetches cache under cacheDir.
func NewLoader(cacheDir string) *Loader {
	return &Loader{Fetcher: NewFetcher(cacheDir)}
}

// IsRemote reports whether ref is an http(s) or webcal URL.
func IsRemote(ref string) bool {
	for _, p := range []string{"http://", "https://", "webcal://"} {
		if strings.HasPrefix(ref, p) {
			return true
		}
	}
	return false
}

// Load reads and decodes the schedule at ref.
func (l *Loader) Load(ctx context.Context, ref string) (*timetable.Schedule, error) {
	if ref == "" {
		return nil, errors.New("no schedule given")
	}

	var (
		body []byte
		name = ref
	)
	if IsRemote(ref) {
		res, err := l.Fetcher.Fetch(ctx, ref)
		if err != nil {
			return nil, err
		}
		body = res.Body
		if u, err := url.Parse(res.URL); err == nil {
			name = path.Base(u.Path)
		}
	} else {
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, errors.Wrap(err, "read schedule")
		}
		body = data
	}

	s, err := Decode(name, body)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", name)
	}
	return s, nil
}

// Decode picks the YAML decoder for .yaml/.yml names and JSON otherwise.
func Decode(name string, body []byte) (*timetable.Schedule, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return timetable.DecodeYAML(bytes.NewReader(body))
	default:
		return timetable.DecodeJSON(bytes.NewReader(body))
	}
}

// OutputPath derives the default output file for ref by replacing its
// extension with ext (".ics", ".xlsx"). Remote refs use the URL's file name
// in the working directory.
func OutputPath(ref, ext string) string {
	name := ref
	if IsRemote(ref) {
		if u, err := url.Parse(ref); err == nil && path.Base(u.Path) != "/" && path.Base(u.Path) != "." {
			name = path.Base(u.Path)
		} else {
			name = "schedule"
		}
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}
