package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"classcal/internal/config"
	"classcal/internal/expand"
	"classcal/internal/ics"
	appLog "classcal/internal/log"
	"classcal/internal/model"
	"classcal/internal/timetable"
)

// LoadFunc fetches and decodes the current schedule.
type LoadFunc func(ctx context.Context) (*timetable.Schedule, error)

// snapshot is one successfully materialized schedule.
type snapshot struct {
	schedule  *timetable.Schedule
	events    []model.Event
	calendar  []byte
	updatedAt time.Time
}

// Server serves the materialized calendar and a small JSON API.
type Server struct {
	cfg  *config.Config
	loc  *time.Location
	load LoadFunc
	now  func() time.Time
	mux  *http.ServeMux

	mu   sync.RWMutex
	snap *snapshot
}

// NewServer constructs a Server. Call Refresh at least once before serving
// so requests have data.
func NewServer(cfg *config.Config, loc *time.Location, load LoadFunc) *Server {
	s := &Server{
		cfg:  cfg,
		loc:  loc,
		load: load,
		now:  time.Now,
		mux:  http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Refresh reloads the schedule and re-materializes it. On failure the
// previous snapshot stays in place.
func (s *Server) Refresh(ctx context.Context) error {
	sched, err := s.load(ctx)
	if err != nil {
		return errors.Wrap(err, "load schedule")
	}

	res, err := expand.Expand(sched, expand.Config{Location: s.loc, Now: s.now})
	if err != nil {
		return errors.Wrap(err, "materialize schedule")
	}

	var buf bytes.Buffer
	if err := ics.Encode(&buf, res.Events, ics.EncodeOptions{ProdID: s.cfg.ProdID}); err != nil {
		return err
	}

	s.mu.Lock()
	s.snap = &snapshot{
		schedule:  sched,
		events:    res.Events,
		calendar:  buf.Bytes(),
		updatedAt: s.now(),
	}
	s.mu.Unlock()

	appLog.Info("schedule refreshed",
		"events", len(res.Events),
		"weekday_mismatches", len(res.Mismatches),
	)
	return nil
}

func (s *Server) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="classcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /calendar.ics", s.handleCalendar)
	s.mux.HandleFunc("GET /api/today", s.handleToday)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "schedule not loaded yet")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Last-Modified", snap.updatedAt.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(snap.calendar)
}

// eventDTO is a JSON-friendly view of an event.
type eventDTO struct {
	UID         string    `json:"uid"`
	Week        int       `json:"week"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

type eventsResponse struct {
	Events    []eventDTO `json:"events"`
	Timezone  string     `json:"timezone"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type todayResponse struct {
	Date     string     `json:"date"`
	Week     int        `json:"week"`
	Weekday  string     `json:"weekday"`
	Classes  []eventDTO `json:"classes"`
	Timezone string     `json:"timezone"`
}

// handleEvents returns materialized events.
//
// GET /api/events?week=N
//   - week: only events of the 1-indexed term week (optional)
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "schedule not loaded yet")
		return
	}

	week := 0
	if q := r.URL.Query().Get("week"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "week must be a positive integer")
			return
		}
		week = n
	}

	dtos := make([]eventDTO, 0, len(snap.events))
	for _, ev := range snap.events {
		if week != 0 && ev.Week != week {
			continue
		}
		dtos = append(dtos, toDTO(ev))
	}

	writeJSON(w, http.StatusOK, eventsResponse{
		Events:    dtos,
		Timezone:  s.loc.String(),
		UpdatedAt: snap.updatedAt,
	})
}

// handleToday returns the classes of the current date in the configured zone.
func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "schedule not loaded yet")
		return
	}

	today := timetable.DateOf(s.now().In(s.loc))
	week, weekday, err := snap.schedule.GetDay(today)
	if err != nil {
		if errors.Is(err, timetable.ErrDateNotInTerm) {
			writeError(w, http.StatusNotFound, "today is not part of the term")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to resolve today")
		return
	}

	events, err := expand.ExpandDay(snap.schedule, today, expand.Config{Location: s.loc, Now: s.now})
	if err != nil {
		appLog.Error("api today: expand failed", err, "date", today.String())
		writeError(w, http.StatusInternalServerError, "failed to expand today's classes")
		return
	}

	dtos := make([]eventDTO, 0, len(events))
	for _, ev := range events {
		dtos = append(dtos, toDTO(ev))
	}
	writeJSON(w, http.StatusOK, todayResponse{
		Date:     today.String(),
		Week:     week,
		Weekday:  weekday.String(),
		Classes:  dtos,
		Timezone: s.loc.String(),
	})
}

func toDTO(ev model.Event) eventDTO {
	return eventDTO{
		UID:         ev.UID,
		Week:        ev.Week,
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       ev.Start,
		End:         ev.End,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
