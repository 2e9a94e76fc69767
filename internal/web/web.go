package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bindicator/internal/bins"
	"bindicator/internal/config"
	appLog "bindicator/internal/log"
	"bindicator/internal/model"
	"bindicator/internal/service"
)

// Server provides the HTTP API over the collection snapshot.
type Server struct {
	cfg      *config.Config
	svc      *service.Service
	gatherer prometheus.Gatherer
	mux      *http.ServeMux
}

// NewServer constructs a new Server. A nil gatherer disables /metrics.
func NewServer(cfg *config.Config, svc *service.Service, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		cfg:      cfg,
		svc:      svc,
		gatherer: gatherer,
		mux:      http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password leaves auth off.
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
			w.Header().Set("WWW-Authenticate", `Basic realm="Bindicator", charset="UTF-8"`)
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

// Run serves on cfg.Listen until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
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
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/collections", s.handleCollections)
	s.mux.HandleFunc("/api/bins", s.handleBins)
	s.mux.HandleFunc("/api/schedule", s.handleSchedule)
	s.mux.HandleFunc("/api/refresh", s.handleRefresh)
	if s.gatherer != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Status())
}

// collectionDTO is a JSON-friendly view of a collection.
type collectionDTO struct {
	SourceID string `json:"source_id"`
	Date     string `json:"date"`
	Bin      string `json:"bin"`
}

func toDTO(c model.Collection) collectionDTO {
	return collectionDTO{SourceID: c.SourceID, Date: c.Date.Format(dateLayout), Bin: c.Bin}
}

type collectionsResponse struct {
	Collections []collectionDTO `json:"collections"`
	Timezone    string          `json:"timezone"`
}

func (s *Server) handleCollections(w http.ResponseWriter, _ *http.Request) {
	cs := s.svc.Collections()
	dtos := make([]collectionDTO, 0, len(cs))
	for _, c := range cs {
		dtos = append(dtos, toDTO(c))
	}
	writeJSON(w, http.StatusOK, collectionsResponse{
		Collections: dtos,
		Timezone:    s.svc.Location().String(),
	})
}

const dateLayout = "2006-01-02"

// binsResponse is the JSON response shape for /api/bins.
type binsResponse struct {
	Date string   `json:"date"`
	Bins []string `json:"bins"`
}

// handleBins returns the bins collected on a day.
//
// GET /api/bins?date=2022-11-18
//   - date: day to look up (default: tomorrow in the configured timezone)
func (s *Server) handleBins(w http.ResponseWriter, r *http.Request) {
	var (
		day time.Time
		set bins.Set
	)
	if q := r.URL.Query().Get("date"); q != "" {
		d, err := time.ParseInLocation(dateLayout, q, s.svc.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day, set = d, s.svc.BinsFor(d)
	} else {
		day, set = s.svc.Tomorrow()
	}
	writeJSON(w, http.StatusOK, binsResponse{Date: day.Format(dateLayout), Bins: set.Sorted()})
}

type scheduleDay struct {
	Date string   `json:"date"`
	Bins []string `json:"bins"`
}

type scheduleResponse struct {
	Days     []scheduleDay `json:"days"`
	Timezone string        `json:"timezone"`
}

// handleSchedule lists the collection days from today on.
//
// GET /api/schedule?days=14&all=1
//   - days: how many days to cover (default: horizon_days)
//   - all:  include days with nothing to collect
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days := parseIntDefault(q.Get("days"), s.cfg.HorizonDays)
	if days <= 0 || days > 366 {
		writeError(w, http.StatusBadRequest, "days must be between 1 and 366")
		return
	}

	sched, err := s.svc.Schedule(time.Now().In(s.svc.Location()), days)
	if err != nil {
		appLog.Error("api schedule failed", err, "days", days)
		writeError(w, http.StatusInternalServerError, "failed to build schedule")
		return
	}
	if q.Get("all") == "" {
		sched = bins.Upcoming(sched)
	}

	resp := scheduleResponse{Days: make([]scheduleDay, 0, len(sched)), Timezone: s.svc.Location().String()}
	for _, d := range sched {
		resp.Days = append(resp.Days, scheduleDay{Date: d.Date.Format(dateLayout), Bins: d.Bins.Sorted()})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRefresh triggers an immediate refresh. POST only.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}
	if err := s.svc.Refresh(r.Context()); err != nil && !s.svc.Ready() {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Status())
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
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
