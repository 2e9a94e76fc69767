// Package service keeps the latest collection snapshot built from the
// configured feeds and answers questions about it.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"bindicator/internal/bins"
	"bindicator/internal/config"
	"bindicator/internal/ics"
	appLog "bindicator/internal/log"
	"bindicator/internal/metrics"
	"bindicator/internal/model"
)

// ErrNoSources is returned by Refresh when no feed is configured.
var ErrNoSources = errors.New("service: no ICS sources configured")

// Status describes the outcome of the most recent refreshes.
type Status struct {
	LastRefresh time.Time `json:"last_refresh"`
	LastAttempt time.Time `json:"last_attempt"`
	LastError   string    `json:"last_error,omitempty"`
	Collections int       `json:"collections"`
	Skipped     int       `json:"skipped"`
	Fallback    []string  `json:"fallback,omitempty"` // sources decoded by the fallback decoder
	Stale       bool      `json:"stale"`              // last attempt failed, data is from an earlier refresh
}

// Service owns the collection snapshot. It is safe for concurrent use.
type Service struct {
	sources []ics.Source
	fetcher *ics.Fetcher
	opts    ics.DecodeOptions
	metrics *metrics.Metrics
	now     func() time.Time

	mu          sync.RWMutex
	collections []model.Collection
	status      Status
}

// New builds a Service from cfg. A nil fetcher uses one caching under
// cfg.CacheDir; nil metrics are not exported anywhere.
func New(cfg *config.Config, fetcher *ics.Fetcher, m *metrics.Metrics) *Service {
	if fetcher == nil {
		fetcher = ics.NewFetcher(cfg.CacheDir)
	}
	if m == nil {
		m = metrics.Nop()
	}
	sources := make([]ics.Source, 0, len(cfg.ICS))
	for _, c := range cfg.ICS {
		if c.URL == "" {
			continue
		}
		sources = append(sources, ics.Source{ID: c.SourceID(), URL: c.URL})
	}
	return &Service{
		sources: sources,
		fetcher: fetcher,
		opts: ics.DecodeOptions{
			Strict:   cfg.Strict,
			Fallback: cfg.Fallback,
			Location: cfg.Location(),
		},
		metrics: m,
		now:     time.Now,
	}
}

// Refresh fetches and decodes every source and replaces the snapshot with
// the union of what decoded. If no source produced collections the
// previous snapshot is kept and the error is returned.
func (s *Service) Refresh(ctx context.Context) error {
	started := s.now()
	if len(s.sources) == 0 {
		s.fail(started, ErrNoSources)
		return ErrNoSources
	}

	results, fetchErrs := s.fetcher.FetchAll(ctx, s.sources)
	for range fetchErrs {
		s.metrics.Fetches.WithLabelValues(metrics.ResultError).Inc()
	}
	errs := append([]error(nil), fetchErrs...)

	var (
		collections []model.Collection
		skipped     int
		fallback    []string
		decoded     int
	)
	for _, res := range results {
		if res.FromCache {
			s.metrics.Fetches.WithLabelValues(metrics.ResultCached).Inc()
		} else {
			s.metrics.Fetches.WithLabelValues(metrics.ResultFresh).Inc()
		}

		out, err := ics.Decode(res.Source, res.Body, s.opts)
		if err != nil {
			s.metrics.ParseFailures.Inc()
			errs = append(errs, err)
			continue
		}
		if out.Fallback {
			s.metrics.ParseFailures.Inc()
			s.metrics.FallbackDecodes.Inc()
			fallback = append(fallback, res.Source.ID)
		}
		decoded++
		skipped += out.Skipped
		collections = append(collections, out.Collections...)
	}

	err := errors.Join(errs...)
	if decoded == 0 {
		if err == nil {
			err = errors.New("service: no feed could be decoded")
		}
		s.fail(started, err)
		return err
	}

	s.mu.Lock()
	s.collections = collections
	s.status = Status{
		LastRefresh: started,
		LastAttempt: started,
		Collections: len(collections),
		Skipped:     skipped,
		Fallback:    fallback,
	}
	if err != nil {
		s.status.LastError = err.Error()
	}
	s.mu.Unlock()

	s.metrics.Refreshed(started, len(collections))
	appLog.Info("refresh completed",
		"sources", len(s.sources),
		"decoded", decoded,
		"collections", len(collections),
		"skipped", skipped,
		"took", s.now().Sub(started).String(),
	)
	// Partial failures are reported but the refresh still counts.
	return err
}

func (s *Service) fail(at time.Time, err error) {
	s.mu.Lock()
	s.status.LastAttempt = at
	s.status.LastError = err.Error()
	s.status.Stale = !s.status.LastRefresh.IsZero()
	stale := s.status.Stale
	s.mu.Unlock()
	appLog.Error("refresh failed", err, "stale", stale)
}

// Collections returns a copy of the current snapshot, in feed order.
func (s *Service) Collections() []model.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Collection(nil), s.collections...)
}

// Ready reports whether at least one refresh has produced data.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.status.LastRefresh.IsZero()
}

// BinsFor returns the bins collected on day's calendar day.
func (s *Service) BinsFor(day time.Time) bins.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bins.ForDate(s.collections, day)
}

// Tomorrow returns tomorrow's date in the configured zone and its bins.
func (s *Service) Tomorrow() (time.Time, bins.Set) {
	day := bins.Tomorrow(s.now().In(s.opts.Location))
	return day, s.BinsFor(day)
}

// Schedule lists the bins per day for days days starting on from's day.
func (s *Service) Schedule(from time.Time, days int) ([]bins.Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bins.Schedule(s.collections, from, days)
}

// Status returns the refresh status.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	st.Fallback = append([]string(nil), s.status.Fallback...)
	return st
}

// Location is the zone dates are anchored in.
func (s *Service) Location() *time.Location {
	return s.opts.Location
}
