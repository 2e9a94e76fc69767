package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bindicator"

// Fetch results used as the "result" label of fetches_total.
const (
	ResultFresh  = "fresh"
	ResultCached = "cached"
	ResultError  = "error"
)

// Metrics holds the collectors updated by a refresh.
type Metrics struct {
	Fetches         *prometheus.CounterVec
	ParseFailures   prometheus.Counter
	FallbackDecodes prometheus.Counter
	Collections     prometheus.Gauge
	LastRefresh     prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Feed fetches by result (fresh, cached, error).",
		}, []string{"result"}),
		ParseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_failures_total",
			Help:      "Feed bodies the line grammar rejected.",
		}),
		FallbackDecodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_decodes_total",
			Help:      "Feed bodies decoded by the fallback decoder.",
		}),
		Collections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collections",
			Help:      "Collections known after the last refresh.",
		}),
		LastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last refresh that produced data.",
		}),
	}
	reg.MustRegister(m.Fetches, m.ParseFailures, m.FallbackDecodes, m.Collections, m.LastRefresh)
	return m
}

// Nop returns collectors that are not registered anywhere.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}

// Refreshed records a successful refresh.
func (m *Metrics) Refreshed(at time.Time, collections int) {
	m.Collections.Set(float64(collections))
	m.LastRefresh.Set(float64(at.Unix()))
}
