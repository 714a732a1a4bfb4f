// Package telemetry exposes Prometheus metrics for the monitoring loop.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the application, registered
// on a private registry so tests can create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	CheckCycles        prometheus.Counter
	CycleErrors        prometheus.Counter
	CommitChanges      *prometheus.CounterVec
	FetchErrors        *prometheus.CounterVec
	NotificationsSent  prometheus.Counter
	NotificationErrors prometheus.Counter
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		CheckCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "commitwatch",
			Name:      "check_cycles_total",
			Help:      "Number of check cycles run, scheduled or manual.",
		}),
		CycleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "commitwatch",
			Name:      "cycle_errors_total",
			Help:      "Number of check cycles that failed as a whole.",
		}),
		CommitChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "commitwatch",
			Name:      "commit_changes_total",
			Help:      "Number of detected tip commit changes per repository.",
		}, []string{"repository"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "commitwatch",
			Name:      "fetch_errors_total",
			Help:      "Number of failed commit fetches per repository.",
		}, []string{"repository"}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "commitwatch",
			Name:      "notifications_sent_total",
			Help:      "Number of notification messages delivered.",
		}),
		NotificationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "commitwatch",
			Name:      "notification_errors_total",
			Help:      "Number of notification deliveries that failed.",
		}),
	}

	registry.MustRegister(
		m.CheckCycles,
		m.CycleErrors,
		m.CommitChanges,
		m.FetchErrors,
		m.NotificationsSent,
		m.NotificationErrors,
	)

	return m
}

// Handler returns an http.Handler serving the registry in the Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
