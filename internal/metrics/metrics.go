// Package metrics defines the Prometheus collectors for the sync client and
// the remote authority.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "duoledger"

// Client holds the sync client collectors.
type Client struct {
	// Checks counts completed sync operations by resulting state.
	Checks *prometheus.CounterVec
}

// NewClient registers the sync client collectors with reg.
// A nil reg leaves them unregistered.
func NewClient(reg prometheus.Registerer) *Client {
	f := promauto.With(reg)
	return &Client{
		Checks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_checks_total",
			Help:      "Completed sync client operations by resulting state.",
		}, []string{"op", "state"}),
	}
}

// Server holds the remote authority HTTP collectors.
type Server struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewServer registers the server collectors with reg.
func NewServer(reg prometheus.Registerer) *Server {
	f := promauto.With(reg)
	return &Server{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "syncd",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "syncd",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}
