// Package metrics exposes the proxy's Prometheus counters.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upstream call outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeTimeout   = "timeout"
	OutcomeTransport = "transport"
	OutcomeCached    = "cached"
)

// Post outcomes.
const (
	PostSent      = "sent"
	PostDuplicate = "duplicate"
	PostFailed    = "failed"
	PostRejected  = "rejected"
)

// Recorder is what services and handlers report through. Nop satisfies it for
// tests and tools that have no registry.
type Recorder interface {
	RecordHTTPRequest(route, method string, status int)
	RecordUpstream(collaborator, outcome string)
	RecordAILatency(d time.Duration)
	RecordPost(outcome string)
}

type Collector struct {
	httpRequests *prometheus.CounterVec
	upstream     *prometheus.CounterVec
	aiLatency    prometheus.Histogram
	posts        *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_http_requests_total",
			Help: "HTTP requests served by the proxy.",
		}, []string{"route", "method", "status"}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_upstream_requests_total",
			Help: "Calls to sports data, AI and X collaborators by outcome.",
		}, []string{"collaborator", "outcome"}),
		aiLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "courtside_ai_latency_seconds",
			Help:    "Latency of AI report generation.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 45, 60},
		}),
		posts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_posts_total",
			Help: "Post attempts to X by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(c.httpRequests, c.upstream, c.aiLatency, c.posts)
	return c
}

func (c *Collector) RecordHTTPRequest(route, method string, status int) {
	c.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

func (c *Collector) RecordUpstream(collaborator, outcome string) {
	c.upstream.WithLabelValues(collaborator, outcome).Inc()
}

func (c *Collector) RecordAILatency(d time.Duration) {
	c.aiLatency.Observe(d.Seconds())
}

func (c *Collector) RecordPost(outcome string) {
	c.posts.WithLabelValues(outcome).Inc()
}

type Nop struct{}

func (Nop) RecordHTTPRequest(string, string, int) {}
func (Nop) RecordUpstream(string, string)         {}
func (Nop) RecordAILatency(time.Duration)         {}
func (Nop) RecordPost(string)                     {}

// Handler serves the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
