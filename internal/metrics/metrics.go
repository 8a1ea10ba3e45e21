// Package metrics exposes session and matching counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/internship-portal/internal/application"
)

// Recorder implements application.SessionMetrics and application.MatchMetrics
// on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	logins       *prometheus.CounterVec
	rejections   *prometheus.CounterVec
	logouts      prometheus.Counter
	evictions    *prometheus.CounterVec
	extensions   prometheus.Counter
	matches      *prometheus.CounterVec
	matchResults prometheus.Histogram
}

var (
	_ application.SessionMetrics = (*Recorder)(nil)
	_ application.MatchMetrics   = (*Recorder)(nil)
)

// New registers the portal collectors plus the Go and process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "session",
			Name:      "logins_total",
			Help:      "Successful logins by remember-me flag.",
		}, []string{"remember_me"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "session",
			Name:      "login_rejections_total",
			Help:      "Rejected logins by error kind.",
		}, []string{"kind"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "session",
			Name:      "logouts_total",
			Help:      "Explicit logouts.",
		}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "session",
			Name:      "evictions_total",
			Help:      "Sessions removed on read, by reason.",
		}, []string{"reason"}),
		extensions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "session",
			Name:      "extensions_total",
			Help:      "Sessions whose expiry window was restarted.",
		}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "matching",
			Name:      "requests_total",
			Help:      "Match requests by outcome and cache use.",
		}, []string{"outcome", "cached"}),
		matchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "matching",
			Name:      "results",
			Help:      "Number of opportunities returned per match.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.logins,
		r.rejections,
		r.logouts,
		r.evictions,
		r.extensions,
		r.matches,
		r.matchResults,
	)
	return r
}

// Registry returns the registry the collectors live on.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) LoginSucceeded(remember bool) {
	r.logins.WithLabelValues(strconv.FormatBool(remember)).Inc()
}

func (r *Recorder) LoginRejected(kind string) {
	r.rejections.WithLabelValues(kind).Inc()
}

func (r *Recorder) LoggedOut() { r.logouts.Inc() }

func (r *Recorder) SessionEvicted(reason string) {
	r.evictions.WithLabelValues(reason).Inc()
}

func (r *Recorder) SessionExtended() { r.extensions.Inc() }

func (r *Recorder) MatchServed(outcome string, results int, cached bool) {
	r.matches.WithLabelValues(outcome, strconv.FormatBool(cached)).Inc()
	if outcome != application.MatchOutcomeIncomplete {
		r.matchResults.Observe(float64(results))
	}
}
