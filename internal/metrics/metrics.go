package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics. A nil *Registry is valid and
// records nothing, so components can take one unconditionally.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Conversation metrics
	dispatchTotal      *prometheus.CounterVec
	dispatchDuration   *prometheus.HistogramVec
	completionsTotal   *prometheus.CounterVec
	completionDuration *prometheus.HistogramVec
	completionTokens   *prometheus.CounterVec
	turnsTotal         *prometheus.CounterVec
	sessionsActive     prometheus.Gauge
	chartsRendered     prometheus.Counter
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.dispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickertalk_dispatch_total",
			Help: "Total number of function dispatches",
		},
		[]string{"function", "status"},
	)
	r.dispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tickertalk_dispatch_duration_seconds",
			Help:    "Function dispatch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"function"},
	)
	r.completionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickertalk_completions_total",
			Help: "Total number of completion service requests",
		},
		[]string{"provider", "status"},
	)
	r.completionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tickertalk_completion_duration_seconds",
			Help:    "Completion service latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)
	r.completionTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickertalk_completion_tokens_total",
			Help: "Tokens consumed by completion requests",
		},
		[]string{"provider", "direction"},
	)
	r.turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickertalk_turns_total",
			Help: "Total number of user turns processed",
		},
		[]string{"outcome"},
	)
	r.sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tickertalk_sessions_active",
			Help: "Number of live conversation sessions",
		},
	)
	r.chartsRendered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tickertalk_charts_rendered_total",
			Help: "Total number of price charts rendered",
		},
	)

	reg.MustRegister(r.dispatchTotal)
	reg.MustRegister(r.dispatchDuration)
	reg.MustRegister(r.completionsTotal)
	reg.MustRegister(r.completionDuration)
	reg.MustRegister(r.completionTokens)
	reg.MustRegister(r.turnsTotal)
	reg.MustRegister(r.sessionsActive)
	reg.MustRegister(r.chartsRendered)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	if r == nil {
		return
	}
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	if r == nil {
		return
	}
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	if r == nil {
		return
	}
	r.httpRequestsInFlight.Dec()
}

// RecordDispatch records one function dispatch. status is "ok" or an error code.
func (r *Registry) RecordDispatch(function, status string, duration float64) {
	if r == nil {
		return
	}
	r.dispatchTotal.WithLabelValues(function, status).Inc()
	r.dispatchDuration.WithLabelValues(function).Observe(duration)
}

// RecordCompletion records one completion request and its token usage.
func (r *Registry) RecordCompletion(provider, status string, duration float64, inputTokens, outputTokens int) {
	if r == nil {
		return
	}
	r.completionsTotal.WithLabelValues(provider, status).Inc()
	r.completionDuration.WithLabelValues(provider).Observe(duration)
	if inputTokens > 0 {
		r.completionTokens.WithLabelValues(provider, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		r.completionTokens.WithLabelValues(provider, "output").Add(float64(outputTokens))
	}
}

// RecordTurn records the outcome of one user turn: "text", "function",
// "chart" or "error".
func (r *Registry) RecordTurn(outcome string) {
	if r == nil {
		return
	}
	r.turnsTotal.WithLabelValues(outcome).Inc()
}

// SetSessionsActive sets the number of live sessions.
func (r *Registry) SetSessionsActive(count int) {
	if r == nil {
		return
	}
	r.sessionsActive.Set(float64(count))
}

// RecordChart records a rendered chart.
func (r *Registry) RecordChart() {
	if r == nil {
		return
	}
	r.chartsRendered.Inc()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
