package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const DefaultNamespace = "reception"

// Turn sources
const (
	SourceTemplate  = "template"
	SourceLLM       = "llm"
	SourceFallback  = "fallback"
	SourceKnowledge = "knowledge"
)

// Metrics groups all Prometheus instruments used by the service. All methods
// are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	Calls             *prometheus.CounterVec
	Turns             *prometheus.CounterVec
	WebhookRequests   *prometheus.CounterVec
	ActiveCalls       prometheus.Gauge
	ActiveStreams     prometheus.Gauge
	CompletionLatency prometheus.Histogram
	SynthesisErrors   *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		Calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Calls handled by direction.",
		}, []string{"direction"}),
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Conversation turns by intent and response source.",
		}, []string{"intent", "source"}),
		WebhookRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		ActiveCalls: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_conversations",
			Help:      "Conversations currently held in the session store.",
		}),
		ActiveStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_streams",
			Help:      "Open media stream sockets.",
		}),
		CompletionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_latency_seconds",
			Help:      "Chat completion latency in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 20},
		}),
		SynthesisErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_errors_total",
			Help:      "Text-to-speech failures by provider.",
		}, []string{"provider"}),
	}
}

func (m *Metrics) CallStarted(direction string) {
	if m == nil {
		return
	}
	m.Calls.WithLabelValues(direction).Inc()
}

func (m *Metrics) Turn(intent, source string) {
	if m == nil {
		return
	}
	m.Turns.WithLabelValues(intent, source).Inc()
}

func (m *Metrics) Request(route, status string) {
	if m == nil {
		return
	}
	m.WebhookRequests.WithLabelValues(route, status).Inc()
}

func (m *Metrics) SetActiveCalls(n int) {
	if m == nil {
		return
	}
	m.ActiveCalls.Set(float64(n))
}

func (m *Metrics) StreamOpened() {
	if m == nil {
		return
	}
	m.ActiveStreams.Inc()
}

func (m *Metrics) StreamClosed() {
	if m == nil {
		return
	}
	m.ActiveStreams.Dec()
}

func (m *Metrics) ObserveCompletion(d time.Duration) {
	if m == nil {
		return
	}
	m.CompletionLatency.Observe(d.Seconds())
}

func (m *Metrics) SynthesisFailed(provider string) {
	if m == nil {
		return
	}
	m.SynthesisErrors.WithLabelValues(provider).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
