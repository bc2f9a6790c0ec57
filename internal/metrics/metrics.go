package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the counters below.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeScheduled = "scheduled"
	OutcomeCoalesced = "coalesced"
	OutcomeFired     = "fired"
	OutcomeDropped   = "dropped"
)

// Collector defines the interface for metrics collection
type Collector interface {
	// Negotiation metrics
	NegotiationRound(outcome string)
	Renegotiation(outcome string)

	// Control channel metrics
	ControlEvent(class string)
	SubscriptionSize(n int)
	RemoteStreams(n int)

	// Signaling metrics
	SignalingRequest(op, outcome string)
}

// PrometheusCollector implements the Collector interface using Prometheus
type PrometheusCollector struct {
	registry *prometheus.Registry

	negotiationRounds *prometheus.CounterVec
	renegotiations    *prometheus.CounterVec

	controlEvents    *prometheus.CounterVec
	subscriptionSize prometheus.Gauge
	remoteStreams    prometheus.Gauge

	signalingRequests *prometheus.CounterVec
}

// NewPrometheusCollector registers every series on a private registry so
// several collectors can coexist in one process.
func NewPrometheusCollector() *PrometheusCollector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusCollector{
		registry: reg,

		negotiationRounds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voiceclient_negotiation_rounds_total",
				Help: "Total number of offer/answer rounds by outcome",
			},
			[]string{"outcome"},
		),

		renegotiations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voiceclient_renegotiations_total",
				Help: "Delayed renegotiation requests by outcome",
			},
			[]string{"outcome"},
		),

		controlEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voiceclient_control_events_total",
				Help: "Control channel events received by class",
			},
			[]string{"class"},
		),

		subscriptionSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "voiceclient_subscriptions",
			Help: "Number of endpoints currently subscribed to",
		}),

		remoteStreams: factory.NewGauge(prometheus.GaugeOpts{
			Name: "voiceclient_remote_streams",
			Help: "Number of live remote streams",
		}),

		signalingRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voiceclient_signaling_requests_total",
				Help: "Signaling requests by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
	}
}

func (c *PrometheusCollector) NegotiationRound(outcome string) {
	c.negotiationRounds.WithLabelValues(outcome).Inc()
}

func (c *PrometheusCollector) Renegotiation(outcome string) {
	c.renegotiations.WithLabelValues(outcome).Inc()
}

func (c *PrometheusCollector) ControlEvent(class string) {
	c.controlEvents.WithLabelValues(class).Inc()
}

func (c *PrometheusCollector) SubscriptionSize(n int) {
	c.subscriptionSize.Set(float64(n))
}

func (c *PrometheusCollector) RemoteStreams(n int) {
	c.remoteStreams.Set(float64(n))
}

func (c *PrometheusCollector) SignalingRequest(op, outcome string) {
	c.signalingRequests.WithLabelValues(op, outcome).Inc()
}

// Handler returns an HTTP handler for metrics endpoint
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) NegotiationRound(string)         {}
func (Nop) Renegotiation(string)            {}
func (Nop) ControlEvent(string)             {}
func (Nop) SubscriptionSize(int)            {}
func (Nop) RemoteStreams(int)               {}
func (Nop) SignalingRequest(string, string) {}
