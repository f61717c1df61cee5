package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
)

const (
	LegSource      = "source"
	LegDestination = "destination"

	LegStatusConfirmed = "confirmed"
	LegStatusFailed    = "failed"
)

// BridgeMetrics covers the transfer pipeline: per-leg latency, terminal
// outcomes, relayer queue pressure and upstream circuit breaker state.
type BridgeMetrics struct {
	legDuration *prometheus.HistogramVec

	outcomes *prometheus.CounterVec

	relayerQueueDepth prometheus.Gauge

	circuitBreakerState *prometheus.GaugeVec
}

func NewBridgeMetrics() *BridgeMetrics {
	return &BridgeMetrics{
		legDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_backend_leg_duration_seconds",
				Help:    "Duration of one bridge leg from submission to resolution",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"leg", "status"},
		),

		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_backend_terminal_outcomes_total",
				Help: "Bridge requests reaching a terminal outcome",
			},
			[]string{"outcome"},
		),

		relayerQueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_backend_relayer_queue_depth",
				Help: "Credit submissions waiting on the relayer signer",
			},
		),

		circuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bridge_backend_circuit_breaker_state",
				Help: "Current state of chain RPC circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"chain"},
		),
	}
}

func (m *BridgeMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.legDuration,
		m.outcomes,
		m.relayerQueueDepth,
		m.circuitBreakerState,
	)
}

func (m *BridgeMetrics) ObserveLeg(leg, status string, seconds float64) {
	m.legDuration.WithLabelValues(leg, status).Observe(seconds)
}

func (m *BridgeMetrics) IncOutcome(outcome string) {
	m.outcomes.WithLabelValues(outcome).Inc()
}

func (m *BridgeMetrics) SetRelayerQueueDepth(depth int) {
	m.relayerQueueDepth.Set(float64(depth))
}

func (m *BridgeMetrics) UpdateCircuitBreakerState(chain string, state gobreaker.State) {
	m.circuitBreakerState.WithLabelValues(chain).Set(float64(state))
}
