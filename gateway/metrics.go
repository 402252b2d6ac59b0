package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess      = "success"
	outcomeHTTPError    = "http_error"
	outcomeNetworkError = "network_error"
	outcomeForcedLogout = "forced_logout"

	refreshExchanged = "exchanged"
	refreshShared    = "shared"
	refreshMissing   = "missing"
	refreshFailed    = "failed"
)

// Metrics counts gateway outcomes. A nil *Metrics records nothing.
type Metrics struct {
	Requests      *prometheus.CounterVec
	Refreshes     *prometheus.CounterVec
	Retries       prometheus.Counter
	ForcedLogouts prometheus.Counter
}

// NewMetrics creates the gateway metrics and registers them with registry
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vitevite_gateway_requests_total",
				Help: "Logical requests handled by the gateway by final outcome",
			},
			[]string{"outcome"},
		),
		Refreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vitevite_gateway_refresh_total",
				Help: "Recovery attempts after a 401 by result",
			},
			[]string{"result"},
		),
		Retries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "vitevite_gateway_retries_total",
				Help: "Requests re-sent after a successful recovery",
			},
		),
		ForcedLogouts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "vitevite_gateway_forced_logout_total",
				Help: "Terminal authorization failures that cleared the credentials",
			},
		),
	}
}

func (m *Metrics) request(outcome string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) refresh(result string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) retry() {
	if m == nil {
		return
	}
	m.Retries.Inc()
}

func (m *Metrics) forcedLogout() {
	if m == nil {
		return
	}
	m.ForcedLogouts.Inc()
}
