package sol

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Transaction outcomes counted in stakepool_transactions_total.
const (
	ResultSimulated = "simulated"
	ResultSent      = "sent"
	ResultConfirmed = "confirmed"
	ResultFailed    = "failed"
)

// Metrics counts rpc calls and transaction outcomes for a single cli run. A nil *Metrics is valid
// and counts nothing.
type Metrics struct {
	registry     *prometheus.Registry
	rpcRequests  *prometheus.CounterVec
	transactions *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		rpcRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Subsystem: "stakepool",
			Name:      "rpc_requests_total",
			Help:      "RPC requests made, by method.",
		}, []string{"method"}),
		transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Subsystem: "stakepool",
			Name:      "transactions_total",
			Help:      "Transactions handled, by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) rpcCall(method string) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(method).Inc()
}

func (m *Metrics) transaction(result string) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(result).Inc()
}

// WriteMetrics writes the counters to path in the node-exporter textfile format.
func (m *Metrics) WriteMetrics(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
