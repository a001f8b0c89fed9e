package store

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/messagestore/metric"
)

// storeMetrics holds Prometheus metrics for store operations.
type storeMetrics struct {
	saves *prometheus.CounterVec
	reads *prometheus.CounterVec

	registry *metric.Registry
}

// newStoreMetrics creates and registers store metrics with the provided registry.
func newStoreMetrics(registry *metric.Registry) (*storeMetrics, error) {
	m := &storeMetrics{
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "messagestore",
			Subsystem: "store",
			Name:      "saves_total",
			Help:      "Total number of Save operations by outcome",
		}, []string{"outcome"}),
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "messagestore",
			Subsystem: "store",
			Name:      "reads_total",
			Help:      "Total number of Read operations by outcome",
		}, []string{"outcome"}),
		registry: registry,
	}

	if err := registry.RegisterCounterVec("store", "saves", m.saves); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("store", "reads", m.reads); err != nil {
		registry.Unregister("store", "saves")
		return nil, err
	}

	return m, nil
}

func (m *storeMetrics) recordSave(outcome string) {
	m.saves.WithLabelValues(outcome).Inc()
}

func (m *storeMetrics) recordRead(outcome string) {
	m.reads.WithLabelValues(outcome).Inc()
}

func (m *storeMetrics) unregister() {
	m.registry.Unregister("store", "saves")
	m.registry.Unregister("store", "reads")
}
