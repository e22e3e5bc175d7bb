package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ConstructionMetricsCollector handles construction job and builder pool metrics
type ConstructionMetricsCollector struct {
	jobEventsTotal  *prometheus.CounterVec
	builderPoolSize *prometheus.GaugeVec
}

// NewConstructionMetricsCollector creates a new construction metrics collector
func NewConstructionMetricsCollector() *ConstructionMetricsCollector {
	return &ConstructionMetricsCollector{
		jobEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "construction_job_events_total",
				Help:      "Construction job lifecycle events",
			},
			[]string{"event"},
		),

		builderPoolSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "builder_pool_size",
				Help:      "Workers known to the construction tracker",
			},
			[]string{"state"},
		),
	}
}

// Register registers all construction metrics with the Prometheus registry
func (c *ConstructionMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	for _, metric := range []prometheus.Collector{c.jobEventsTotal, c.builderPoolSize} {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

func (c *ConstructionMetricsCollector) RecordJobEvent(event string) {
	c.jobEventsTotal.WithLabelValues(event).Inc()
}

func (c *ConstructionMetricsCollector) SetWorkerPool(total, reserved int) {
	c.builderPoolSize.WithLabelValues("reserved").Set(float64(reserved))
	c.builderPoolSize.WithLabelValues("spare").Set(float64(total - reserved))
}
