package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ProductionMetricsCollector handles production scheduler metrics
type ProductionMetricsCollector struct {
	transitionsTotal   *prometheus.CounterVec
	admissionBlocked   *prometheus.CounterVec
	orderLatencyFrames *prometheus.HistogramVec
	queueDepth         *prometheus.GaugeVec
}

// NewProductionMetricsCollector creates a new production metrics collector
func NewProductionMetricsCollector() *ProductionMetricsCollector {
	return &ProductionMetricsCollector{
		transitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_transitions_total",
				Help:      "Total order status transitions",
			},
			[]string{"kind", "from", "to"},
		),

		admissionBlocked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_admission_blocked_total",
				Help:      "Ticks on which the head-of-scan order failed a gate",
			},
			[]string{"kind", "gate"},
		),

		orderLatencyFrames: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_latency_frames",
				Help:      "Frames from submission to finish",
				Buckets:   []float64{240, 480, 960, 1440, 2400, 4800, 9600},
			},
			[]string{"kind"},
		),

		queueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_queue_depth",
				Help:      "Orders currently queued by status",
			},
			[]string{"status"},
		),
	}
}

// Register registers all production metrics with the Prometheus registry
func (c *ProductionMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.transitionsTotal,
		c.admissionBlocked,
		c.orderLatencyFrames,
		c.queueDepth,
	}
	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

func (c *ProductionMetricsCollector) RecordOrderTransition(kind, from, to string) {
	c.transitionsTotal.WithLabelValues(kind, from, to).Inc()
}

func (c *ProductionMetricsCollector) RecordAdmissionBlocked(kind, gate string) {
	c.admissionBlocked.WithLabelValues(kind, gate).Inc()
}

func (c *ProductionMetricsCollector) RecordOrderCompleted(kind string, frames int) {
	c.orderLatencyFrames.WithLabelValues(kind).Observe(float64(frames))
}

func (c *ProductionMetricsCollector) SetQueueDepth(status string, depth int) {
	c.queueDepth.WithLabelValues(status).Set(float64(depth))
}
