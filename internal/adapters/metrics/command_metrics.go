package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Command outcomes
const (
	CommandAccepted  = "accepted"
	CommandRejected  = "rejected"
	CommandThrottled = "throttled"
)

// CommandMetricsCollector handles game command metrics
type CommandMetricsCollector struct {
	commandDuration *prometheus.HistogramVec
	commandsTotal   *prometheus.CounterVec
}

// NewCommandMetricsCollector creates a new command metrics collector
func NewCommandMetricsCollector() *CommandMetricsCollector {
	return &CommandMetricsCollector{
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "command_duration_seconds",
				Help:      "Time spent handing a command to the game",
				Buckets:   []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05},
			},
			[]string{"command"},
		),

		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "commands_total",
				Help:      "Game commands by type and outcome",
			},
			[]string{"command", "status"},
		),
	}
}

// Register registers all command metrics with the Prometheus registry
func (c *CommandMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.commandDuration,
		c.commandsTotal,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordWorldCommand records one command and its outcome. Throttled commands
// never reach the game and are not timed.
func (c *CommandMetricsCollector) RecordWorldCommand(command, status string, seconds float64) {
	if status != CommandThrottled {
		c.commandDuration.WithLabelValues(command).Observe(seconds)
	}
	c.commandsTotal.WithLabelValues(command, status).Inc()
}
