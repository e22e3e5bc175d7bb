package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "rtsbot"
	// Subsystem for agent metrics
	subsystem = "agent"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalProductionCollector is the singleton production metrics collector
	// Set by SetGlobalProductionCollector() when metrics are enabled
	globalProductionCollector ProductionMetricsRecorder

	// globalConstructionCollector is the singleton construction metrics collector
	// Set by SetGlobalConstructionCollector() when metrics are enabled
	globalConstructionCollector ConstructionMetricsRecorder

	// globalCommandCollector is the singleton game command metrics collector
	globalCommandCollector CommandMetricsRecorder
)

// ProductionMetricsRecorder defines the interface for recording scheduler events
type ProductionMetricsRecorder interface {
	RecordOrderTransition(kind, from, to string)
	RecordAdmissionBlocked(kind, gate string)
	RecordOrderCompleted(kind string, frames int)
	SetQueueDepth(status string, depth int)
}

// ConstructionMetricsRecorder defines the interface for recording construction job events
type ConstructionMetricsRecorder interface {
	RecordJobEvent(event string)
	SetWorkerPool(total, reserved int)
}

// CommandMetricsRecorder defines the interface for recording game commands
type CommandMetricsRecorder interface {
	RecordWorldCommand(command, status string, seconds float64)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// Reset clears the registry and global collectors
func Reset() {
	Registry = nil
	globalProductionCollector = nil
	globalConstructionCollector = nil
	globalCommandCollector = nil
}

// SetGlobalProductionCollector sets the global production metrics collector
func SetGlobalProductionCollector(collector ProductionMetricsRecorder) {
	globalProductionCollector = collector
}

// RecordOrderTransition records an order status change globally
func RecordOrderTransition(kind, from, to string) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordOrderTransition(kind, from, to)
	}
}

// RecordAdmissionBlocked records a gate failure for the order at the head of the scan
func RecordAdmissionBlocked(kind, gate string) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordAdmissionBlocked(kind, gate)
	}
}

// RecordOrderCompleted records the submit-to-finish latency of an order in frames
func RecordOrderCompleted(kind string, frames int) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordOrderCompleted(kind, frames)
	}
}

// SetQueueDepth records the number of orders in a status
func SetQueueDepth(status string, depth int) {
	if globalProductionCollector != nil {
		globalProductionCollector.SetQueueDepth(status, depth)
	}
}

// SetGlobalConstructionCollector sets the global construction metrics collector
func SetGlobalConstructionCollector(collector ConstructionMetricsRecorder) {
	globalConstructionCollector = collector
}

// RecordJobEvent records a construction job lifecycle event globally
func RecordJobEvent(event string) {
	if globalConstructionCollector != nil {
		globalConstructionCollector.RecordJobEvent(event)
	}
}

// SetWorkerPool records the builder pool size and how many builders are reserved
func SetWorkerPool(total, reserved int) {
	if globalConstructionCollector != nil {
		globalConstructionCollector.SetWorkerPool(total, reserved)
	}
}

// SetGlobalCommandCollector sets the global command metrics collector
func SetGlobalCommandCollector(collector CommandMetricsRecorder) {
	globalCommandCollector = collector
}

// RecordWorldCommand records a game command outcome globally
func RecordWorldCommand(command, status string, seconds float64) {
	if globalCommandCollector != nil {
		globalCommandCollector.RecordWorldCommand(command, status, seconds)
	}
}
