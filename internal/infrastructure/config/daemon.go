package config

import "time"

// DaemonConfig holds the settings of a long-running match process
type DaemonConfig struct {
	// gRPC health endpoint (host:port); empty disables it
	HealthAddress string `mapstructure:"health_address"`

	// Graceful shutdown timeout for the health and metrics servers
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}
