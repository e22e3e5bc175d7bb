package config

// MetricsConfig holds metrics collection and exposure configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Port for the Prometheus endpoint
	Port int `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`

	// Host to bind the metrics server (default: localhost)
	Host string `mapstructure:"host"`

	Path string `mapstructure:"path"`
}
