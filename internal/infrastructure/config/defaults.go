package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "rtsbot.db"
	}
	if cfg.Database.Type == "postgres" {
		if cfg.Database.Host == "" {
			cfg.Database.Host = "localhost"
		}
		if cfg.Database.Port == 0 {
			cfg.Database.Port = 5432
		}
		if cfg.Database.User == "" {
			cfg.Database.User = "rtsbot"
		}
		if cfg.Database.Name == "" {
			cfg.Database.Name = "rtsbot"
		}
		if cfg.Database.SSLMode == "" {
			cfg.Database.SSLMode = "disable"
		}
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 10
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 2
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Metrics defaults
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Agent defaults
	if cfg.Agent.MapName == "" {
		cfg.Agent.MapName = "sandbox"
	}
	if cfg.Agent.FrameLimit == 0 {
		cfg.Agent.FrameLimit = 24 * 60 * 10 // ten game minutes
	}
	if cfg.Agent.Burst == 0 {
		cfg.Agent.Burst = 5
	}
	if cfg.Agent.DefaultPriority == 0 {
		cfg.Agent.DefaultPriority = 50
	}

	// Sandbox defaults
	if cfg.Sandbox.Minerals == 0 {
		cfg.Sandbox.Minerals = 50
	}
	if cfg.Sandbox.MineralsPerTrip == 0 {
		cfg.Sandbox.MineralsPerTrip = 1
	}
	if cfg.Sandbox.GasPerRefinery == 0 {
		cfg.Sandbox.GasPerRefinery = 3
	}
	if cfg.Sandbox.TravelFrames == 0 {
		cfg.Sandbox.TravelFrames = 48
	}
	if cfg.Sandbox.MapWidth == 0 {
		cfg.Sandbox.MapWidth = 128
	}
	if cfg.Sandbox.MapHeight == 0 {
		cfg.Sandbox.MapHeight = 128
	}

	// Daemon defaults
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 10 * time.Second
	}
}
