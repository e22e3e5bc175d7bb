package config

// AgentConfig tunes the production agent
type AgentConfig struct {
	// Tech tree YAML; empty uses the built-in Terran catalog
	CatalogPath string `mapstructure:"catalog_path"`

	MapName  string `mapstructure:"map_name"`
	PlayerID int    `mapstructure:"player_id" validate:"min=0"`

	// Frames to simulate before stopping
	FrameLimit int `mapstructure:"frame_limit" validate:"min=1"`

	// Command cap in actions per game minute; 0 disables throttling
	APM   int `mapstructure:"apm" validate:"min=0"`
	Burst int `mapstructure:"burst" validate:"min=1"`

	// Priority used for script requests that do not set one
	DefaultPriority int `mapstructure:"default_priority"`

	// Log the production queue every n frames at debug level; 0 disables it
	DescribeEvery int `mapstructure:"describe_every" validate:"min=0"`
}

// SandboxConfig sets up the simulated opening position
type SandboxConfig struct {
	Minerals        int `mapstructure:"minerals" validate:"min=0"`
	Gas             int `mapstructure:"gas" validate:"min=0"`
	MineralsPerTrip int `mapstructure:"minerals_per_trip" validate:"min=0"`
	GasPerRefinery  int `mapstructure:"gas_per_refinery" validate:"min=0"`
	TravelFrames    int `mapstructure:"travel_frames" validate:"min=0"`
	MapWidth        int `mapstructure:"map_width" validate:"min=16"`
	MapHeight       int `mapstructure:"map_height" validate:"min=16"`
}
