package config

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Minimum level: debug, info, warn, error
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`

	// Line format: text or json
	Format string `mapstructure:"format" validate:"required,oneof=json text"`

	// Output destination: stdout or stderr
	Output string `mapstructure:"output" validate:"required,oneof=stdout stderr"`

	// Persist also writes log lines to the match_logs table
	Persist bool `mapstructure:"persist"`
}
