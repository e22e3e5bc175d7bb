package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/rtsbot-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect rtsbot configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (RTS_* prefix, DATABASE_URL)
2. Config file (rtsbot.yaml)
3. Default values

Examples:
  rtsbot config show
  RTS_AGENT_APM=300 rtsbot config show`,
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(cmd.OutOrStdout(), "Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}
			printConfig(cmd, cfg)
			return nil
		},
	}
}

func printConfig(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "rtsbot Configuration")
	fmt.Fprintln(out, "====================")

	fmt.Fprintln(out, "\nDatabase:")
	fmt.Fprintf(out, "  Type:             %s\n", cfg.Database.Type)
	switch {
	case cfg.Database.URL != "":
		fmt.Fprintf(out, "  URL:              %s\n", maskPassword(cfg.Database.URL))
	case cfg.Database.Type == "sqlite":
		fmt.Fprintf(out, "  Path:             %s\n", cfg.Database.Path)
	default:
		fmt.Fprintf(out, "  Host:             %s:%d\n", cfg.Database.Host, cfg.Database.Port)
		fmt.Fprintf(out, "  Database:         %s\n", cfg.Database.Name)
		fmt.Fprintf(out, "  User:             %s\n", cfg.Database.User)
	}

	fmt.Fprintln(out, "\nAgent:")
	catalog := cfg.Agent.CatalogPath
	if catalog == "" {
		catalog = "(built-in Terran)"
	}
	fmt.Fprintf(out, "  Catalog:          %s\n", catalog)
	fmt.Fprintf(out, "  Map:              %s\n", cfg.Agent.MapName)
	fmt.Fprintf(out, "  Player:           %d\n", cfg.Agent.PlayerID)
	fmt.Fprintf(out, "  Frame Limit:      %d\n", cfg.Agent.FrameLimit)
	if cfg.Agent.APM > 0 {
		fmt.Fprintf(out, "  APM Cap:          %d (burst: %d)\n", cfg.Agent.APM, cfg.Agent.Burst)
	} else {
		fmt.Fprintf(out, "  APM Cap:          (none)\n")
	}
	fmt.Fprintf(out, "  Default Priority: %d\n", cfg.Agent.DefaultPriority)

	fmt.Fprintln(out, "\nSandbox:")
	fmt.Fprintf(out, "  Stockpile:        %d minerals, %d gas\n", cfg.Sandbox.Minerals, cfg.Sandbox.Gas)
	fmt.Fprintf(out, "  Income:           %d/worker/s, %d/refinery/s\n", cfg.Sandbox.MineralsPerTrip, cfg.Sandbox.GasPerRefinery)
	fmt.Fprintf(out, "  Travel:           %d frames\n", cfg.Sandbox.TravelFrames)
	fmt.Fprintf(out, "  Map Size:         %dx%d\n", cfg.Sandbox.MapWidth, cfg.Sandbox.MapHeight)

	fmt.Fprintln(out, "\nMetrics:")
	if cfg.Metrics.Enabled {
		fmt.Fprintf(out, "  Endpoint:         http://%s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
	} else {
		fmt.Fprintln(out, "  Endpoint:         (disabled)")
	}

	fmt.Fprintln(out, "\nDaemon:")
	health := cfg.Daemon.HealthAddress
	if health == "" {
		health = "(disabled)"
	}
	fmt.Fprintf(out, "  Health:           %s\n", health)
	fmt.Fprintf(out, "  Shutdown Timeout: %s\n", cfg.Daemon.ShutdownTimeout)

	fmt.Fprintln(out, "\nLogging:")
	fmt.Fprintf(out, "  Level:            %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  Format:           %s\n", cfg.Logging.Format)
	fmt.Fprintf(out, "  Output:           %s\n", cfg.Logging.Output)
	fmt.Fprintf(out, "  Persist:          %t\n", cfg.Logging.Persist)
}
