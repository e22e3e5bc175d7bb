package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/infrastructure/config"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rtsbot",
		Short: "rtsbot - production scheduling core of an RTS agent",
		Long: `rtsbot drives a production queue and construction tracker against a
simulated Terran opening and records every order transition.

Examples:
  rtsbot simulate --script configs/scripts/two_rax.yaml
  rtsbot catalog units
  rtsbot catalog tree Terran_Firebat
  rtsbot ledger matches
  rtsbot ledger show <match-id>
  rtsbot health --address localhost:50070
  rtsbot config show`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to rtsbot.yaml (default: ./, ./configs, /etc/rtsbot)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log at debug level")

	rootCmd.AddCommand(NewSimulateCommand())
	rootCmd.AddCommand(NewCatalogCommand())
	rootCmd.AddCommand(NewLedgerCommand())
	rootCmd.AddCommand(NewHealthCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// loadConfig applies --config and --verbose
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// loadCatalog returns the configured tech tree, or the built-in one
func loadCatalog(cfg *config.Config) (*techtree.Catalog, error) {
	if cfg.Agent.CatalogPath == "" {
		return techtree.DefaultCatalog(), nil
	}
	return techtree.LoadCatalogFile(cfg.Agent.CatalogPath)
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
