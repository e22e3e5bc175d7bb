package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/rtsbot-go/internal/adapters/grpc"
	"github.com/andrescamacho/rtsbot-go/internal/adapters/metrics"
	"github.com/andrescamacho/rtsbot-go/internal/adapters/script"
	"github.com/andrescamacho/rtsbot-go/internal/infrastructure/database"
)

// NewSimulateCommand creates the simulate command
func NewSimulateCommand() *cobra.Command {
	var (
		scriptPath string
		frames     int
		untilIdle  bool
		noDB       bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a build order script against the sandbox world",
		Long: `Run the production scheduler and construction tracker against the
in-memory sandbox, firing the requests of a YAML build order script as
their frames come up.

Every order transition is written to the match ledger unless --no-db is
given. Metrics and the gRPC health endpoint are served while the match runs
when enabled in the configuration.

Examples:
  rtsbot simulate --script configs/scripts/two_rax.yaml
  rtsbot simulate --script bio.yaml --frames 14400 --until-idle=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if scriptPath == "" {
				return fmt.Errorf("--script is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if frames > 0 {
				cfg.Agent.FrameLimit = frames
			}
			catalog, err := loadCatalog(cfg)
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}
			s, err := script.LoadFile(scriptPath, catalog, cfg.Agent.DefaultPriority)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner := NewMatchRunner(cfg, catalog, nil, nil)

			if !noDB {
				db, err := database.NewConnection(&cfg.Database)
				if err != nil {
					return fmt.Errorf("failed to connect to database: %w", err)
				}
				defer database.Close(db)
				if err := database.AutoMigrate(db); err != nil {
					return fmt.Errorf("failed to migrate database: %w", err)
				}
				runner.db = db
			}

			errCh := make(chan error, 1)
			if cfg.Metrics.Enabled {
				metrics.InitRegistry()
				defer metrics.Reset()
				if err := registerCollectors(); err != nil {
					return err
				}
				server := metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
				server.Start(errCh)
				defer shutdown(cfg.Daemon.ShutdownTimeout, server.Shutdown)
				fmt.Fprintf(cmd.OutOrStdout(), "Metrics on http://%s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
			}
			if cfg.Daemon.HealthAddress != "" {
				health, err := grpc.NewHealthServer(cfg.Daemon.HealthAddress)
				if err != nil {
					return err
				}
				health.Start()
				defer shutdown(cfg.Daemon.ShutdownTimeout, func(ctx context.Context) error {
					health.Stop(ctx)
					return nil
				})
				runner.Health = health
				fmt.Fprintf(cmd.OutOrStdout(), "Health on %s\n", health.Addr())
			}

			go func() {
				if err := <-errCh; err != nil {
					fmt.Fprintln(os.Stderr, err)
					stop()
				}
			}()

			result, err := runner.Run(ctx, s, untilIdle)
			if result != nil {
				printResult(cmd, result)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "Build order script (YAML)")
	cmd.Flags().IntVar(&frames, "frames", 0, "Frame limit (overrides agent.frame_limit)")
	cmd.Flags().BoolVar(&untilIdle, "until-idle", true, "Stop once the script is done and the queue is empty")
	cmd.Flags().BoolVar(&noDB, "no-db", false, "Do not record the match")

	return cmd
}

func registerCollectors() error {
	production := metrics.NewProductionMetricsCollector()
	if err := production.Register(); err != nil {
		return fmt.Errorf("failed to register production metrics: %w", err)
	}
	metrics.SetGlobalProductionCollector(production)

	construction := metrics.NewConstructionMetricsCollector()
	if err := construction.Register(); err != nil {
		return fmt.Errorf("failed to register construction metrics: %w", err)
	}
	metrics.SetGlobalConstructionCollector(construction)

	commands := metrics.NewCommandMetricsCollector()
	if err := commands.Register(); err != nil {
		return fmt.Errorf("failed to register command metrics: %w", err)
	}
	metrics.SetGlobalCommandCollector(commands)
	return nil
}

func printResult(cmd *cobra.Command, r *MatchResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nMatch:     %s\n", r.MatchID)
	fmt.Fprintf(out, "Status:    %s (%s)\n", r.Status, r.Reason)
	fmt.Fprintf(out, "Frames:    %d\n", r.Frames)
	fmt.Fprintf(out, "Resources: %d minerals, %d gas\n", r.Minerals, r.Gas)
	fmt.Fprintf(out, "Open jobs: %d\n", r.Open)
	fmt.Fprintln(out, r.Queue)
}
