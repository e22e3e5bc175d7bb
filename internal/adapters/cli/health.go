package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/rtsbot-go/internal/adapters/grpc"
)

// NewHealthCommand creates the health command
func NewHealthCommand() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the health endpoint of a running simulation",
		Long: `Query the gRPC health endpoint served by simulate when
daemon.health_address is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if address == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				address = cfg.Daemon.HealthAddress
			}
			if address == "" {
				return fmt.Errorf("no health address: pass --address or set daemon.health_address")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			report, err := grpc.CheckHealth(ctx, address)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ rtsbot is up at %s\n", address)
			fmt.Fprintf(cmd.OutOrStdout(), "  Process: %s\n", report.Overall)
			fmt.Fprintf(cmd.OutOrStdout(), "  Match:   %s\n", report.Match)
			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Health endpoint (default: daemon.health_address)")
	return cmd
}
