package cli

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/andrescamacho/rtsbot-go/internal/adapters/persistence"
	"github.com/andrescamacho/rtsbot-go/internal/infrastructure/database"
)

// NewLedgerCommand creates the ledger command with subcommands
func NewLedgerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect recorded matches",
		Long: `View the matches recorded by simulate, the status transitions of their
production orders and their persisted logs.

Examples:
  rtsbot ledger matches --limit 5
  rtsbot ledger show sandbox-1a2b3c4d
  rtsbot ledger show sandbox-1a2b3c4d --order 6f1c...
  rtsbot ledger interruptions sandbox-1a2b3c4d
  rtsbot ledger logs sandbox-1a2b3c4d --level WARNING`,
	}

	cmd.AddCommand(newLedgerMatchesCommand())
	cmd.AddCommand(newLedgerShowCommand())
	cmd.AddCommand(newLedgerInterruptionsCommand())
	cmd.AddCommand(newLedgerLogsCommand())

	return cmd
}

// withDatabase opens the configured database for a read-only command
func withDatabase(fn func(ctx context.Context, db *gorm.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return fn(context.Background(), db)
}

func newLedgerMatchesCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "matches",
		Short: "List recent matches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(ctx context.Context, db *gorm.DB) error {
				matches, err := persistence.NewGormMatchRepository(db, nil).ListRecent(ctx, limit)
				if err != nil {
					return err
				}
				if len(matches) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No matches recorded")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "MATCH\tMAP\tSTATUS\tFRAMES\tSTARTED\tREASON")
				for _, m := range matches {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
						m.ID, m.MapName, m.Status, m.Frames, m.StartedAt.Format(time.RFC3339), m.ExitReason)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of matches to list")
	return cmd
}

func newLedgerShowCommand() *cobra.Command {
	var (
		orderID string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "show <match-id>",
		Short: "Show the order transitions of a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(ctx context.Context, db *gorm.DB) error {
				ledger := persistence.NewGormTransitionLedger(db, args[0], nil)

				var rows []persistence.OrderTransitionModel
				var err error
				if orderID != "" {
					rows, err = ledger.ForOrder(ctx, orderID)
				} else {
					rows, err = ledger.ForMatch(ctx, args[0], limit)
				}
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "FRAME\tORDER\tTARGET\tPRIORITY\tFROM\tTO\tUNIT\tREASON")
				for _, r := range rows {
					target := r.Target
					if r.Level > 0 {
						target = fmt.Sprintf("%s L%d", r.Target, r.Level)
					}
					unit := "-"
					if r.UnitID != 0 {
						unit = fmt.Sprintf("#%d", r.UnitID)
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
						r.Frame, shortID(r.OrderID), target, r.Priority, r.FromStatus, r.ToStatus, unit, r.Reason)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&orderID, "order", "", "Only show one order")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of transitions (0 = all)")
	return cmd
}

func newLedgerInterruptionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "interruptions <match-id>",
		Short: "Count aborted orders per target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(ctx context.Context, db *gorm.DB) error {
				counts, err := persistence.NewGormTransitionLedger(db, args[0], nil).Interruptions(ctx, args[0])
				if err != nil {
					return err
				}
				if len(counts) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No interruptions")
					return nil
				}
				targets := make([]string, 0, len(counts))
				for t := range counts {
					targets = append(targets, t)
				}
				sort.Strings(targets)

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "TARGET\tINTERRUPTIONS")
				for _, t := range targets {
					fmt.Fprintf(w, "%s\t%d\n", t, counts[t])
				}
				return w.Flush()
			})
		},
	}
}

func newLedgerLogsCommand() *cobra.Command {
	var (
		level  string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "logs <match-id>",
		Short: "Show persisted logs of a match, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(ctx context.Context, db *gorm.DB) error {
				var levelFilter *string
				if level != "" {
					levelFilter = &level
				}
				logs, err := persistence.NewGormMatchLogRepository(db, nil).GetLogs(ctx, args[0], limit, offset, levelFilter, nil)
				if err != nil {
					return err
				}
				for _, l := range logs {
					fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", l.Timestamp.Format(time.RFC3339), l.Level, l.Message)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "Filter by level (DEBUG, INFO, WARNING, ERROR)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of lines")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of lines to skip")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
