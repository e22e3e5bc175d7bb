package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/rtsbot-go/internal/domain/production"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
)

// NewCatalogCommand creates the catalog command with subcommands
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the tech tree",
		Long: `List the units, techs and upgrades of the configured tech tree and show
what a target needs before it can be produced.

Examples:
  rtsbot catalog units
  rtsbot catalog upgrades
  rtsbot catalog tree Terran_Firebat
  rtsbot catalog tree Terran_Infantry_Weapons --level 2`,
	}

	cmd.AddCommand(newCatalogListCommand("units", "List unit and building types", printUnits))
	cmd.AddCommand(newCatalogListCommand("techs", "List researchable techs", printTechs))
	cmd.AddCommand(newCatalogListCommand("upgrades", "List upgrades and their levels", printUpgrades))
	cmd.AddCommand(newCatalogTreeCommand())

	return cmd
}

func newCatalogListCommand(use, short string, render func(*tabwriter.Writer, *techtree.Catalog)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := catalogFromConfig()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			render(w, catalog)
			return w.Flush()
		},
	}
}

func newCatalogTreeCommand() *cobra.Command {
	var (
		level     int
		useColors bool
	)

	cmd := &cobra.Command{
		Use:   "tree <type>",
		Short: "Show the prerequisite tree of a unit, tech or upgrade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := catalogFromConfig()
			if err != nil {
				return err
			}
			target, err := resolveTarget(catalog, args[0], level)
			if err != nil {
				return err
			}
			root, err := BuildRequirementTree(catalog, target)
			if err != nil {
				return err
			}
			f := NewTreeFormatter(useColors)
			fmt.Fprint(cmd.OutOrStdout(), f.FormatTree(root))
			fmt.Fprintln(cmd.OutOrStdout(), f.FormatTreeSummary(root))
			return nil
		},
	}

	cmd.Flags().IntVar(&level, "level", 1, "Upgrade level")
	cmd.Flags().BoolVar(&useColors, "color", false, "Colour producer and requirement roles")

	return cmd
}

func catalogFromConfig() (*techtree.Catalog, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return catalog, nil
}

// resolveTarget looks a name up as a unit, then a tech, then an upgrade
func resolveTarget(catalog *techtree.Catalog, name string, level int) (production.Target, error) {
	if _, err := catalog.Unit(techtree.UnitType(name)); err == nil {
		return production.UnitTarget(techtree.UnitType(name)), nil
	}
	if _, err := catalog.Tech(techtree.TechType(name)); err == nil {
		return production.ResearchTarget(techtree.TechType(name)), nil
	}
	if spec, err := catalog.Upgrade(techtree.UpgradeType(name)); err == nil {
		if _, err := spec.Level(level); err != nil {
			return production.Target{}, err
		}
		return production.UpgradeTarget(techtree.UpgradeType(name), level), nil
	}
	return production.Target{}, fmt.Errorf("%s is not a unit, tech or upgrade", name)
}

func printUnits(w *tabwriter.Writer, catalog *techtree.Catalog) {
	fmt.Fprintln(w, "TYPE\tCOST\tSUPPLY\tBUILT BY\tREQUIRES\tFRAMES")
	for _, u := range catalog.Units() {
		supply := fmt.Sprintf("%d", u.SupplyRequired)
		if u.SupplyProvided > 0 {
			supply = fmt.Sprintf("+%d", u.SupplyProvided)
		}
		requires := make([]string, 0, len(u.Requires))
		for _, r := range u.Requires {
			requires = append(requires, string(r))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n", u.Type, u.Price, supply, u.BuiltBy, strings.Join(requires, ","), u.BuildFrames)
	}
}

func printTechs(w *tabwriter.Writer, catalog *techtree.Catalog) {
	fmt.Fprintln(w, "TECH\tCOST\tRESEARCHED AT\tREQUIRES\tFRAMES")
	for _, t := range catalog.Techs() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", t.Type, t.Price, t.ResearchedAt, t.Requires, t.ResearchFrames)
	}
}

func printUpgrades(w *tabwriter.Writer, catalog *techtree.Catalog) {
	fmt.Fprintln(w, "UPGRADE\tLEVEL\tCOST\tUPGRADED AT\tREQUIRES\tFRAMES")
	for _, u := range catalog.Upgrades() {
		for i, l := range u.Levels {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%d\n", u.Type, i+1, l.Price, u.UpgradedAt, l.Requires, l.Frames)
		}
	}
}
