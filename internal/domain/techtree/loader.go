package techtree

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed terran.yaml
var defaultCatalogYAML []byte

type catalogFile struct {
	Units    []unitEntry    `yaml:"units"`
	Techs    []techEntry    `yaml:"techs"`
	Upgrades []upgradeEntry `yaml:"upgrades"`
}

type unitEntry struct {
	Name           string   `yaml:"name"`
	Minerals       int      `yaml:"minerals"`
	Gas            int      `yaml:"gas"`
	Supply         int      `yaml:"supply"`
	SupplyProvided int      `yaml:"supply_provided"`
	BuiltBy        string   `yaml:"built_by"`
	Requires       []string `yaml:"requires"`
	Building       bool     `yaml:"building"`
	Worker         bool     `yaml:"worker"`
	ResourceDepot  bool     `yaml:"resource_depot"`
	BuildFrames    int      `yaml:"build_frames"`
}

type techEntry struct {
	Name         string `yaml:"name"`
	Minerals     int    `yaml:"minerals"`
	Gas          int    `yaml:"gas"`
	ResearchedAt string `yaml:"researched_at"`
	Requires     string `yaml:"requires"`
	Frames       int    `yaml:"frames"`
}

type upgradeEntry struct {
	Name       string       `yaml:"name"`
	UpgradedAt string       `yaml:"upgraded_at"`
	Levels     []levelEntry `yaml:"levels"`
}

type levelEntry struct {
	Minerals int    `yaml:"minerals"`
	Gas      int    `yaml:"gas"`
	Requires string `yaml:"requires"`
	Frames   int    `yaml:"frames"`
}

// LoadCatalog parses a YAML tech tree
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	units := make([]UnitSpec, 0, len(file.Units))
	for _, u := range file.Units {
		requires := make([]UnitType, 0, len(u.Requires))
		for _, r := range u.Requires {
			requires = append(requires, UnitType(r))
		}
		units = append(units, UnitSpec{
			Type:            UnitType(u.Name),
			Price:           Price{Minerals: u.Minerals, Gas: u.Gas},
			SupplyRequired:  u.Supply,
			SupplyProvided:  u.SupplyProvided,
			BuiltBy:         UnitType(u.BuiltBy),
			Requires:        requires,
			IsBuilding:      u.Building,
			IsWorker:        u.Worker,
			IsResourceDepot: u.ResourceDepot,
			BuildFrames:     u.BuildFrames,
		})
	}

	techs := make([]TechSpec, 0, len(file.Techs))
	for _, t := range file.Techs {
		techs = append(techs, TechSpec{
			Type:           TechType(t.Name),
			Price:          Price{Minerals: t.Minerals, Gas: t.Gas},
			ResearchedAt:   UnitType(t.ResearchedAt),
			Requires:       UnitType(t.Requires),
			ResearchFrames: t.Frames,
		})
	}

	upgrades := make([]UpgradeSpec, 0, len(file.Upgrades))
	for _, u := range file.Upgrades {
		levels := make([]UpgradeLevel, 0, len(u.Levels))
		for _, l := range u.Levels {
			levels = append(levels, UpgradeLevel{
				Price:    Price{Minerals: l.Minerals, Gas: l.Gas},
				Requires: UnitType(l.Requires),
				Frames:   l.Frames,
			})
		}
		upgrades = append(upgrades, UpgradeSpec{
			Type:       UpgradeType(u.Name),
			UpgradedAt: UnitType(u.UpgradedAt),
			Levels:     levels,
		})
	}

	return NewCatalog(units, techs, upgrades)
}

// LoadCatalogFile reads a YAML tech tree from disk
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// DefaultCatalog returns the built-in Terran tech tree
func DefaultCatalog() *Catalog {
	c, err := LoadCatalog(bytes.NewReader(defaultCatalogYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}
