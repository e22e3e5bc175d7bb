package techtree

import "fmt"

// UnitType names a unit or building type, e.g. "Terran_Marine"
type UnitType string

// TechType names a one-shot research, e.g. "Stim_Packs"
type TechType string

// UpgradeType names a levelled upgrade, e.g. "Terran_Infantry_Weapons"
type UpgradeType string

// None is the empty type name for all three kinds
const None = ""

func (t UnitType) IsNone() bool    { return t == None }
func (t TechType) IsNone() bool    { return t == None }
func (t UpgradeType) IsNone() bool { return t == None }

// Price is a mineral and gas cost
type Price struct {
	Minerals int `yaml:"minerals"`
	Gas      int `yaml:"gas"`
}

// CoveredBy reports whether the given stockpile pays for the price
func (p Price) CoveredBy(minerals, gas int) bool {
	return minerals >= p.Minerals && gas >= p.Gas
}

func (p Price) String() string {
	return fmt.Sprintf("%dm/%dg", p.Minerals, p.Gas)
}

// UnitSpec describes how a unit or building type is produced
type UnitSpec struct {
	Type            UnitType
	Price           Price
	SupplyRequired  int
	SupplyProvided  int
	BuiltBy         UnitType
	Requires        []UnitType
	IsBuilding      bool
	IsWorker        bool
	IsResourceDepot bool
	BuildFrames     int
}

// TechSpec describes a research
type TechSpec struct {
	Type           TechType
	Price          Price
	ResearchedAt   UnitType
	Requires       UnitType
	ResearchFrames int
}

// UpgradeLevel is the cost and requirement of one upgrade level
type UpgradeLevel struct {
	Price    Price
	Requires UnitType
	Frames   int
}

// UpgradeSpec describes a levelled upgrade. Levels[0] is level 1.
type UpgradeSpec struct {
	Type       UpgradeType
	UpgradedAt UnitType
	Levels     []UpgradeLevel
}

// MaxLevel returns the highest reachable level
func (u UpgradeSpec) MaxLevel() int {
	return len(u.Levels)
}

// Level returns the definition of a 1-based level
func (u UpgradeSpec) Level(level int) (UpgradeLevel, error) {
	if level < 1 || level > len(u.Levels) {
		return UpgradeLevel{}, &ErrInvalidLevel{Upgrade: u.Type, Level: level, MaxLevel: len(u.Levels)}
	}
	return u.Levels[level-1], nil
}
