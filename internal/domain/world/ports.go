package world

import (
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
)

// Queries is the read side of the game as seen by one player.
// All answers describe the current frame only.
type Queries interface {
	Self() shared.PlayerID
	FrameCount() int

	Minerals() int
	Gas() int
	SupplyUsed() int
	SupplyTotal() int

	UpgradeLevel(upgrade techtree.UpgradeType) int
	HasResearched(tech techtree.TechType) bool
	IsResearching(tech techtree.TechType) bool
	IsUpgrading(upgrade techtree.UpgradeType) bool

	// MyUnits lists the player's own units matching the filter, ordered by ID
	MyUnits(filter UnitFilter) []Unit
	// Unit looks up any unit by handle; ok is false once the unit is gone
	Unit(id shared.UnitID) (Unit, bool)
	// NearestResourceNode returns the closest mineral field to pos
	NearestResourceNode(pos shared.Position) (Unit, bool)
	CanBuildHere(t techtree.UnitType, at shared.TilePosition) bool
}

// Commands issues orders to units. Commands are fire-and-forget: a nil error
// only means the game accepted the command, not that it took effect.
type Commands interface {
	Build(worker shared.UnitID, t techtree.UnitType, at shared.TilePosition) error
	Train(producer shared.UnitID, t techtree.UnitType) error
	Research(producer shared.UnitID, tech techtree.TechType) error
	// Upgrade starts the next level of upgrade; the game picks the level, so none is passed
	Upgrade(producer shared.UnitID, upgrade techtree.UpgradeType) error
	Gather(worker, node shared.UnitID) error
	// Resume sends a worker to continue construction of an in-progress building
	Resume(worker, building shared.UnitID) error
	HaltConstruction(building shared.UnitID) error
	CancelConstruction(worker shared.UnitID) error
}

// World is the full game interface the production core is handed every tick
type World interface {
	Queries
	Commands
}
