package sandbox

import (
	"math"
	"sort"

	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
	"github.com/andrescamacho/rtsbot-go/pkg/utils"
)

const (
	// MineralFieldType is the unit type of neutral mineral fields
	MineralFieldType techtree.UnitType = "Resource_Mineral_Field"
	// RefineryType produces gas once completed
	RefineryType techtree.UnitType = "Terran_Refinery"
)

// Config tunes the simulation
type Config struct {
	Self            shared.PlayerID
	Minerals        int
	Gas             int
	MineralsPerTrip int // per gathering worker per second
	GasPerRefinery  int // per completed refinery per second
	TravelFrames    int // frames between a build command and placement
	MapWidth        int
	MapHeight       int
	MaxSupply       int
}

// DefaultConfig returns a standard ladder start
func DefaultConfig() Config {
	return Config{
		Self:            1,
		Minerals:        50,
		MineralsPerTrip: 1,
		GasPerRefinery:  3,
		TravelFrames:    48,
		MapWidth:        128,
		MapHeight:       128,
		MaxSupply:       400,
	}
}

type activity int

const (
	activityIdle activity = iota
	activityGathering
	activityMovingToBuild
	activityConstructing
	activityTraining
	activityResearching
	activityUpgrading
)

type unitState struct {
	id        shared.UnitID
	unitType  techtree.UnitType
	owner     shared.PlayerID
	tile      shared.TilePosition
	completed bool

	activity  activity
	remaining int // frames left for the current activity or own construction
	target    shared.UnitID
	buildType techtree.UnitType
	buildAt   shared.TilePosition
	tech      techtree.TechType
	upgrade   techtree.UpgradeType
}

// World is a deterministic, single-player, in-memory game. It implements
// world.World and world.EventSource and is advanced explicitly with Step.
type World struct {
	cfg     Config
	catalog *techtree.Catalog

	frame    int
	minerals int
	gas      int
	nextID   shared.UnitID
	units    map[shared.UnitID]*unitState

	researched map[techtree.TechType]bool
	levels     map[techtree.UpgradeType]int

	events   []world.UnitEvent
	failNext error
}

// New creates an empty world
func New(catalog *techtree.Catalog, cfg Config) *World {
	return &World{
		cfg:        cfg,
		catalog:    catalog,
		minerals:   cfg.Minerals,
		gas:        cfg.Gas,
		nextID:     1,
		units:      make(map[shared.UnitID]*unitState),
		researched: make(map[techtree.TechType]bool),
		levels:     make(map[techtree.UpgradeType]int),
	}
}

func (w *World) snapshot(u *unitState) world.Unit {
	pos := u.tile.ToPosition()
	return world.Unit{
		ID:          u.id,
		Type:        u.unitType,
		Owner:       u.owner,
		Position:    pos,
		Tile:        u.tile,
		Completed:   u.completed,
		Idle:        u.completed && u.activity == activityIdle,
		Exists:      true,
		Visible:     true,
		Gathering:   u.activity == activityGathering,
		Researching: u.tech,
		Upgrading:   u.upgrade,
	}
}

func (w *World) sortedIDs() []shared.UnitID {
	ids := make([]shared.UnitID, 0, len(w.units))
	for id := range w.units {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Queries

func (w *World) Self() shared.PlayerID { return w.cfg.Self }
func (w *World) FrameCount() int       { return w.frame }
func (w *World) Minerals() int         { return w.minerals }
func (w *World) Gas() int              { return w.gas }

// SupplyUsed counts every own unit, including units still in training
func (w *World) SupplyUsed() int {
	used := 0
	for _, u := range w.units {
		if u.owner != w.cfg.Self {
			continue
		}
		if spec, err := w.catalog.Unit(u.unitType); err == nil {
			used += spec.SupplyRequired
		}
	}
	return used
}

// SupplyTotal counts completed supply providers, capped at the game maximum
func (w *World) SupplyTotal() int {
	total := 0
	for _, u := range w.units {
		if u.owner != w.cfg.Self || !u.completed {
			continue
		}
		if spec, err := w.catalog.Unit(u.unitType); err == nil {
			total += spec.SupplyProvided
		}
	}
	if w.cfg.MaxSupply > 0 && total > w.cfg.MaxSupply {
		return w.cfg.MaxSupply
	}
	return total
}

func (w *World) UpgradeLevel(u techtree.UpgradeType) int { return w.levels[u] }
func (w *World) HasResearched(t techtree.TechType) bool  { return w.researched[t] }

func (w *World) IsResearching(t techtree.TechType) bool {
	for _, u := range w.units {
		if u.owner == w.cfg.Self && u.tech == t {
			return true
		}
	}
	return false
}

func (w *World) IsUpgrading(up techtree.UpgradeType) bool {
	for _, u := range w.units {
		if u.owner == w.cfg.Self && u.upgrade == up {
			return true
		}
	}
	return false
}

func (w *World) MyUnits(filter world.UnitFilter) []world.Unit {
	var out []world.Unit
	for _, id := range w.sortedIDs() {
		u := w.units[id]
		if u.owner != w.cfg.Self {
			continue
		}
		snap := w.snapshot(u)
		if filter.Matches(snap) {
			out = append(out, snap)
		}
	}
	return out
}

func (w *World) Unit(id shared.UnitID) (world.Unit, bool) {
	u, ok := w.units[id]
	if !ok {
		return world.Unit{}, false
	}
	return w.snapshot(u), true
}

func (w *World) NearestResourceNode(pos shared.Position) (world.Unit, bool) {
	var best *unitState
	bestDist := math.MaxFloat64
	for _, id := range w.sortedIDs() {
		u := w.units[id]
		if u.unitType != MineralFieldType {
			continue
		}
		if d := u.tile.ToPosition().Distance(pos); d < bestDist {
			best, bestDist = u, d
		}
	}
	if best == nil {
		return world.Unit{}, false
	}
	return w.snapshot(best), true
}

// CanBuildHere rejects tiles off the map or within two tiles of another building
func (w *World) CanBuildHere(t techtree.UnitType, at shared.TilePosition) bool {
	if at.X < 0 || at.Y < 0 || at.X >= w.cfg.MapWidth || at.Y >= w.cfg.MapHeight {
		return false
	}
	for _, u := range w.units {
		if !w.occupiesGround(u) {
			continue
		}
		if utils.Abs(u.tile.X-at.X) < 3 && utils.Abs(u.tile.Y-at.Y) < 3 {
			return false
		}
	}
	return true
}

func (w *World) occupiesGround(u *unitState) bool {
	if u.unitType == MineralFieldType {
		return true
	}
	spec, err := w.catalog.Unit(u.unitType)
	return err == nil && spec.IsBuilding
}

// DrainEvents returns and clears the events raised since the last drain
func (w *World) DrainEvents() []world.UnitEvent {
	out := w.events
	w.events = nil
	return out
}

func (w *World) emit(t world.EventType, u *unitState) {
	w.events = append(w.events, world.UnitEvent{Type: t, Frame: w.frame, Unit: w.snapshot(u)})
}
