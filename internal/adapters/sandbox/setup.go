package sandbox

import (
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
)

// Spawn places a unit without raising events. Completed workers start idle.
func (w *World) Spawn(t techtree.UnitType, at shared.TilePosition, completed bool) shared.UnitID {
	u := w.add(t, at, completed)
	if !completed {
		if spec, err := w.catalog.Unit(t); err == nil {
			u.remaining = spec.BuildFrames
		}
	}
	return u.id
}

// SpawnGatherer places a completed worker already mining the nearest field
func (w *World) SpawnGatherer(t techtree.UnitType, at shared.TilePosition) shared.UnitID {
	id := w.Spawn(t, at, true)
	if node, ok := w.NearestResourceNode(at.ToPosition()); ok {
		u := w.units[id]
		u.activity = activityGathering
		u.target = node.ID
	}
	return id
}

// AddMineralField places a neutral mineral field
func (w *World) AddMineralField(at shared.TilePosition) shared.UnitID {
	return w.add(MineralFieldType, at, true).id
}

// SetResources overwrites the stockpile
func (w *World) SetResources(minerals, gas int) {
	w.minerals = minerals
	w.gas = gas
}

// SetUpgradeLevel overwrites an upgrade level
func (w *World) SetUpgradeLevel(up techtree.UpgradeType, level int) {
	w.levels[up] = level
}

// MarkResearched completes a tech without running it
func (w *World) MarkResearched(t techtree.TechType) {
	w.researched[t] = true
}

// SetIdle stops whatever a unit is doing
func (w *World) SetIdle(id shared.UnitID) {
	if u, ok := w.units[id]; ok {
		w.release(u)
	}
}

// Complete finishes an incomplete unit immediately and raises UnitCompleted
func (w *World) Complete(id shared.UnitID) {
	u, ok := w.units[id]
	if !ok || u.completed {
		return
	}
	u.remaining = 0
	u.completed = true
	if c := w.constructorOf(id); c != nil {
		w.release(c)
	}
	for _, other := range w.units {
		if other.activity == activityTraining && other.target == id {
			w.release(other)
		}
	}
	w.emit(world.UnitCompleted, u)
}

// NewStandardStart creates a world with a command center, a mineral line and
// four mining workers, the usual opening position.
func NewStandardStart(catalog *techtree.Catalog, cfg Config) (*World, shared.UnitID) {
	w := New(catalog, cfg)
	for i := 0; i < 8; i++ {
		w.AddMineralField(shared.NewTilePosition(2, 4+i*2))
	}
	cc := w.Spawn("Terran_Command_Center", shared.NewTilePosition(10, 10), true)
	for i := 0; i < 4; i++ {
		w.SpawnGatherer(catalog.WorkerType(), shared.NewTilePosition(7, 8+i))
	}
	return w, cc
}
