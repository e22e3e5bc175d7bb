package sandbox

import (
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
)

// Step advances the simulation by n frames
func (w *World) Step(n int) {
	for i := 0; i < n; i++ {
		w.frame++
		w.advance()
		if w.frame%shared.FramesPerSecond == 0 {
			w.collectIncome()
		}
	}
}

func (w *World) advance() {
	for _, id := range w.sortedIDs() {
		u, ok := w.units[id]
		if !ok {
			continue
		}
		switch u.activity {
		case activityMovingToBuild:
			w.advancePlacement(u)
		case activityConstructing:
			w.advanceConstruction(u)
		case activityTraining:
			w.advanceTraining(u)
		case activityResearching:
			if u.remaining--; u.remaining <= 0 {
				w.researched[u.tech] = true
				u.tech = techtree.None
				w.release(u)
			}
		case activityUpgrading:
			if u.remaining--; u.remaining <= 0 {
				w.levels[u.upgrade]++
				u.upgrade = techtree.None
				w.release(u)
			}
		}
	}
}

// advancePlacement places the building once the worker arrives. If the site
// became blocked or unaffordable the worker just stops, like in the real game.
func (w *World) advancePlacement(u *unitState) {
	if u.remaining > 0 {
		u.remaining--
		return
	}
	t, at := u.buildType, u.buildAt
	spec, err := w.catalog.Unit(t)
	if err != nil || !w.CanBuildHere(t, at) || w.pay("build", u.id, spec.Price) != nil {
		w.release(u)
		return
	}
	building := w.add(t, at, false)
	building.remaining = spec.BuildFrames
	w.release(u)
	u.activity = activityConstructing
	u.target = building.id
	w.emit(world.UnitCreated, building)
}

// advanceConstruction progresses a building only while a worker is on it
func (w *World) advanceConstruction(u *unitState) {
	b, ok := w.units[u.target]
	if !ok || b.completed {
		w.release(u)
		return
	}
	if b.remaining--; b.remaining <= 0 {
		b.completed = true
		w.release(u)
		w.emit(world.UnitCompleted, b)
	}
}

func (w *World) advanceTraining(u *unitState) {
	trainee, ok := w.units[u.target]
	if !ok {
		w.release(u)
		return
	}
	if trainee.remaining--; trainee.remaining <= 0 {
		trainee.completed = true
		w.release(u)
		w.emit(world.UnitCompleted, trainee)
	}
}

func (w *World) collectIncome() {
	for _, u := range w.units {
		if u.owner != w.cfg.Self {
			continue
		}
		if u.activity == activityGathering {
			w.minerals += w.cfg.MineralsPerTrip
		}
		if u.completed && u.unitType == RefineryType {
			w.gas += w.cfg.GasPerRefinery
		}
	}
}

func (w *World) add(t techtree.UnitType, at shared.TilePosition, completed bool) *unitState {
	owner := w.cfg.Self
	if t == MineralFieldType {
		owner = shared.Neutral
	}
	u := &unitState{
		id:        w.nextID,
		unitType:  t,
		owner:     owner,
		tile:      at,
		completed: completed,
	}
	w.nextID++
	w.units[u.id] = u
	return u
}

// remove deletes a unit and everything that depended on it, emitting
// UnitDestroyed for each
func (w *World) remove(u *unitState) {
	w.emit(world.UnitDestroyed, u)
	delete(w.units, u.id)

	if u.activity == activityTraining {
		if trainee, ok := w.units[u.target]; ok && !trainee.completed {
			w.remove(trainee)
		}
	}

	for _, id := range w.sortedIDs() {
		if other := w.units[id]; other != nil && other.target == u.id {
			w.release(other)
		}
	}
}

// Kill destroys a unit. Returns false if it did not exist.
func (w *World) Kill(id shared.UnitID) bool {
	u, ok := w.units[id]
	if !ok {
		return false
	}
	w.remove(u)
	return true
}
