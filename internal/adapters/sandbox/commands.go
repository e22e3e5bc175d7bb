package sandbox

import (
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
)

// FailNextCommand makes the next command return err. Used to exercise
// dispatch failure paths.
func (w *World) FailNextCommand(err error) {
	w.failNext = err
}

func (w *World) injected() error {
	err := w.failNext
	w.failNext = nil
	return err
}

func (w *World) own(command string, id shared.UnitID) (*unitState, error) {
	u, ok := w.units[id]
	if !ok {
		return nil, shared.NewUnitNotFoundError(id)
	}
	if u.owner != w.cfg.Self {
		return nil, reject(command, id, "unit is not owned")
	}
	return u, nil
}

func (w *World) ownWorker(command string, id shared.UnitID) (*unitState, error) {
	u, err := w.own(command, id)
	if err != nil {
		return nil, err
	}
	spec, err := w.catalog.Unit(u.unitType)
	if err != nil || !spec.IsWorker {
		return nil, reject(command, id, "%s is not a worker", u.unitType)
	}
	if !u.completed {
		return nil, reject(command, id, "worker is not complete")
	}
	return u, nil
}

func (w *World) ownIdleProducer(command string, id shared.UnitID, producerType techtree.UnitType) (*unitState, error) {
	u, err := w.own(command, id)
	if err != nil {
		return nil, err
	}
	if u.unitType != producerType {
		return nil, reject(command, id, "%s cannot do this, needs %s", u.unitType, producerType)
	}
	if !u.completed || u.activity != activityIdle {
		return nil, reject(command, id, "producer is busy")
	}
	return u, nil
}

func (w *World) pay(command string, id shared.UnitID, price techtree.Price) error {
	if !price.CoveredBy(w.minerals, w.gas) {
		return reject(command, id, "insufficient resources: need %s", price)
	}
	w.minerals -= price.Minerals
	w.gas -= price.Gas
	return nil
}

// Build sends a worker to place a building. Payment happens on placement.
func (w *World) Build(worker shared.UnitID, t techtree.UnitType, at shared.TilePosition) error {
	if err := w.injected(); err != nil {
		return err
	}
	u, err := w.ownWorker("build", worker)
	if err != nil {
		return err
	}
	spec, err := w.catalog.Unit(t)
	if err != nil || !spec.IsBuilding {
		return reject("build", worker, "%s is not a building", t)
	}
	if !w.CanBuildHere(t, at) {
		return reject("build", worker, "cannot build at %s", at)
	}
	if !spec.Price.CoveredBy(w.minerals, w.gas) {
		return reject("build", worker, "insufficient resources: need %s", spec.Price)
	}
	w.release(u)
	u.activity = activityMovingToBuild
	u.remaining = w.cfg.TravelFrames
	u.buildType = t
	u.buildAt = at
	return nil
}

// Train starts a unit or add-on at an idle producer
func (w *World) Train(producer shared.UnitID, t techtree.UnitType) error {
	if err := w.injected(); err != nil {
		return err
	}
	spec, err := w.catalog.Unit(t)
	if err != nil {
		return reject("train", producer, "unknown type %s", t)
	}
	p, err := w.ownIdleProducer("train", producer, spec.BuiltBy)
	if err != nil {
		return err
	}
	if w.SupplyUsed()+spec.SupplyRequired > w.SupplyTotal() {
		return reject("train", producer, "supply blocked")
	}
	if err := w.pay("train", producer, spec.Price); err != nil {
		return err
	}

	tile := p.tile
	if spec.IsBuilding {
		tile = shared.NewTilePosition(p.tile.X+3, p.tile.Y)
	}
	trainee := w.add(t, tile, false)
	trainee.remaining = spec.BuildFrames
	p.activity = activityTraining
	p.target = trainee.id
	w.emit(world.UnitCreated, trainee)
	return nil
}

// Research starts a tech at an idle building
func (w *World) Research(producer shared.UnitID, tech techtree.TechType) error {
	if err := w.injected(); err != nil {
		return err
	}
	spec, err := w.catalog.Tech(tech)
	if err != nil {
		return reject("research", producer, "unknown tech %s", tech)
	}
	if w.researched[tech] || w.IsResearching(tech) {
		return reject("research", producer, "%s already researched or in progress", tech)
	}
	p, err := w.ownIdleProducer("research", producer, spec.ResearchedAt)
	if err != nil {
		return err
	}
	if err := w.pay("research", producer, spec.Price); err != nil {
		return err
	}
	p.activity = activityResearching
	p.remaining = spec.ResearchFrames
	p.tech = tech
	return nil
}

// Upgrade starts the next level of an upgrade at an idle building
func (w *World) Upgrade(producer shared.UnitID, up techtree.UpgradeType) error {
	if err := w.injected(); err != nil {
		return err
	}
	spec, err := w.catalog.Upgrade(up)
	if err != nil {
		return reject("upgrade", producer, "unknown upgrade %s", up)
	}
	if w.IsUpgrading(up) {
		return reject("upgrade", producer, "%s already in progress", up)
	}
	level, err := spec.Level(w.levels[up] + 1)
	if err != nil {
		return reject("upgrade", producer, "%v", err)
	}
	p, err := w.ownIdleProducer("upgrade", producer, spec.UpgradedAt)
	if err != nil {
		return err
	}
	if err := w.pay("upgrade", producer, level.Price); err != nil {
		return err
	}
	p.activity = activityUpgrading
	p.remaining = level.Frames
	p.upgrade = up
	return nil
}

// Gather sends a worker to mine a mineral field
func (w *World) Gather(worker, node shared.UnitID) error {
	if err := w.injected(); err != nil {
		return err
	}
	u, err := w.ownWorker("gather", worker)
	if err != nil {
		return err
	}
	field, ok := w.units[node]
	if !ok {
		return shared.NewUnitNotFoundError(node)
	}
	if field.unitType != MineralFieldType {
		return reject("gather", worker, "target %s is not a mineral field", node)
	}
	w.release(u)
	u.activity = activityGathering
	u.target = node
	return nil
}

// Resume sends a worker to continue an incomplete building
func (w *World) Resume(worker, building shared.UnitID) error {
	if err := w.injected(); err != nil {
		return err
	}
	u, err := w.ownWorker("resume", worker)
	if err != nil {
		return err
	}
	b, err := w.own("resume", building)
	if err != nil {
		return err
	}
	if b.completed {
		return reject("resume", building, "building is already complete")
	}
	if other := w.constructorOf(building); other != nil && other.id != worker {
		return reject("resume", building, "already being built by %s", other.id)
	}
	w.release(u)
	u.activity = activityConstructing
	u.target = building
	return nil
}

// HaltConstruction stops work on an incomplete building, leaving it in place
func (w *World) HaltConstruction(building shared.UnitID) error {
	if err := w.injected(); err != nil {
		return err
	}
	b, err := w.own("halt", building)
	if err != nil {
		return err
	}
	if b.completed {
		return reject("halt", building, "building is already complete")
	}
	if c := w.constructorOf(building); c != nil {
		w.release(c)
	}
	return nil
}

// CancelConstruction aborts a worker's pending placement or the building it is constructing
func (w *World) CancelConstruction(worker shared.UnitID) error {
	if err := w.injected(); err != nil {
		return err
	}
	u, err := w.ownWorker("cancel", worker)
	if err != nil {
		return err
	}
	switch u.activity {
	case activityMovingToBuild:
		w.release(u)
	case activityConstructing:
		building := u.target
		w.release(u)
		if b, ok := w.units[building]; ok && !b.completed {
			if spec, err := w.catalog.Unit(b.unitType); err == nil {
				w.minerals += spec.Price.Minerals * 3 / 4
				w.gas += spec.Price.Gas * 3 / 4
			}
			w.remove(b)
		}
	default:
		return reject("cancel", worker, "worker is not building")
	}
	return nil
}

// release returns a unit to idle without side effects on its target
func (w *World) release(u *unitState) {
	u.activity = activityIdle
	u.target = shared.NoUnit
	u.buildType = techtree.None
	u.remaining = 0
}

func (w *World) constructorOf(building shared.UnitID) *unitState {
	for _, id := range w.sortedIDs() {
		u := w.units[id]
		if u.activity == activityConstructing && u.target == building {
			return u
		}
	}
	return nil
}
