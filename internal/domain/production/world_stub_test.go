package production

import (
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
)

// stubWorld is a minimal read-only world for gate and resolver tests
type stubWorld struct {
	minerals, gas           int
	supplyUsed, supplyTotal int
	units                   []world.Unit
	researched              map[techtree.TechType]bool
	levels                  map[techtree.UpgradeType]int
}

func newStubWorld() *stubWorld {
	return &stubWorld{
		supplyTotal: 20,
		researched:  map[techtree.TechType]bool{},
		levels:      map[techtree.UpgradeType]int{},
	}
}

func (w *stubWorld) own(id int, t techtree.UnitType, completed, idle bool) *stubWorld {
	w.units = append(w.units, world.Unit{
		ID:        shared.UnitID(id),
		Type:      t,
		Owner:     1,
		Completed: completed,
		Idle:      idle,
		Exists:    true,
	})
	return w
}

func (w *stubWorld) Self() shared.PlayerID { return 1 }
func (w *stubWorld) FrameCount() int       { return 0 }
func (w *stubWorld) Minerals() int         { return w.minerals }
func (w *stubWorld) Gas() int              { return w.gas }
func (w *stubWorld) SupplyUsed() int       { return w.supplyUsed }
func (w *stubWorld) SupplyTotal() int      { return w.supplyTotal }

func (w *stubWorld) UpgradeLevel(u techtree.UpgradeType) int                  { return w.levels[u] }
func (w *stubWorld) HasResearched(t techtree.TechType) bool                   { return w.researched[t] }
func (w *stubWorld) IsResearching(t techtree.TechType) bool                   { return false }
func (w *stubWorld) IsUpgrading(u techtree.UpgradeType) bool                  { return false }
func (w *stubWorld) CanBuildHere(techtree.UnitType, shared.TilePosition) bool { return true }

func (w *stubWorld) MyUnits(filter world.UnitFilter) []world.Unit {
	var out []world.Unit
	for _, u := range w.units {
		if filter.Matches(u) {
			out = append(out, u)
		}
	}
	return out
}

func (w *stubWorld) Unit(id shared.UnitID) (world.Unit, bool) {
	for _, u := range w.units {
		if u.ID == id {
			return u, true
		}
	}
	return world.Unit{}, false
}

func (w *stubWorld) NearestResourceNode(shared.Position) (world.Unit, bool) {
	return world.Unit{}, false
}

type ownedSet map[techtree.UnitType]bool

func (o ownedSet) OwnsCompleted(t techtree.UnitType) bool { return o[t] }
