package shared

import "fmt"

// UnitID is the stable integer handle the game assigns to a unit or building.
// Handles are never dereferenced across ticks: holders look the unit up again
// through the World each time they need its state.
type UnitID int

// NoUnit is the zero handle, meaning "no unit bound".
const NoUnit UnitID = 0

// IsZero reports whether the handle is unbound
func (id UnitID) IsZero() bool {
	return id == NoUnit
}

func (id UnitID) String() string {
	if id == NoUnit {
		return "none"
	}
	return fmt.Sprintf("#%d", int(id))
}

// PlayerID identifies the owner of a unit
type PlayerID int

// Neutral owns resource nodes and critters
const Neutral PlayerID = -1
