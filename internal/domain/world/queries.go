package world

import (
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
)

// OwnsCompleted reports whether the player owns at least one completed unit of type t
func OwnsCompleted(q Queries, t techtree.UnitType) bool {
	return len(q.MyUnits(UnitFilter{Types: []techtree.UnitType{t}, CompletedOnly: true})) > 0
}

// FirstIdleCompleted returns the lowest-ID idle, completed unit of type t
func FirstIdleCompleted(q Queries, t techtree.UnitType) (Unit, bool) {
	units := q.MyUnits(UnitFilter{Types: []techtree.UnitType{t}, IdleOnly: true, CompletedOnly: true})
	if len(units) == 0 {
		return Unit{}, false
	}
	return units[0], true
}

// IsOwn reports whether u belongs to the querying player
func IsOwn(q Queries, u Unit) bool {
	return u.Owner == q.Self()
}

// Ownership adapts Queries to the "owned and completed" view used by the
// prerequisite resolver
type Ownership struct {
	Q Queries
}

func (o Ownership) OwnsCompleted(t techtree.UnitType) bool {
	return OwnsCompleted(o.Q, t)
}

// StillExists reports whether the handle still resolves to a live unit
func StillExists(q Queries, id shared.UnitID) bool {
	if id.IsZero() {
		return false
	}
	u, ok := q.Unit(id)
	return ok && u.Exists
}
