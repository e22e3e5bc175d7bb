package world

import (
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
)

// Unit is a point-in-time snapshot of one unit or building.
// Snapshots are only valid for the tick they were read in.
type Unit struct {
	ID          shared.UnitID
	Type        techtree.UnitType
	Owner       shared.PlayerID
	Position    shared.Position
	Tile        shared.TilePosition
	Completed   bool
	Idle        bool
	Exists      bool
	Visible     bool
	Gathering   bool
	Researching techtree.TechType
	Upgrading   techtree.UpgradeType
}

// IsResearching reports whether the unit is currently researching any tech
func (u Unit) IsResearching() bool {
	return !u.Researching.IsNone()
}

// IsUpgrading reports whether the unit is currently running any upgrade
func (u Unit) IsUpgrading() bool {
	return !u.Upgrading.IsNone()
}

// UnitFilter selects a subset of the player's own units
type UnitFilter struct {
	Types         []techtree.UnitType // Empty matches any type
	IdleOnly      bool
	CompletedOnly bool
}

// Matches reports whether u satisfies the filter
func (f UnitFilter) Matches(u Unit) bool {
	if !u.Exists {
		return false
	}
	if f.IdleOnly && !u.Idle {
		return false
	}
	if f.CompletedOnly && !u.Completed {
		return false
	}
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if u.Type == t {
			return true
		}
	}
	return false
}

// OfType is a filter matching any of the given types
func OfType(types ...techtree.UnitType) UnitFilter {
	return UnitFilter{Types: types}
}
