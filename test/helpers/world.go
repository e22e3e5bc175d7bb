package helpers

import (
	"github.com/andrescamacho/rtsbot-go/internal/adapters/sandbox"
	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
)

// NewStandardWorld creates a sandbox opening position with the given stockpile.
// Workers arrive at build sites after travelFrames.
func NewStandardWorld(minerals, gas, travelFrames int) (*sandbox.World, shared.UnitID) {
	cfg := sandbox.DefaultConfig()
	cfg.Minerals = minerals
	cfg.Gas = gas
	cfg.TravelFrames = travelFrames
	return sandbox.NewStandardStart(techtree.DefaultCatalog(), cfg)
}

// Workers returns the player's workers in id order
func Workers(w *sandbox.World) []shared.UnitID {
	var ids []shared.UnitID
	for _, u := range w.MyUnits(world.UnitFilter{Types: []techtree.UnitType{techtree.DefaultCatalog().WorkerType()}}) {
		ids = append(ids, u.ID)
	}
	return ids
}
