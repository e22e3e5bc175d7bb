package agent

import (
	"context"

	"github.com/andrescamacho/rtsbot-go/internal/domain/shared"
	"github.com/andrescamacho/rtsbot-go/internal/domain/techtree"
	"github.com/andrescamacho/rtsbot-go/internal/domain/world"
	"github.com/andrescamacho/rtsbot-go/pkg/utils"
)

// BuildSiteLocator picks a tile for a new building. Placement search is
// outside the core; the coordinator only asks for a tile.
type BuildSiteLocator interface {
	Locate(ctx context.Context, w world.Queries, t techtree.UnitType) (shared.TilePosition, bool)
}

// RingSiteLocator tries tiles on square rings around the first resource
// depot, stepping Spacing tiles outwards, and returns the first tile the
// game accepts.
type RingSiteLocator struct {
	catalog   *techtree.Catalog
	MinRadius int
	MaxRadius int
	Spacing   int
}

// NewRingSiteLocator creates a locator searching 4 to 24 tiles from the depot
func NewRingSiteLocator(catalog *techtree.Catalog) *RingSiteLocator {
	return &RingSiteLocator{catalog: catalog, MinRadius: 4, MaxRadius: 24, Spacing: 3}
}

func (l *RingSiteLocator) Locate(ctx context.Context, w world.Queries, t techtree.UnitType) (shared.TilePosition, bool) {
	origin, ok := l.origin(w)
	if !ok {
		return shared.TilePosition{}, false
	}
	step := utils.Max(1, l.Spacing)

	for r := l.MinRadius; r <= l.MaxRadius; r += step {
		for dy := -r; dy <= r; dy += step {
			for dx := -r; dx <= r; dx += step {
				if utils.Abs(dx) != r && utils.Abs(dy) != r {
					continue
				}
				tile := shared.NewTilePosition(origin.X+dx, origin.Y+dy)
				if w.CanBuildHere(t, tile) {
					return tile, true
				}
			}
		}
	}
	return shared.TilePosition{}, false
}

func (l *RingSiteLocator) origin(w world.Queries) (shared.TilePosition, bool) {
	var depots []techtree.UnitType
	for _, spec := range l.catalog.Units() {
		if spec.IsResourceDepot {
			depots = append(depots, spec.Type)
		}
	}
	units := w.MyUnits(world.UnitFilter{Types: depots, CompletedOnly: true})
	if len(units) == 0 {
		return shared.TilePosition{}, false
	}
	return units[0].Tile, true
}
