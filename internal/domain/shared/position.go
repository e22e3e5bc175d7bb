package shared

import (
	"fmt"
	"math"
)

// TileSize is the number of pixels on each side of a build tile
const TileSize = 32

// TilePosition is a location on the build grid
type TilePosition struct {
	X int
	Y int
}

// Position is a pixel location on the map
type Position struct {
	X int
	Y int
}

// NewTilePosition creates a tile position
func NewTilePosition(x, y int) TilePosition {
	return TilePosition{X: x, Y: y}
}

// ToPosition returns the pixel position of the tile's top-left corner
func (t TilePosition) ToPosition() Position {
	return Position{X: t.X * TileSize, Y: t.Y * TileSize}
}

// Equals checks if two tile positions are equal
func (t TilePosition) Equals(other TilePosition) bool {
	return t.X == other.X && t.Y == other.Y
}

func (t TilePosition) String() string {
	return fmt.Sprintf("(%d,%d)", t.X, t.Y)
}

// ToTile returns the tile containing the position
func (p Position) ToTile() TilePosition {
	return TilePosition{X: p.X / TileSize, Y: p.Y / TileSize}
}

// Distance calculates the Euclidean distance to another position
func (p Position) Distance(other Position) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func (p Position) String() string {
	return fmt.Sprintf("[%d,%d]", p.X, p.Y)
}
