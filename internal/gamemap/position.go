package gamemap

import "fmt"

// Position is a tile coordinate. X runs east, Y runs south, origin top-left.
type Position struct {
	X int
	Y int
}

// NewPosition builds a position.
func NewPosition(x, y int) Position {
	return Position{X: x, Y: y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Index flattens the position into a row-major slice index.
func (p Position) Index(width int) int {
	return p.Y*width + p.X
}

// PositionFromIndex rebuilds a position from a row-major slice index.
func PositionFromIndex(idx, width int) Position {
	return Position{X: idx % width, Y: idx / width}
}

// Distance is the Manhattan distance between two tiles.
func (p Position) Distance(o Position) int {
	dx := p.X - o.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - o.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Move displaces the position by signed tile deltas. Steps past the map edge
// land outside the grid; lookups bounds-check the result.
func (p Position) Move(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Left is the neighbouring tile to the west.
func (p Position) Left() Position { return p.Move(-1, 0) }

// Right is the neighbouring tile to the east.
func (p Position) Right() Position { return p.Move(1, 0) }

// Up is the neighbouring tile to the north.
func (p Position) Up() Position { return p.Move(0, -1) }

// Down is the neighbouring tile to the south.
func (p Position) Down() Position { return p.Move(0, 1) }
