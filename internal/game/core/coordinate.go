package core

import "fmt"

// Coordinate represents a tile position on the offset hex grid.
// Odd rows are shifted half a tile to the right ("odd-r" layout).
type Coordinate struct {
	X, Y int
}

// NewCoordinate creates a new coordinate with the given x and y values
func NewCoordinate(x, y int) Coordinate {
	return Coordinate{X: x, Y: y}
}

// FromIndex creates a coordinate from a board array index using row-major ordering
func FromIndex(idx, width int) Coordinate {
	return Coordinate{
		X: idx % width,
		Y: idx / width,
	}
}

// IsValid checks if the coordinate is within the given bounds
func (c Coordinate) IsValid(width, height int) bool {
	return c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height
}

// ToIndex converts the coordinate to a board array index using row-major ordering
func (c Coordinate) ToIndex(width int) int {
	return c.Y*width + c.X
}

// neighbor offsets for even and odd rows
var (
	evenRowOffsets = [6]Coordinate{
		{X: 1, Y: 0}, {X: -1, Y: 0},
		{X: 0, Y: -1}, {X: -1, Y: -1},
		{X: 0, Y: 1}, {X: -1, Y: 1},
	}
	oddRowOffsets = [6]Coordinate{
		{X: 1, Y: 0}, {X: -1, Y: 0},
		{X: 1, Y: -1}, {X: 0, Y: -1},
		{X: 1, Y: 1}, {X: 0, Y: 1},
	}
)

// Neighbors returns the six hex neighbors of this coordinate. Results may lie
// outside the board; use ValidNeighbors when bounds matter.
func (c Coordinate) Neighbors() []Coordinate {
	offsets := evenRowOffsets
	if c.Y%2 != 0 {
		offsets = oddRowOffsets
	}
	out := make([]Coordinate, 0, 6)
	for _, o := range offsets {
		out = append(out, c.Add(o))
	}
	return out
}

// ValidNeighbors returns only the neighbors that are within the given bounds
func (c Coordinate) ValidNeighbors(width, height int) []Coordinate {
	neighbors := c.Neighbors()
	valid := make([]Coordinate, 0, 6)

	for _, n := range neighbors {
		if n.IsValid(width, height) {
			valid = append(valid, n)
		}
	}

	return valid
}

// IsAdjacentTo checks if this coordinate shares a hex edge with another
func (c Coordinate) IsAdjacentTo(other Coordinate) bool {
	for _, n := range c.Neighbors() {
		if n == other {
			return true
		}
	}
	return false
}

// Add returns a new coordinate that is the sum of this coordinate and another
func (c Coordinate) Add(other Coordinate) Coordinate {
	return Coordinate{
		X: c.X + other.X,
		Y: c.Y + other.Y,
	}
}

// String returns a string representation of the coordinate
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}
