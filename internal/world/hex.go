// Package world provides the hex grid, cells, and spatial data structures.
// Uses cube coordinates (x, y, z) with x + y + z = 0, stored as (x, z).
package world

import "fmt"

// Coordinate is a cube coordinate on the hex grid. Y is derived: y = -x - z.
type Coordinate struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// Y returns the implicit third cube coordinate.
func (c Coordinate) Y() int {
	return -c.X - c.Z
}

// FromOffset converts offset (column, row) coordinates to cube coordinates.
// Odd rows are shifted half a cell to the right.
func FromOffset(col, row int) Coordinate {
	return Coordinate{X: col - floorDiv2(row), Z: row}
}

// ToOffset converts the cube coordinate back to offset (column, row).
func (c Coordinate) ToOffset() (col, row int) {
	return c.X + floorDiv2(c.Z), c.Z
}

// Step returns the neighboring coordinate in the given direction.
func (c Coordinate) Step(d Direction) Coordinate {
	delta := directionDeltas[d]
	return Coordinate{X: c.X + delta.X, Z: c.Z + delta.Z}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y(), c.Z)
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b Coordinate) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y() - b.Y())
	dz := abs(a.Z - b.Z)
	// Max of the three absolute differences in cube coordinates.
	max := dx
	if dy > max {
		max = dy
	}
	if dz > max {
		max = dz
	}
	return max
}

// Direction names one of the six hex edges, clockwise from north-east.
type Direction uint8

const (
	DirectionNE Direction = iota
	DirectionE
	DirectionSE
	DirectionSW
	DirectionW
	DirectionNW
)

// DirectionCount is the number of edges of a hex cell.
const DirectionCount = 6

// Directions lists all six directions in clockwise order.
var Directions = [DirectionCount]Direction{
	DirectionNE, DirectionE, DirectionSE, DirectionSW, DirectionW, DirectionNW,
}

var directionDeltas = [DirectionCount]Coordinate{
	DirectionNE: {X: 0, Z: 1},
	DirectionE:  {X: 1, Z: 0},
	DirectionSE: {X: 1, Z: -1},
	DirectionSW: {X: 0, Z: -1},
	DirectionW:  {X: -1, Z: 0},
	DirectionNW: {X: -1, Z: 1},
}

var directionNames = [DirectionCount]string{"NE", "E", "SE", "SW", "W", "NW"}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	return (d + 3) % DirectionCount
}

// Previous returns the direction counter-clockwise of d.
func (d Direction) Previous() Direction {
	return (d + DirectionCount - 1) % DirectionCount
}

// Next returns the direction clockwise of d.
func (d Direction) Next() Direction {
	return (d + 1) % DirectionCount
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", d)
}

// ParseDirection resolves a direction name such as "NE".
func ParseDirection(name string) (Direction, bool) {
	for i, n := range directionNames {
		if n == name {
			return Direction(i), true
		}
	}
	return 0, false
}

func floorDiv2(v int) int {
	if v < 0 {
		return (v - 1) / 2
	}
	return v / 2
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
