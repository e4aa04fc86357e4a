package world

import (
	"errors"
	"fmt"
)

// ErrInvalidDimensions is returned when a grid size is not a positive
// multiple of the chunk size.
var ErrInvalidDimensions = errors.New("grid dimensions must be positive multiples of the chunk size")

// Grid owns every cell of a map in a flat row-major array.
type Grid struct {
	Metrics    Metrics `json:"-"`
	CellCountX int     `json:"cell_count_x"`
	CellCountZ int     `json:"cell_count_z"`

	cells []Cell
}

// NewGrid creates a grid of cellCountX by cellCountZ cells and links every
// cell to its neighbors. No grid is produced when the dimensions are invalid.
func NewGrid(cellCountX, cellCountZ int, metrics Metrics) (*Grid, error) {
	if metrics.ChunkSizeX <= 0 || metrics.ChunkSizeZ <= 0 {
		return nil, fmt.Errorf("chunk size %dx%d: %w", metrics.ChunkSizeX, metrics.ChunkSizeZ, ErrInvalidDimensions)
	}
	if cellCountX <= 0 || cellCountZ <= 0 ||
		cellCountX%metrics.ChunkSizeX != 0 || cellCountZ%metrics.ChunkSizeZ != 0 {
		return nil, fmt.Errorf("grid %dx%d with chunk %dx%d: %w",
			cellCountX, cellCountZ, metrics.ChunkSizeX, metrics.ChunkSizeZ, ErrInvalidDimensions)
	}

	g := &Grid{
		Metrics:    metrics,
		CellCountX: cellCountX,
		CellCountZ: cellCountZ,
		cells:      make([]Cell, cellCountX*cellCountZ),
	}

	for z, i := 0, 0; z < cellCountZ; z++ {
		for x := 0; x < cellCountX; x++ {
			g.createCell(x, z, i)
			i++
		}
	}
	return g, nil
}

func (g *Grid) createCell(x, z, i int) {
	c := &g.cells[i]
	c.Index = i
	c.Coord = FromOffset(x, z)
	c.Explorable = true
	c.PathFrom = NoCell
	c.NextWithSamePriority = NoCell
	for d := range c.neighbors {
		c.neighbors[d] = NoCell
	}

	if x > 0 {
		g.SetMutualNeighbor(c, DirectionW, &g.cells[i-1])
	}
	if z > 0 {
		if z&1 == 0 {
			g.SetMutualNeighbor(c, DirectionSE, &g.cells[i-g.CellCountX])
			if x > 0 {
				g.SetMutualNeighbor(c, DirectionSW, &g.cells[i-g.CellCountX-1])
			}
		} else {
			g.SetMutualNeighbor(c, DirectionSW, &g.cells[i-g.CellCountX])
			if x < g.CellCountX-1 {
				g.SetMutualNeighbor(c, DirectionSE, &g.cells[i-g.CellCountX+1])
			}
		}
	}
}

// SetMutualNeighbor links a to b in direction d and b to a in the opposite direction.
func (g *Grid) SetMutualNeighbor(a *Cell, d Direction, b *Cell) {
	a.neighbors[d] = b.Index
	b.neighbors[d.Opposite()] = a.Index
}

// CellCount returns the number of cells in the grid.
func (g *Grid) CellCount() int {
	return len(g.cells)
}

// Cell returns the cell at index i, or nil when out of range.
func (g *Grid) Cell(i int) *Cell {
	if i < 0 || i >= len(g.cells) {
		return nil
	}
	return &g.cells[i]
}

// Cells returns the backing cell array. Callers must not append to it.
func (g *Grid) Cells() []Cell {
	return g.cells
}

// Neighbor returns the neighbor of c in direction d, or nil at the map edge.
func (g *Grid) Neighbor(c *Cell, d Direction) *Cell {
	return g.Cell(c.neighbors[d])
}

// CellAt returns the cell at a cube coordinate, or nil when outside the grid.
func (g *Grid) CellAt(coord Coordinate) *Cell {
	z := coord.Z
	if z < 0 || z >= g.CellCountZ {
		return nil
	}
	x := coord.X + z/2
	if x < 0 || x >= g.CellCountX {
		return nil
	}
	return &g.cells[x+z*g.CellCountX]
}

// CellAtOffset returns the cell at offset coordinates, or nil when outside the grid.
func (g *Grid) CellAtOffset(col, row int) *Cell {
	if col < 0 || col >= g.CellCountX || row < 0 || row >= g.CellCountZ {
		return nil
	}
	return &g.cells[col+row*g.CellCountX]
}

// DirectionTo returns the direction from a to its neighbor b.
func (g *Grid) DirectionTo(a, b *Cell) (Direction, bool) {
	for _, d := range Directions {
		if a.neighbors[d] == b.Index {
			return d, true
		}
	}
	return 0, false
}

// Position returns the world-space centre of a cell.
func (g *Grid) Position(c *Cell) Point {
	col, row := c.Coord.ToOffset()
	return g.Metrics.Position(col, row, c.Elevation)
}

// RevealAll marks every explorable cell explored, for games without fog of war.
func (g *Grid) RevealAll() {
	for i := range g.cells {
		if g.cells[i].Explorable {
			g.cells[i].Explored = true
		}
	}
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, cells=%d)", g.CellCountX, g.CellCountZ, g.CellCount())
}
