package world

// UnitID identifies a unit standing on a cell. Zero means no unit.
type UnitID uint32

// NoCell marks an absent cell index (missing neighbor, empty chain, no predecessor).
const NoCell = -1

// Cell is a single tile of the grid. Cells are owned by their Grid and
// addressed by a dense index.
type Cell struct {
	Index       int        `json:"index"`
	Coord       Coordinate `json:"coord"`
	Elevation   int        `json:"elevation"`
	TerrainType int        `json:"terrain_type"`
	Explored    bool       `json:"explored"`
	Explorable  bool       `json:"explorable"`

	// Occupant is a back-reference to the unit standing here; the grid does
	// not own the unit.
	Occupant UnitID `json:"occupant,omitempty"`

	visibility int
	neighbors  [DirectionCount]int

	// Transient search state. Never reset between searches: a cell is
	// unvisited while SearchPhase is below the pathfinder's current phase and
	// settled when SearchPhase equals phase+1.
	Distance             int `json:"-"`
	SearchHeuristic      int `json:"-"`
	SearchPriority       int `json:"-"`
	SearchPhase          int `json:"-"`
	PathFrom             int `json:"-"`
	NextWithSamePriority int `json:"-"`
}

// Visibility returns the number of observers currently seeing the cell.
func (c *Cell) Visibility() int {
	return c.visibility
}

// IsVisible reports whether at least one observer sees the cell.
func (c *Cell) IsVisible() bool {
	return c.visibility > 0 && c.Explorable
}

// IncreaseVisibility adds one observer. The first observer marks the cell explored.
// Returns true when the cell became visible.
func (c *Cell) IncreaseVisibility() bool {
	c.visibility++
	if c.visibility == 1 {
		c.Explored = true
		return true
	}
	return false
}

// DecreaseVisibility removes one observer. Returns true when the cell stopped
// being visible.
func (c *Cell) DecreaseVisibility() bool {
	if c.visibility == 0 {
		return false
	}
	c.visibility--
	return c.visibility == 0
}

// ResetVisibility drops every observer.
func (c *Cell) ResetVisibility() {
	c.visibility = 0
}

// NeighborIndex returns the index of the neighbor in direction d, or NoCell.
func (c *Cell) NeighborIndex(d Direction) int {
	return c.neighbors[d]
}

// IsOccupied reports whether a unit stands on the cell.
func (c *Cell) IsOccupied() bool {
	return c.Occupant != 0
}
