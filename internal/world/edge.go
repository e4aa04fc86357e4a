package world

// EdgeType classifies the border between two adjacent cells by elevation difference.
type EdgeType uint8

const (
	EdgeFlat  EdgeType = iota // Same elevation
	EdgeSlope                 // Walkable step
	EdgeCliff                 // Impassable
)

func (e EdgeType) String() string {
	switch e {
	case EdgeFlat:
		return "flat"
	case EdgeSlope:
		return "slope"
	default:
		return "cliff"
	}
}

// ClassifyEdge derives the edge type from two elevations.
func ClassifyEdge(elevation1, elevation2, cliffDelta int) EdgeType {
	delta := abs(elevation1 - elevation2)
	if delta == 0 {
		return EdgeFlat
	}
	if delta >= cliffDelta {
		return EdgeCliff
	}
	return EdgeSlope
}

// EdgeType returns the classification of the edge between a and b.
func (g *Grid) EdgeType(a, b *Cell) EdgeType {
	return ClassifyEdge(a.Elevation, b.Elevation, g.Metrics.CliffDelta)
}

// EdgeTypeToward returns the edge type between c and its neighbor in direction d.
// Missing neighbors are reported as cliffs.
func (g *Grid) EdgeTypeToward(c *Cell, d Direction) EdgeType {
	n := g.Neighbor(c, d)
	if n == nil {
		return EdgeCliff
	}
	return g.EdgeType(c, n)
}
