package world

import "math"

// Metrics holds the fixed geometry of a map. One value is shared by every
// grid of a simulation; tests may build grids with different metrics side by side.
type Metrics struct {
	OuterRadius   float64 `yaml:"outer_radius"`   // Centre to corner
	ElevationStep float64 `yaml:"elevation_step"` // World-space height of one elevation level
	ChunkSizeX    int     `yaml:"chunk_size_x"`   // Cells per chunk along a row
	ChunkSizeZ    int     `yaml:"chunk_size_z"`   // Rows per chunk
	CliffDelta    int     `yaml:"cliff_delta"`    // Elevation difference at which an edge becomes a cliff
}

// DefaultMetrics returns the geometry used by the shipped game modes.
func DefaultMetrics() Metrics {
	return Metrics{
		OuterRadius:   10,
		ElevationStep: 3,
		ChunkSizeX:    5,
		ChunkSizeZ:    5,
		CliffDelta:    2,
	}
}

// InnerRadius is the distance from the centre to the middle of an edge.
func (m Metrics) InnerRadius() float64 {
	return m.OuterRadius * math.Sqrt(3) / 2
}

// Position returns the world-space centre of the cell at the given offset
// coordinates and elevation.
func (m Metrics) Position(col, row, elevation int) Point {
	return Point{
		X: (float64(col) + float64(row)*0.5 - float64(row/2)) * m.InnerRadius() * 2,
		Y: float64(elevation) * m.ElevationStep,
		Z: float64(row) * m.OuterRadius * 1.5,
	}
}

// Point is a position in world space.
type Point struct {
	X, Y, Z float64
}

func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z}
}

func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f, Z: p.Z * f}
}

// Lerp interpolates linearly between p and o.
func (p Point) Lerp(o Point, t float64) Point {
	return p.Add(o.Sub(p).Scale(t))
}

// PlanarDistance is the distance between two points ignoring height.
func (p Point) PlanarDistance(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Z-o.Z)
}

// QuadraticBezier evaluates a quadratic Bezier curve at t in [0, 1].
func QuadraticBezier(a, b, c Point, t float64) Point {
	r := 1 - t
	return a.Scale(r * r).Add(b.Scale(2 * r * t)).Add(c.Scale(t * t))
}
