package world

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGrid(t *testing.T, x, z int) *Grid {
	t.Helper()
	g, err := NewGrid(x, z, DefaultMetrics())
	require.NoError(t, err)
	return g
}

func TestNewGridRejectsInvalidDimensions(t *testing.T) {
	cases := []struct {
		name string
		x, z int
	}{
		{"zero width", 0, 5},
		{"negative height", 5, -5},
		{"not a chunk multiple", 7, 5},
		{"height not a chunk multiple", 10, 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := NewGrid(tc.x, tc.z, DefaultMetrics())
			assert.Nil(t, g)
			assert.True(t, errors.Is(err, ErrInvalidDimensions))
		})
	}
}

func TestCoordinateOffsetRoundTrip(t *testing.T) {
	g := newTestGrid(t, 20, 15)
	for row := 0; row < g.CellCountZ; row++ {
		for col := 0; col < g.CellCountX; col++ {
			c := FromOffset(col, row)
			assert.Zero(t, c.X+c.Y()+c.Z, "cube invariant at %d,%d", col, row)

			gotCol, gotRow := c.ToOffset()
			require.Equal(t, col, gotCol)
			require.Equal(t, row, gotRow)
			assert.Equal(t, c, FromOffset(c.ToOffset()))

			cell := g.CellAt(c)
			require.NotNil(t, cell)
			assert.Equal(t, c, cell.Coord)
			assert.Same(t, cell, g.CellAtOffset(col, row))
		}
	}
}

func TestCellAtOutOfBounds(t *testing.T) {
	g := newTestGrid(t, 10, 10)
	assert.Nil(t, g.CellAt(Coordinate{X: 0, Z: -1}))
	assert.Nil(t, g.CellAt(Coordinate{X: 0, Z: 10}))
	assert.Nil(t, g.CellAt(FromOffset(-1, 3)))
	assert.Nil(t, g.CellAt(FromOffset(10, 3)))
	assert.Nil(t, g.Cell(-1))
	assert.Nil(t, g.Cell(100))
}

func TestAdjacencySymmetry(t *testing.T) {
	g := newTestGrid(t, 15, 10)
	for i := range g.Cells() {
		a := g.Cell(i)
		for _, d := range Directions {
			b := g.Neighbor(a, d)
			if b == nil {
				continue
			}
			back := g.Neighbor(b, d.Opposite())
			require.NotNil(t, back, "cell %v dir %v", a.Coord, d)
			assert.Equal(t, a.Index, back.Index)
			assert.Equal(t, a.Coord.Step(d), b.Coord, "neighbor coordinate for %v", d)
			assert.Equal(t, 1, Distance(a.Coord, b.Coord))
		}
	}
}

func TestInteriorCellsHaveSixNeighbors(t *testing.T) {
	g := newTestGrid(t, 10, 10)
	c := g.CellAtOffset(4, 4)
	for _, d := range Directions {
		assert.NotNil(t, g.Neighbor(c, d), "direction %v", d)
	}
	corner := g.CellAtOffset(0, 0)
	assert.Nil(t, g.Neighbor(corner, DirectionW))
	assert.Nil(t, g.Neighbor(corner, DirectionSW))
}

func TestDistance(t *testing.T) {
	a := Coordinate{X: 0, Z: 0}
	assert.Equal(t, 0, Distance(a, a))
	assert.Equal(t, 3, Distance(a, Coordinate{X: 3, Z: 0}))
	assert.Equal(t, 3, Distance(a, Coordinate{X: 3, Z: -3}))
	assert.Equal(t, 5, Distance(a, Coordinate{X: -2, Z: 5}))
}

func TestDirectionOpposite(t *testing.T) {
	for _, d := range Directions {
		assert.Equal(t, d, d.Opposite().Opposite())
		assert.Equal(t, d, d.Next().Previous())
		name := d.String()
		parsed, ok := ParseDirection(name)
		require.True(t, ok)
		assert.Equal(t, d, parsed)
	}
}

func TestClassifyEdge(t *testing.T) {
	assert.Equal(t, EdgeFlat, ClassifyEdge(2, 2, 2))
	assert.Equal(t, EdgeSlope, ClassifyEdge(2, 3, 2))
	assert.Equal(t, EdgeSlope, ClassifyEdge(3, 2, 2))
	assert.Equal(t, EdgeCliff, ClassifyEdge(0, 2, 2))
	assert.Equal(t, EdgeCliff, ClassifyEdge(5, 1, 2))
}

func TestVisibilityCounter(t *testing.T) {
	g := newTestGrid(t, 5, 5)
	c := g.CellAtOffset(2, 2)

	assert.True(t, c.IncreaseVisibility())
	assert.True(t, c.Explored)
	assert.False(t, c.IncreaseVisibility())
	assert.False(t, c.DecreaseVisibility())
	assert.True(t, c.IsVisible())
	assert.True(t, c.DecreaseVisibility())
	assert.False(t, c.IsVisible())
	assert.False(t, c.DecreaseVisibility(), "counter never goes below zero")
	assert.True(t, c.Explored, "explored is sticky")
}

func TestRecordsRoundTrip(t *testing.T) {
	g := newTestGrid(t, 10, 5)
	Generate(g, GenConfig{Seed: 7, MaxElevation: 5, WaterLevel: 1, Frequency: 0.1, Smoothing: 1})
	g.Cell(3).Explored = true

	records := g.Records()
	require.Len(t, records, g.CellCount())

	fresh := newTestGrid(t, 10, 5)
	require.NoError(t, fresh.ApplyRecords(records))
	assert.Equal(t, records, fresh.Records())
}

func TestApplyRecordsRejectsOutOfRange(t *testing.T) {
	g := newTestGrid(t, 5, 5)
	err := g.ApplyRecords([]CellRecord{{Index: 1, Elevation: 3}, {Index: 25}})
	assert.True(t, errors.Is(err, ErrRecordOutOfRange))
	assert.Zero(t, g.Cell(1).Elevation, "no partial application")
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 99

	a := newTestGrid(t, 20, 20)
	b := newTestGrid(t, 20, 20)
	Generate(a, cfg)
	Generate(b, cfg)
	assert.Equal(t, a.Records(), b.Records())

	for i := range a.Cells() {
		c := a.Cell(i)
		assert.GreaterOrEqual(t, c.Elevation, 0)
		assert.LessOrEqual(t, c.Elevation, cfg.MaxElevation)
		assert.Less(t, c.TerrainType, TerrainTypeCount)
	}
}

func TestPlaceDeploymentsSplitsTeamsIntoBands(t *testing.T) {
	g, err := NewGrid(20, 10, DefaultMetrics())
	require.NoError(t, err)

	deps := PlaceDeployments(g, 2, 3, 2, 7)
	require.Len(t, deps, 6)

	for i, d := range deps {
		col, _ := d.Coord.ToOffset()
		if d.Team == 1 {
			assert.Less(t, col, 10)
		} else {
			assert.GreaterOrEqual(t, col, 10)
		}
		for _, o := range deps[i+1:] {
			if o.Team == d.Team {
				assert.GreaterOrEqual(t, Distance(d.Coord, o.Coord), 2)
			}
		}
	}
}
