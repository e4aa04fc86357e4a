// Map generation using layered simplex noise.
// Generates elevation and moisture fields, then derives terrain types.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Terrain types stored in Cell.TerrainType.
const (
	TerrainGrass  = iota // Open ground
	TerrainSand          // Beaches and dunes
	TerrainForest        // Slow going
	TerrainMud           // Wetlands
	TerrainStone         // Highlands
	TerrainSnow          // Peaks
	TerrainWater         // Below water level; impassable for most unit types

	TerrainTypeCount
)

// GenConfig holds map generation parameters.
type GenConfig struct {
	Seed         int64   // Random seed (0 = random)
	MaxElevation int     // Highest elevation level
	WaterLevel   int     // Cells below this elevation are water
	Frequency    float64 // Base noise frequency per cell
	Smoothing    int     // Passes that pull cliffs toward slopes
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:         0,
		MaxElevation: 6,
		WaterLevel:   1,
		Frequency:    0.09,
		Smoothing:    1,
	}
}

// Generate assigns elevation and terrain to every cell of g. The result is
// deterministic for a given seed and grid size.
func Generate(g *Grid, cfg GenConfig) int64 {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	width := float64(g.CellCountX)
	height := float64(g.CellCountZ)

	for i := range g.cells {
		c := &g.cells[i]
		col, row := c.Coord.ToOffset()

		// Offset rows are shifted half a cell; sample noise at the hex centre.
		x := float64(col) + float64(row&1)*0.5
		y := float64(row) * math.Sqrt(3.0) / 2.0

		elev := octaveNoise(elevNoise, x, y, 4, cfg.Frequency, 0.5)
		moist := octaveNoise(moistNoise, x, y, 3, cfg.Frequency*0.8, 0.5)

		// Flatten the border so maps tend to be enclosed by lowland.
		dx := math.Abs(x/width*2 - 1)
		dy := math.Abs(float64(row)/height*2 - 1)
		edge := math.Max(dx, dy)
		falloff := 1.0 - math.Pow(edge, 4)
		elev *= 0.4 + 0.6*falloff

		c.Elevation = int(math.Round(elev * float64(cfg.MaxElevation)))
		c.TerrainType = deriveTerrain(c.Elevation, moist, cfg)
	}

	for pass := 0; pass < cfg.Smoothing; pass++ {
		smoothCliffs(g, cfg)
	}
	return seed
}

// deriveTerrain determines terrain type from elevation and moisture.
func deriveTerrain(elevation int, moisture float64, cfg GenConfig) int {
	if elevation < cfg.WaterLevel {
		return TerrainWater
	}
	if elevation >= cfg.MaxElevation-1 {
		return TerrainSnow
	}
	if elevation >= cfg.MaxElevation-2 {
		return TerrainStone
	}
	if elevation == cfg.WaterLevel && moisture < 0.45 {
		return TerrainSand
	}
	if moisture > 0.7 {
		return TerrainMud
	}
	if moisture > 0.5 {
		return TerrainForest
	}
	return TerrainGrass
}

// smoothCliffs lowers isolated spikes: a cell higher than every neighbor by
// more than one level drops to one above its highest neighbor.
func smoothCliffs(g *Grid, cfg GenConfig) {
	for i := range g.cells {
		c := &g.cells[i]
		highest := -1
		for _, d := range Directions {
			n := g.Neighbor(c, d)
			if n != nil && n.Elevation > highest {
				highest = n.Elevation
			}
		}
		if highest >= 0 && c.Elevation > highest+1 {
			c.Elevation = highest + 1
			if c.TerrainType == TerrainSnow && c.Elevation < cfg.MaxElevation-1 {
				c.TerrainType = TerrainStone
			}
		}
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(g *Grid) map[int]int {
	counts := make(map[int]int)
	for i := range g.cells {
		counts[g.cells[i].TerrainType]++
	}
	return counts
}

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t int) string {
	switch t {
	case TerrainGrass:
		return "Grass"
	case TerrainSand:
		return "Sand"
	case TerrainForest:
		return "Forest"
	case TerrainMud:
		return "Mud"
	case TerrainStone:
		return "Stone"
	case TerrainSnow:
		return "Snow"
	case TerrainWater:
		return "Water"
	default:
		return "Unknown"
	}
}
