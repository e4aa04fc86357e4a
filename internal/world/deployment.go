package world

import (
	"math/rand"
	"sort"
)

// Deployment is a starting cell chosen for a team.
type Deployment struct {
	Coord Coordinate
	Team  uint8
	Score float64 // Desirability score
}

// PlaceDeployments picks perTeam starting cells for each team. The map is
// split into vertical bands, one per team, and each team takes the best
// scoring cells of its band that are at least minSpacing apart.
func PlaceDeployments(g *Grid, teams, perTeam, minSpacing int, seed int64) []Deployment {
	rng := rand.New(rand.NewSource(seed + 200))

	type scored struct {
		cell  *Cell
		score float64
	}

	var out []Deployment
	bandWidth := g.CellCountX / max(teams, 1)
	for t := 0; t < teams; t++ {
		var candidates []scored
		for i := range g.cells {
			c := &g.cells[i]
			col, _ := c.Coord.ToOffset()
			if col < t*bandWidth || col >= (t+1)*bandWidth || c.IsOccupied() {
				continue
			}
			s := deploymentScore(g, c)
			if s > 0 {
				// Jitter breaks ties between equally good cells.
				candidates = append(candidates, scored{c, s + rng.Float64()*0.1})
			}
		}

		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].score > candidates[j].score
		})

		var placed []Deployment
		for _, c := range candidates {
			if len(placed) >= perTeam {
				break
			}
			if tooClose(c.cell.Coord, placed, minSpacing) {
				continue
			}
			placed = append(placed, Deployment{
				Coord: c.cell.Coord,
				Team:  uint8(t + 1),
				Score: c.score,
			})
		}
		out = append(out, placed...)
	}
	return out
}

// deploymentScore prefers open, level ground with room to manoeuvre.
func deploymentScore(g *Grid, c *Cell) float64 {
	if !c.Explorable {
		return 0
	}
	score := 0.0
	switch c.TerrainType {
	case TerrainGrass:
		score += 3.0
	case TerrainSand, TerrainMud:
		score += 1.5
	case TerrainForest:
		score += 1.0
	case TerrainStone, TerrainSnow:
		score += 0.5
	default:
		return 0
	}

	// Bonus for passable edges around the cell.
	for _, d := range Directions {
		switch g.EdgeTypeToward(c, d) {
		case EdgeFlat:
			score += 0.3
		case EdgeSlope:
			score += 0.1
		}
	}
	return score
}

func tooClose(coord Coordinate, existing []Deployment, minDist int) bool {
	for _, d := range existing {
		if Distance(coord, d.Coord) < minDist {
			return true
		}
	}
	return false
}
