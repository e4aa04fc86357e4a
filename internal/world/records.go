package world

import (
	"errors"
	"fmt"
)

// ErrRecordOutOfRange is returned when a cell record addresses a cell the grid does not have.
var ErrRecordOutOfRange = errors.New("cell record index out of range")

// CellRecord is the persisted form of a cell.
type CellRecord struct {
	Index       int32 `json:"index" db:"idx"`
	Elevation   uint8 `json:"elevation" db:"elevation"`
	TerrainType uint8 `json:"terrain_type" db:"terrain_type"`
	Explored    bool  `json:"explored" db:"explored"`
}

// Records produces one record per cell in index order.
func (g *Grid) Records() []CellRecord {
	out := make([]CellRecord, len(g.cells))
	for i := range g.cells {
		c := &g.cells[i]
		out[i] = CellRecord{
			Index:       int32(c.Index),
			Elevation:   uint8(c.Elevation),
			TerrainType: uint8(c.TerrainType),
			Explored:    c.Explored,
		}
	}
	return out
}

// ApplyRecords populates cell fields from records. All records are validated
// before any cell is touched.
func (g *Grid) ApplyRecords(records []CellRecord) error {
	for _, r := range records {
		if r.Index < 0 || int(r.Index) >= len(g.cells) {
			return fmt.Errorf("record %d for %d cells: %w", r.Index, len(g.cells), ErrRecordOutOfRange)
		}
	}
	for _, r := range records {
		c := &g.cells[r.Index]
		c.Elevation = int(r.Elevation)
		c.TerrainType = int(r.TerrainType)
		c.Explored = r.Explored
	}
	return nil
}
