// Package pathing provides the bucket priority queue, uniform-cost search,
// range-limited visibility and the editable Path used by units.
package pathing

import (
	"math"

	"github.com/talgya/hexturn/internal/world"
)

// CellQueue is a bucket queue of grid cells keyed by Cell.SearchPriority.
// Each bucket is a chain threaded through Cell.NextWithSamePriority, so
// enqueueing never allocates once the bucket array has grown.
type CellQueue struct {
	grid    *world.Grid
	list    []int
	count   int
	minimum int
}

// NewCellQueue creates an empty queue over the cells of g.
func NewCellQueue(g *world.Grid) *CellQueue {
	return &CellQueue{grid: g, minimum: math.MaxInt}
}

// Count returns the number of queued cells.
func (q *CellQueue) Count() int {
	return q.count
}

// Enqueue adds c at its current SearchPriority.
func (q *CellQueue) Enqueue(c *world.Cell) {
	q.count++
	priority := c.SearchPriority
	if priority < q.minimum {
		q.minimum = priority
	}
	for priority >= len(q.list) {
		q.list = append(q.list, world.NoCell)
	}
	c.NextWithSamePriority = q.list[priority]
	q.list[priority] = c.Index
}

// DequeueMin removes and returns a cell with the lowest priority.
func (q *CellQueue) DequeueMin() (*world.Cell, bool) {
	if q.count == 0 {
		return nil, false
	}
	for ; q.minimum < len(q.list); q.minimum++ {
		head := q.list[q.minimum]
		if head == world.NoCell {
			continue
		}
		c := q.grid.Cell(head)
		q.list[q.minimum] = c.NextWithSamePriority
		q.count--
		return c, true
	}
	return nil, false
}

// ChangePriority moves c from the bucket of oldPriority to its current
// SearchPriority. The cell must be queued at oldPriority.
func (q *CellQueue) ChangePriority(c *world.Cell, oldPriority int) {
	current := q.list[oldPriority]
	if current == c.Index {
		q.list[oldPriority] = c.NextWithSamePriority
	} else {
		prev := q.grid.Cell(current)
		for prev.NextWithSamePriority != c.Index {
			prev = q.grid.Cell(prev.NextWithSamePriority)
		}
		prev.NextWithSamePriority = c.NextWithSamePriority
	}
	q.Enqueue(c)
	q.count--
}

// Clear empties the queue in constant time. Stale chain links left on cells
// are overwritten on their next enqueue.
func (q *CellQueue) Clear() {
	q.list = q.list[:0]
	q.count = 0
	q.minimum = math.MaxInt
}
