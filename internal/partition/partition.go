// Package partition turns an ordered, scored cell set into contiguous
// spans of near-uniform load.
//
// The search is deliberately brute force: every integer capacity between
// totalLoad/maxShards and totalLoad/minShards is tried, and the candidate
// with the smallest population standard deviation of span loads wins. The
// candidate range is bounded by the caller's shard-count limits, which keeps
// the cost at O(range * cells).
package partition

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/s2"
	"github.com/srleyva/LocationBasedSharding/cellset"
)

// ErrEmptyCellSet is returned when there is nothing to partition.
var ErrEmptyCellSet = errors.New("cannot partition an empty cell set")

// ErrInvalidBounds is returned for non-positive or inverted shard-count
// bounds.
var ErrInvalidBounds = errors.New("shard count bounds must be positive and min <= max")

// ErrTooFewCells is returned when the cell set cannot be split into the
// minimum number of shards.
type ErrTooFewCells struct {
	Cells     int
	MinShards int
}

func (e *ErrTooFewCells) Error() string {
	return fmt.Sprintf("cell set has %d cells, cannot form %d shards", e.Cells, e.MinShards)
}

// Span is one contiguous run of cells in CellID order.
type Span struct {
	Start     s2.CellID
	End       s2.CellID
	CellCount int
	Load      int64
}

// Result is the winning partition.
type Result struct {
	Spans []Span
	// Capacity is the winning per-span capacity, or zero when the uniform
	// cell-count fallback was used.
	Capacity int64
	// StdDev is the population standard deviation of span loads.
	StdDev float64
	// Candidates is the number of capacities evaluated.
	Candidates int
}

// Search partitions the cell set into between minShards and maxShards
// contiguous spans, minimizing the population standard deviation of span
// loads over all candidate capacities. Ties keep the first candidate seen.
//
// Candidates producing a span count outside [minShards, maxShards] are
// discarded. When no candidate qualifies (always the case when every score
// is zero), the set is split into exactly minShards spans of near-equal
// cell count, which trivially satisfies the bound.
func Search(cells *cellset.CellSet, minShards, maxShards int) (*Result, error) {
	if minShards <= 0 || maxShards <= 0 || minShards > maxShards {
		return nil, fmt.Errorf("%w: min=%d max=%d", ErrInvalidBounds, minShards, maxShards)
	}
	if cells == nil || cells.Len() == 0 {
		return nil, ErrEmptyCellSet
	}
	if cells.Len() < minShards {
		return nil, &ErrTooFewCells{Cells: cells.Len(), MinShards: minShards}
	}

	total := cells.TotalLoad()
	lo := total / int64(maxShards)
	hi := total / int64(minShards)

	var best *Result
	candidates := 0
	for capacity := lo; capacity <= hi; capacity++ {
		if capacity < 1 {
			// A capacity under one would close a shard on every cell.
			continue
		}
		candidates++

		spans := greedy(cells, capacity)
		if len(spans) < minShards || len(spans) > maxShards {
			continue
		}

		sd := stdDev(spans)
		if best == nil || sd < best.StdDev {
			best = &Result{Spans: spans, Capacity: capacity, StdDev: sd}
		}
	}

	if best == nil {
		spans := uniform(cells, minShards)
		best = &Result{Spans: spans, StdDev: stdDev(spans)}
	}
	best.Candidates = candidates

	return best, nil
}

// greedy scans cells in order, closing the open span as soon as the next
// cell's score would push its accumulated load to reach or exceed capacity.
// The trailing partial span is emitted even when under capacity, so every
// cell lands in exactly one span.
func greedy(cells *cellset.CellSet, capacity int64) []Span {
	var spans []Span
	var cur Span
	open := false

	cells.Range(func(id s2.CellID, score int64) bool {
		if open && cur.Load+score >= capacity {
			spans = append(spans, cur)
			open = false
		}
		if !open {
			cur = Span{Start: id, End: id, CellCount: 1, Load: score}
			open = true
			return true
		}
		cur.End = id
		cur.CellCount++
		cur.Load += score
		return true
	})
	if open {
		spans = append(spans, cur)
	}

	return spans
}

// uniform splits the set into exactly shardCount spans of near-equal cell
// count; earlier spans absorb the remainder.
func uniform(cells *cellset.CellSet, shardCount int) []Span {
	n := cells.Len()
	base := n / shardCount
	remainder := n % shardCount

	spans := make([]Span, 0, shardCount)
	target := base
	if remainder > 0 {
		target++
		remainder--
	}

	var cur Span
	open := false
	cells.Range(func(id s2.CellID, score int64) bool {
		if !open {
			cur = Span{Start: id, End: id, CellCount: 1, Load: score}
			open = true
		} else {
			cur.End = id
			cur.CellCount++
			cur.Load += score
		}
		if cur.CellCount == target {
			spans = append(spans, cur)
			open = false
			target = base
			if remainder > 0 {
				target++
				remainder--
			}
		}
		return true
	})
	if open {
		spans = append(spans, cur)
	}

	return spans
}

// stdDev is the population standard deviation of span loads.
func stdDev(spans []Span) float64 {
	if len(spans) == 0 {
		return 0
	}

	var sum float64
	for _, s := range spans {
		sum += float64(s.Load)
	}
	mean := sum / float64(len(spans))

	var variance float64
	for _, s := range spans {
		d := float64(s.Load) - mean
		variance += d * d
	}
	variance /= float64(len(spans))

	return math.Sqrt(variance)
}
