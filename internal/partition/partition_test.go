package partition

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/golang/geo/s2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/srleyva/LocationBasedSharding/cellset"
)

func enumerate(t *testing.T, level int) *cellset.CellSet {
	t.Helper()
	set, err := cellset.Enumerate(context.Background(), level)
	require.NoError(t, err)
	return set
}

func cellIDs(set *cellset.CellSet) []s2.CellID {
	ids := make([]s2.CellID, 0, set.Len())
	set.Range(func(id s2.CellID, _ int64) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}

// scoreEveryNth gives load to every nth cell so partitions have something
// to balance.
func scoreEveryNth(t *testing.T, set *cellset.CellSet, n int, load int64) {
	t.Helper()
	for i, id := range cellIDs(set) {
		if i%n == 0 {
			require.NoError(t, set.Increment(id, load))
		}
	}
}

func TestSearch_InvalidBounds(t *testing.T) {
	set := enumerate(t, 1)

	for _, bounds := range [][2]int{{0, 10}, {10, 0}, {-1, 5}, {7, 3}} {
		_, err := Search(set, bounds[0], bounds[1])
		assert.ErrorIs(t, err, ErrInvalidBounds, "bounds %v", bounds)
	}
}

func TestSearch_EmptyCellSet(t *testing.T) {
	_, err := Search(nil, 1, 10)
	require.ErrorIs(t, err, ErrEmptyCellSet)
}

func TestSearch_TooFewCells(t *testing.T) {
	set := enumerate(t, 0) // 6 cells

	_, err := Search(set, 10, 20)
	var tooFew *ErrTooFewCells
	require.True(t, errors.As(err, &tooFew))
	assert.Equal(t, 6, tooFew.Cells)
	assert.Equal(t, 10, tooFew.MinShards)
}

func TestSearch_ZeroLoadFallsBackToUniform(t *testing.T) {
	set := enumerate(t, 2) // 96 cells, all scores zero

	result, err := Search(set, 10, 20)
	require.NoError(t, err)

	assert.Len(t, result.Spans, 10)
	assert.Zero(t, result.Capacity)
	assert.Zero(t, result.StdDev)

	// 96 cells over 10 spans: six spans of 10 cells, four of 9.
	total := 0
	for _, span := range result.Spans {
		assert.Zero(t, span.Load)
		assert.GreaterOrEqual(t, span.CellCount, 9)
		assert.LessOrEqual(t, span.CellCount, 10)
		total += span.CellCount
	}
	assert.Equal(t, 96, total)
}

func TestSearch_CoversEveryCellExactlyOnce(t *testing.T) {
	set := enumerate(t, 2)
	scoreEveryNth(t, set, 3, 7)

	result, err := Search(set, 4, 12)
	require.NoError(t, err)
	require.NotEmpty(t, result.Spans)

	ids := cellIDs(set)
	assert.Equal(t, ids[0], result.Spans[0].Start)
	assert.Equal(t, ids[len(ids)-1], result.Spans[len(result.Spans)-1].End)

	totalCells := 0
	var totalLoad int64
	for i, span := range result.Spans {
		assert.LessOrEqual(t, span.Start, span.End)
		if i > 0 {
			assert.Greater(t, span.Start, result.Spans[i-1].End, "spans must be disjoint and ordered")
		}
		totalCells += span.CellCount
		totalLoad += span.Load
	}
	assert.Equal(t, set.Len(), totalCells)
	assert.Equal(t, set.TotalLoad(), totalLoad)
}

func TestSearch_ShardCountWithinBounds(t *testing.T) {
	set := enumerate(t, 2)
	scoreEveryNth(t, set, 2, 5)

	for _, bounds := range [][2]int{{1, 1}, {2, 6}, {5, 15}, {10, 40}} {
		result, err := Search(set, bounds[0], bounds[1])
		require.NoError(t, err, "bounds %v", bounds)
		assert.GreaterOrEqual(t, len(result.Spans), bounds[0], "bounds %v", bounds)
		assert.LessOrEqual(t, len(result.Spans), bounds[1], "bounds %v", bounds)
	}
}

func TestSearch_MinimizesStdDev(t *testing.T) {
	set := enumerate(t, 2)
	scoreEveryNth(t, set, 4, 11)
	scoreEveryNth(t, set, 7, 3)

	result, err := Search(set, 4, 12)
	require.NoError(t, err)

	// The winner must beat (or tie) every other candidate capacity that
	// lands within the shard-count bounds.
	total := set.TotalLoad()
	for capacity := total / 12; capacity <= total/4; capacity++ {
		if capacity < 1 {
			continue
		}
		spans := greedy(set, capacity)
		if len(spans) < 4 || len(spans) > 12 {
			continue
		}
		assert.LessOrEqual(t, result.StdDev, stdDev(spans), "capacity %d", capacity)
	}
}

func TestSearch_Deterministic(t *testing.T) {
	build := func() *Result {
		set := enumerate(t, 2)
		scoreEveryNth(t, set, 5, 9)
		result, err := Search(set, 3, 9)
		require.NoError(t, err)
		return result
	}

	assert.True(t, reflect.DeepEqual(build(), build()))
}

func TestGreedy_ClosesOnReachingCapacity(t *testing.T) {
	set := enumerate(t, 0) // 6 cells
	for i, id := range cellIDs(set) {
		require.NoError(t, set.Increment(id, int64(i+1))) // loads 1..6
	}

	// Capacity 6: [1,2] closes when +3 would reach 6, then [3], then [4],
	// then [5], then the trailing [6].
	spans := greedy(set, 6)
	loads := make([]int64, len(spans))
	for i, span := range spans {
		loads[i] = span.Load
	}
	assert.Equal(t, []int64{3, 3, 4, 5, 6}, loads)
}

func TestStdDev(t *testing.T) {
	spans := []Span{{Load: 2}, {Load: 4}, {Load: 4}, {Load: 4}, {Load: 5}, {Load: 5}, {Load: 7}, {Load: 9}}
	assert.InDelta(t, 2.0, stdDev(spans), 1e-12)
	assert.Zero(t, stdDev(nil))
}
