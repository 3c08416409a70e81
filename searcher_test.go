package geoshard

import (
	"context"
	"sync"
	"testing"

	"github.com/golang/geo/s2"
	"github.com/srleyva/LocationBasedSharding/internal/partition"
	"github.com/srleyva/LocationBasedSharding/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSearcher(t *testing.T, level int, records []users.User, minShards, maxShards int) *Searcher {
	t.Helper()
	c, err := Builder(level).
		Source(users.NewSliceSource(records)).
		ShardBounds(minShards, maxShards).
		Build(context.Background())
	require.NoError(t, err)

	s, err := NewSearcher(c)
	require.NoError(t, err)
	return s
}

func TestNewSearcher_RejectsInvalid(t *testing.T) {
	_, err := NewSearcher(nil)
	require.ErrorIs(t, err, ErrEmptyCollection)

	_, err = NewSearcher(&ShardCollection{})
	require.ErrorIs(t, err, ErrEmptyCollection)
}

func TestSearcher_ShardForLocation(t *testing.T) {
	s := buildSearcher(t, 4, nil, 40, 100)

	location := s2.LatLngFromDegrees(34.181061, -103.345177)
	shard := s.ShardForLocation(location)
	require.NotNil(t, shard)

	cell := s.CellForLocation(location)
	assert.Equal(t, 4, cell.Level())
	assert.True(t, shard.Contains(cell))
	assert.Equal(t, shard, s.ShardForCell(cell))
}

func TestSearcher_LookupConsistency(t *testing.T) {
	records := cityUsers(300)
	s := buildSearcher(t, 4, records, 5, 20)

	// Every user must resolve to the shard that accumulated its load.
	expected := make(map[string]int64)
	for _, u := range records {
		expected[s.ShardForUser(u).Name]++
	}
	for _, shard := range s.shards {
		assert.Equal(t, expected[shard.Name], shard.Load, "shard %s", shard.Name)
	}
}

func TestSearcher_FallbackToLastShard(t *testing.T) {
	ids := levelIDs(t, 1)

	// A collection deliberately covering only part of the cell space.
	c := newCollection(1, []partition.Span{
		{Start: ids[0], End: ids[3], CellCount: 4},
		{Start: ids[8], End: ids[11], CellCount: 4},
	})
	s, err := NewSearcher(c)
	require.NoError(t, err)

	last := &s.shards[len(s.shards)-1]

	// In the gap between the two shards.
	assert.Equal(t, last, s.ShardForCell(ids[5]))
	// Past the end of the last shard.
	assert.Equal(t, last, s.ShardForCell(ids[23]))
	// Before the first shard's start there is no containing range either.
	assert.Equal(t, last, s.ShardForCell(ids[0].ChildBegin()))
}

func TestSearcher_ShardsInRadius(t *testing.T) {
	s := buildSearcher(t, 4, cityUsers(100), 5, 20)

	location := s2.LatLngFromDegrees(34.181061, -103.345177)

	shards := s.ShardsInRadius(location, 200_000)
	require.NotEmpty(t, shards)

	// Duplicate-free, ordered by start.
	seen := make(map[string]bool)
	for i, shard := range shards {
		assert.False(t, seen[shard.Name], "duplicate shard %s", shard.Name)
		seen[shard.Name] = true
		if i > 0 {
			assert.Greater(t, shard.Start, shards[i-1].Start)
		}
	}

	// The shard owning the center must be among the matches.
	assert.True(t, seen[s.ShardForLocation(location).Name])

	// A planet-sized disc touches every shard.
	everything := s.ShardsInRadius(location, 3e7)
	assert.Len(t, everything, len(s.shards))
}

func TestSearcher_CellsInRadius(t *testing.T) {
	s := buildSearcher(t, 6, nil, 40, 100)

	cells := s.CellsInRadius(s2.LatLngFromDegrees(40.7128, -74.0060), 50_000)
	require.NotEmpty(t, cells)
	for _, id := range cells {
		assert.Equal(t, 6, id.Level())
	}
}

func TestSearcher_ConcurrentLookups(t *testing.T) {
	s := buildSearcher(t, 4, cityUsers(100), 5, 20)
	records := cityUsers(100)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, u := range records {
				_ = s.ShardForUser(u)
				_ = s.ShardsInRadius(u.Location(), 100_000)
			}
		}()
	}
	wg.Wait()
}
