package geoshard

import (
	"errors"

	"github.com/srleyva/LocationBasedSharding/cellset"
	"github.com/srleyva/LocationBasedSharding/internal/partition"
)

// Configuration errors abort a build before any work happens.
var (
	// ErrInvalidShardBounds is returned for non-positive or inverted
	// shard-count bounds.
	ErrInvalidShardBounds = partition.ErrInvalidBounds

	// ErrInvalidStorageLevel is returned for storage levels outside the S2
	// range [0, 30].
	ErrInvalidStorageLevel = cellset.ErrInvalidStorageLevel
)

// Build invariant violations are fatal and never retried: no partial
// collection is ever returned.
var (
	// ErrNoCells indicates the enumerator discovered zero cells.
	ErrNoCells = cellset.ErrNoCells

	// ErrEmptyCellSet indicates the partitioner received nothing to split.
	ErrEmptyCellSet = partition.ErrEmptyCellSet
)

// ErrEmptyCollection is returned when constructing a Searcher from, or
// deserializing, a collection with no shards.
var ErrEmptyCollection = errors.New("shard collection is empty")
