package geoshard

import (
	"context"
	"fmt"
	"time"

	"github.com/srleyva/LocationBasedSharding/cellset"
	"github.com/srleyva/LocationBasedSharding/internal/partition"
	"github.com/srleyva/LocationBasedSharding/scorer"
	"github.com/srleyva/LocationBasedSharding/users"
)

// Builder creates a new shard-table builder for the given storage level.
// Generating shards is potentially expensive, so nothing happens until
// Build is called.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration. Defaults: count-based scoring, no user source
// (all loads zero), shard bounds [40, 100], no logging, no metrics.
//
// Example:
//
//	shards, err := geoshard.Builder(8).
//	    Source(users.NewSliceSource(records)).
//	    ShardBounds(40, 100).
//	    Build(ctx)
func Builder(storageLevel int) GeoshardBuilder {
	return GeoshardBuilder{
		storageLevel: storageLevel,
		scorer:       scorer.UserCountScorer{},
		minShards:    40,
		maxShards:    100,
		logger:       NoopLogger(),
		metrics:      NoopMetrics(),
	}
}

// GeoshardBuilder is an immutable fluent builder for ShardCollections.
type GeoshardBuilder struct {
	storageLevel int
	source       users.Source
	scorer       scorer.CellScorer
	minShards    int
	maxShards    int
	logger       *Logger
	metrics      MetricsCollector
}

// Source sets the user stream consumed during scoring. The stream is driven
// to exhaustion exactly once per Build. A nil source leaves every cell's
// load at zero.
func (b GeoshardBuilder) Source(src users.Source) GeoshardBuilder {
	b.source = src
	return b
}

// Scorer replaces the default count-based scoring heuristic.
func (b GeoshardBuilder) Scorer(s scorer.CellScorer) GeoshardBuilder {
	b.scorer = s
	return b
}

// ShardBounds sets the minimum and maximum number of shards in the system.
func (b GeoshardBuilder) ShardBounds(minShards, maxShards int) GeoshardBuilder {
	b.minShards = minShards
	b.maxShards = maxShards
	return b
}

// Logger sets the structured logger for build tracing.
func (b GeoshardBuilder) Logger(l *Logger) GeoshardBuilder {
	b.logger = l
	return b
}

// Metrics sets the collector receiving build measurements.
func (b GeoshardBuilder) Metrics(m MetricsCollector) GeoshardBuilder {
	b.metrics = m
	return b
}

// Build runs the pipeline: enumerate every cell at the storage level, score
// the cells against the user stream, then search every candidate capacity
// for the partition with the lowest load standard deviation.
//
// The build is atomic from the caller's view: either a complete, validated
// ShardCollection or a typed error. Configuration errors and invariant
// violations (zero cells, a user outside the enumerated set, an empty
// scored set) abort immediately.
func (b GeoshardBuilder) Build(ctx context.Context) (*ShardCollection, error) {
	if b.minShards <= 0 || b.maxShards <= 0 || b.minShards > b.maxShards {
		return nil, fmt.Errorf("%w: min=%d max=%d", ErrInvalidShardBounds, b.minShards, b.maxShards)
	}
	if b.scorer == nil {
		b.scorer = scorer.UserCountScorer{}
	}
	if b.logger == nil {
		b.logger = NoopLogger()
	}
	if b.metrics == nil {
		b.metrics = NoopMetrics()
	}

	logger := b.logger.WithStorageLevel(b.storageLevel)

	start := time.Now()
	cells, err := cellset.Enumerate(ctx, b.storageLevel)
	logger.LogEnumeration(ctx, cellCount(cells), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	b.metrics.RecordEnumeration(cells.Len(), time.Since(start))

	start = time.Now()
	err = b.scorer.ScoreCells(ctx, cells, b.source)
	logger.LogScoring(ctx, cells.TotalLoad(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	b.metrics.RecordScoring(cells.TotalLoad(), time.Since(start))

	start = time.Now()
	result, err := partition.Search(cells, b.minShards, b.maxShards)
	if err != nil {
		logger.LogPartition(ctx, 0, 0, 0, err)
		return nil, err
	}
	logger.LogPartition(ctx, len(result.Spans), result.Candidates, result.StdDev, nil)
	b.metrics.RecordPartition(result.Candidates, len(result.Spans), time.Since(start))

	return newCollection(b.storageLevel, result.Spans), nil
}

func cellCount(cells *cellset.CellSet) int {
	if cells == nil {
		return 0
	}
	return cells.Len()
}
