// Package geoshard builds deterministic, load-balanced spatial shard tables
// and answers ownership queries against them.
//
// The S2 library breaks the globe into cells of fixed granularity per level.
// A build enumerates every cell at the configured storage level, scores each
// cell against a user stream via a pluggable CellScorer, and then searches
// every candidate shard capacity for the partition with the lowest standard
// deviation of per-shard load. The resulting ShardCollection is immutable;
// a Searcher constructed from it serves concurrent lookups without locking.
//
// Example:
//
//	shards, err := geoshard.Builder(8).
//	    Source(users.NewSliceSource(records)).
//	    ShardBounds(40, 100).
//	    Build(ctx)
//	if err != nil {
//	    return err
//	}
//
//	searcher, err := geoshard.NewSearcher(shards)
//	if err != nil {
//	    return err
//	}
//	shard := searcher.ShardForLocation(s2.LatLngFromDegrees(34.18, -103.34))
//
// Producing a new scheme means running a fresh build and swapping the
// searcher wholesale; there is no in-place rebalancing.
package geoshard
