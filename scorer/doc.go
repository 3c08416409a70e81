// Package scorer maps user records onto enumerated cells, accumulating the
// per-cell load the partitioner balances against.
//
// CellScorer is a pluggable strategy: the default UserCountScorer weights
// every record equally, WeightedScorer lets the caller derive a weight per
// record (active users, message volume, ...). Custom heuristics plug in
// without touching the enumerator or the partitioner.
package scorer
