package geoshard

import "time"

// MetricsCollector receives build-phase measurements. Implementations must
// be safe for concurrent use; the library never blocks on them.
type MetricsCollector interface {
	// RecordEnumeration is called after the flood fill completes.
	RecordEnumeration(cells int, elapsed time.Duration)

	// RecordScoring is called after the user stream has been consumed.
	RecordScoring(totalLoad int64, elapsed time.Duration)

	// RecordPartition is called after the capacity search completes.
	RecordPartition(candidates, shards int, elapsed time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) RecordEnumeration(int, time.Duration)  {}
func (noopMetrics) RecordScoring(int64, time.Duration)    {}
func (noopMetrics) RecordPartition(int, int, time.Duration) {}

// NoopMetrics returns a MetricsCollector that discards all measurements.
func NoopMetrics() MetricsCollector { return noopMetrics{} }
