package geoshard

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"
	"github.com/golang/geo/s2"
	"github.com/srleyva/LocationBasedSharding/internal/partition"
)

// Shard owns one contiguous run of cells in CellID order, carrying the
// aggregate load accumulated during scoring.
type Shard struct {
	Name         string
	StorageLevel int
	Start        s2.CellID
	End          s2.CellID
	CellCount    int
	Load         int64
}

// Contains reports whether the shard's [Start, End] range owns the cell.
func (s *Shard) Contains(id s2.CellID) bool {
	return id >= s.Start && id <= s.End
}

// ShardCollection is an immutable, start-ordered sequence of shards whose
// ranges exactly partition the enumerated cell space: disjoint, adjacent,
// no gaps.
type ShardCollection struct {
	storageLevel int
	shards       []Shard
}

func newCollection(storageLevel int, spans []partition.Span) *ShardCollection {
	shards := make([]Shard, len(spans))
	for i, span := range spans {
		shards[i] = Shard{
			Name:         fmt.Sprintf("geoshard_user_index_%d", i),
			StorageLevel: storageLevel,
			Start:        span.Start,
			End:          span.End,
			CellCount:    span.CellCount,
			Load:         span.Load,
		}
	}
	return &ShardCollection{
		storageLevel: storageLevel,
		shards:       shards,
	}
}

// StorageLevel returns the cell granularity the collection was built at.
func (c *ShardCollection) StorageLevel() int { return c.storageLevel }

// Len returns the number of shards.
func (c *ShardCollection) Len() int { return len(c.shards) }

// Shards returns a copy of the shard records in start order.
func (c *ShardCollection) Shards() []Shard {
	out := make([]Shard, len(c.shards))
	copy(out, c.shards)
	return out
}

// TotalLoad returns the sum of all shard loads.
func (c *ShardCollection) TotalLoad() int64 {
	var total int64
	for i := range c.shards {
		total += c.shards[i].Load
	}
	return total
}

// TotalCellCount returns the sum of all shard cell counts.
func (c *ShardCollection) TotalCellCount() int {
	var total int
	for i := range c.shards {
		total += c.shards[i].CellCount
	}
	return total
}

// StandardDeviation returns the population standard deviation of shard
// loads, the balance-quality metric the builder minimizes.
func (c *ShardCollection) StandardDeviation() float64 {
	if len(c.shards) == 0 {
		return 0
	}

	var sum float64
	for i := range c.shards {
		sum += float64(c.shards[i].Load)
	}
	mean := sum / float64(len(c.shards))

	var variance float64
	for i := range c.shards {
		d := float64(c.shards[i].Load) - mean
		variance += d * d
	}
	variance /= float64(len(c.shards))

	return math.Sqrt(variance)
}

// Validate checks the structural invariants: non-empty, consistent storage
// level, start <= end per shard, and strictly increasing disjoint ranges.
func (c *ShardCollection) Validate() error {
	if len(c.shards) == 0 {
		return ErrEmptyCollection
	}
	for i := range c.shards {
		s := &c.shards[i]
		if s.StorageLevel != c.storageLevel {
			return fmt.Errorf("shard %q: storage level %d differs from collection level %d", s.Name, s.StorageLevel, c.storageLevel)
		}
		if s.Start > s.End {
			return fmt.Errorf("shard %q: start %s after end %s", s.Name, s.Start.ToToken(), s.End.ToToken())
		}
		if s.CellCount <= 0 {
			return fmt.Errorf("shard %q: empty cell range", s.Name)
		}
		if i > 0 && c.shards[i-1].End >= s.Start {
			return fmt.Errorf("shard %q overlaps %q", s.Name, c.shards[i-1].Name)
		}
	}
	return nil
}

// shardRecord is the exchange-format representation of a Shard. Start and
// end are stable S2 cell tokens.
type shardRecord struct {
	Name         string `json:"name"`
	StorageLevel int    `json:"storage_level"`
	Start        string `json:"start"`
	End          string `json:"end"`
	CellCount    int    `json:"cell_count"`
	Load         int64  `json:"load"`
}

type collectionRecord struct {
	Shards []shardRecord `json:"shards"`
}

// MarshalJSON encodes the collection as an ordered list of shard records.
func (c *ShardCollection) MarshalJSON() ([]byte, error) {
	rec := collectionRecord{Shards: make([]shardRecord, len(c.shards))}
	for i := range c.shards {
		s := &c.shards[i]
		rec.Shards[i] = shardRecord{
			Name:         s.Name,
			StorageLevel: s.StorageLevel,
			Start:        s.Start.ToToken(),
			End:          s.End.ToToken(),
			CellCount:    s.CellCount,
			Load:         s.Load,
		}
	}
	return json.Marshal(rec)
}

// UnmarshalJSON decodes and validates an exchange-format collection. A
// round-trip reproduces a collection with identical lookup behavior.
func (c *ShardCollection) UnmarshalJSON(data []byte) error {
	var rec collectionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	if len(rec.Shards) == 0 {
		return ErrEmptyCollection
	}

	shards := make([]Shard, len(rec.Shards))
	for i, r := range rec.Shards {
		start := s2.CellIDFromToken(r.Start)
		end := s2.CellIDFromToken(r.End)
		if !start.IsValid() || !end.IsValid() {
			return fmt.Errorf("shard %q: invalid cell token", r.Name)
		}
		shards[i] = Shard{
			Name:         r.Name,
			StorageLevel: r.StorageLevel,
			Start:        start,
			End:          end,
			CellCount:    r.CellCount,
			Load:         r.Load,
		}
	}

	decoded := ShardCollection{
		storageLevel: shards[0].StorageLevel,
		shards:       shards,
	}
	if err := decoded.Validate(); err != nil {
		return err
	}

	*c = decoded
	return nil
}
