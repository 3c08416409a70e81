package geoshard

import (
	"sort"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/srleyva/LocationBasedSharding/users"
)

const earthRadiusMeters = 6.371e6

// radiusCoverLimit caps the region coverer's cell budget for radius
// queries. At a fixed level the coverer may still exceed it for very large
// discs; it only bounds the approximation effort.
const radiusCoverLimit = 1024

// Searcher resolves locations, cells, and discs to owning shards.
//
// A Searcher is immutable after construction and safe for any number of
// concurrent readers; lookups never fail and never block.
type Searcher struct {
	storageLevel int
	shards       []Shard // start-ordered, disjoint
}

// NewSearcher constructs a Searcher from a built or deserialized
// collection. The collection's invariants are validated once here so that
// lookups can skip all checking.
func NewSearcher(collection *ShardCollection) (*Searcher, error) {
	if collection == nil {
		return nil, ErrEmptyCollection
	}
	if err := collection.Validate(); err != nil {
		return nil, err
	}
	return &Searcher{
		storageLevel: collection.StorageLevel(),
		shards:       collection.Shards(),
	}, nil
}

// StorageLevel returns the cell granularity lookups are mapped at.
func (s *Searcher) StorageLevel() int { return s.storageLevel }

// CellForLocation returns the storage-level cell containing the location.
func (s *Searcher) CellForLocation(location s2.LatLng) s2.CellID {
	return s2.CellIDFromLatLng(location).Parent(s.storageLevel)
}

// ShardForUser returns the shard owning the user's location.
func (s *Searcher) ShardForUser(u users.User) *Shard {
	return s.ShardForLocation(u.Location())
}

// ShardForLocation returns the shard owning the location.
func (s *Searcher) ShardForLocation(location s2.LatLng) *Shard {
	return s.ShardForCell(s.CellForLocation(location))
}

// ShardForCell returns the shard whose range contains the cell.
//
// Shards are start-ordered and disjoint, so a binary search over starts
// finds the unique candidate. A cell outside every range (possible only for
// cells past the last shard's end, or ids not produced by the enumerator)
// falls back to the last shard rather than failing.
func (s *Searcher) ShardForCell(id s2.CellID) *Shard {
	i := sort.Search(len(s.shards), func(i int) bool {
		return s.shards[i].Start > id
	}) - 1
	if i >= 0 && s.shards[i].Contains(id) {
		return &s.shards[i]
	}
	return &s.shards[len(s.shards)-1]
}

// ShardsInRadius returns the shards intersecting a disc of radiusMeters
// centered at the location. The result is duplicate-free, ordered by shard
// start.
func (s *Searcher) ShardsInRadius(location s2.LatLng, radiusMeters float64) []*Shard {
	cells := s.CellsInRadius(location, radiusMeters)

	seen := make(map[string]struct{}, len(cells))
	var shards []*Shard
	for _, id := range cells {
		shard := s.ShardForCell(id)
		if _, ok := seen[shard.Name]; ok {
			continue
		}
		seen[shard.Name] = struct{}{}
		shards = append(shards, shard)
	}

	sort.Slice(shards, func(i, j int) bool { return shards[i].Start < shards[j].Start })
	return shards
}

// CellsInRadius returns the storage-level cells covering a disc of
// radiusMeters centered at the location.
func (s *Searcher) CellsInRadius(location s2.LatLng, radiusMeters float64) []s2.CellID {
	center := s2.PointFromLatLng(location)
	angle := s1.Angle(radiusMeters / earthRadiusMeters)
	disc := s2.CapFromCenterAngle(center, angle)

	coverer := &s2.RegionCoverer{
		MinLevel: s.storageLevel,
		MaxLevel: s.storageLevel,
		MaxCells: radiusCoverLimit,
	}
	return []s2.CellID(coverer.Covering(disc))
}
