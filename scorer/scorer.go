package scorer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/golang/geo/s2"
	"github.com/srleyva/LocationBasedSharding/cellset"
	"github.com/srleyva/LocationBasedSharding/users"
)

// CellScorer scores an enumerated cell set against a user stream.
//
// Implementations drive the source to exhaustion exactly once and mutate the
// cell set in place. A record whose cell is absent from the set must surface
// *cellset.ErrCellNotEnumerated rather than being dropped.
type CellScorer interface {
	ScoreCells(ctx context.Context, cells *cellset.CellSet, source users.Source) error
}

// UserCountScorer is the default heuristic: every record adds one to the
// load of the cell containing it.
type UserCountScorer struct{}

// ScoreCells implements CellScorer.
func (UserCountScorer) ScoreCells(ctx context.Context, cells *cellset.CellSet, source users.Source) error {
	return score(ctx, cells, source, func(users.User) int64 { return 1 })
}

// WeightedScorer scores each record by a caller-supplied weight, for
// heuristics like activity-weighted load.
type WeightedScorer struct {
	// Weight returns the load contribution of a single record.
	Weight func(u users.User) int64
}

// ScoreCells implements CellScorer.
func (s WeightedScorer) ScoreCells(ctx context.Context, cells *cellset.CellSet, source users.Source) error {
	if s.Weight == nil {
		return errors.New("weighted scorer requires a weight function")
	}
	return score(ctx, cells, source, s.Weight)
}

func score(ctx context.Context, cells *cellset.CellSet, source users.Source, weight func(users.User) int64) error {
	if source == nil {
		return nil
	}
	for {
		u, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("user source: %w", err)
		}

		id := s2.CellIDFromLatLng(u.Location()).Parent(cells.Level())
		if err := cells.Increment(id, weight(u)); err != nil {
			return err
		}
	}
}
