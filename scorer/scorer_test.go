package scorer

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/geo/s2"
	"github.com/srleyva/LocationBasedSharding/cellset"
	"github.com/srleyva/LocationBasedSharding/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enumerate(t *testing.T, level int) *cellset.CellSet {
	t.Helper()
	set, err := cellset.Enumerate(context.Background(), level)
	require.NoError(t, err)
	return set
}

func TestUserCountScorer(t *testing.T) {
	set := enumerate(t, 4)

	records := []users.User{
		users.At(40.7128, -74.0060),  // New York
		users.At(40.7306, -73.9352),  // New York, same level-4 cell
		users.At(51.5074, -0.1278),   // London
		users.At(-33.8688, 151.2093), // Sydney
	}

	err := UserCountScorer{}.ScoreCells(context.Background(), set, users.NewSliceSource(records))
	require.NoError(t, err)

	assert.Equal(t, int64(4), set.TotalLoad())

	nyc := s2.CellIDFromLatLng(s2.LatLngFromDegrees(40.7128, -74.0060)).Parent(4)
	score, ok := set.Score(nyc)
	require.True(t, ok)
	assert.Equal(t, int64(2), score)
}

func TestUserCountScorer_NilSource(t *testing.T) {
	set := enumerate(t, 2)

	require.NoError(t, UserCountScorer{}.ScoreCells(context.Background(), set, nil))
	assert.Equal(t, int64(0), set.TotalLoad())
}

func TestWeightedScorer(t *testing.T) {
	set := enumerate(t, 4)

	records := []users.User{
		users.At(48.8566, 2.3522),
		users.At(48.8566, 2.3522),
	}

	s := WeightedScorer{Weight: func(users.User) int64 { return 10 }}
	require.NoError(t, s.ScoreCells(context.Background(), set, users.NewSliceSource(records)))

	paris := s2.CellIDFromLatLng(s2.LatLngFromDegrees(48.8566, 2.3522)).Parent(4)
	score, ok := set.Score(paris)
	require.True(t, ok)
	assert.Equal(t, int64(20), score)
}

func TestWeightedScorer_MissingWeightFunc(t *testing.T) {
	set := enumerate(t, 2)

	err := WeightedScorer{}.ScoreCells(context.Background(), set, nil)
	require.Error(t, err)
}

type failingSource struct{ err error }

func (s failingSource) Next(context.Context) (users.User, error) { return nil, s.err }

func TestScoreCells_SourceErrorPropagates(t *testing.T) {
	set := enumerate(t, 2)

	cause := errors.New("page read failed")
	err := UserCountScorer{}.ScoreCells(context.Background(), set, failingSource{err: cause})
	require.ErrorIs(t, err, cause)
}

func TestScoreCells_Canceled(t *testing.T) {
	set := enumerate(t, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := UserCountScorer{}.ScoreCells(ctx, set, users.NewSliceSource([]users.User{users.At(1, 1)}))
	require.ErrorIs(t, err, context.Canceled)
}
