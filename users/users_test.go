package users

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAt(t *testing.T) {
	u := At(34.181061, -103.345177)
	ll := u.Location()

	assert.InDelta(t, 34.181061, ll.Lat.Degrees(), 1e-9)
	assert.InDelta(t, -103.345177, ll.Lng.Degrees(), 1e-9)
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource([]User{At(1, 2), At(3, 4)})

	first, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, first.Location().Lat.Degrees(), 1e-9)

	_, err = src.Next(context.Background())
	require.NoError(t, err)

	_, err = src.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)

	// Exhausted stays exhausted.
	_, err = src.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
}

func TestSliceSource_Empty(t *testing.T) {
	_, err := NewSliceSource(nil).Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
}

func TestSliceSource_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSliceSource([]User{At(1, 2)}).Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
