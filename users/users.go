package users

import (
	"context"
	"io"

	"github.com/golang/geo/s2"
)

// User is a single record that can be placed on the sphere.
type User interface {
	// Location returns the record's position. It is mapped to an S2 cell at
	// the build's storage level during scoring.
	Location() s2.LatLng
}

// Source is a pull-style stream of users.
//
// Next returns io.EOF once the stream is exhausted. A Source is driven to
// exhaustion exactly once per build and is not required to be safe for
// concurrent callers.
type Source interface {
	Next(ctx context.Context) (User, error)
}

type staticUser struct {
	ll s2.LatLng
}

func (u staticUser) Location() s2.LatLng { return u.ll }

// At returns a User fixed at the given coordinates in degrees.
func At(lat, lng float64) User {
	return staticUser{ll: s2.LatLngFromDegrees(lat, lng)}
}

// SliceSource is a Source backed by an in-memory slice.
type SliceSource struct {
	users []User
	next  int
}

// NewSliceSource creates a Source that yields the given users in order.
func NewSliceSource(users []User) *SliceSource {
	return &SliceSource{users: users}
}

// Next implements Source.
func (s *SliceSource) Next(ctx context.Context) (User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.users) {
		return nil, io.EOF
	}
	u := s.users[s.next]
	s.next++
	return u, nil
}
