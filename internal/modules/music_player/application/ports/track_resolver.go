package ports

import (
	"context"
)

// TrackResolver loads tracks from the audio backend.
// A query is either a URL or a prefixed search such as "ytsearch:<terms>".
type TrackResolver interface {
	// LoadTracks returns the candidates for the query. An empty result is not an error.
	LoadTracks(ctx context.Context, query string) (*LoadResult, error)
}

// ExternalTrackResolver turns references to an external music service into candidates.
type ExternalTrackResolver interface {
	// CanResolve reports whether the input is a reference this resolver understands.
	CanResolve(input string) bool

	// Resolve returns the candidates for the reference. An empty result is not an error.
	Resolve(ctx context.Context, input string) (*LoadResult, error)
}
