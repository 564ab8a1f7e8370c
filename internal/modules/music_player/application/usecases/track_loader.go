package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/samber/lo"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// ResolveInput contains the input for the Resolve use case.
type ResolveInput struct {
	Query       string
	RequesterID snowflake.ID
}

// ResolveOutput contains the result of the Resolve use case.
type ResolveOutput struct {
	Tracks []domain.Track
	// CollectionName is the playlist or album name; empty for single tracks.
	CollectionName string
}

// SearchTracksInput contains the input for the SearchTracks use case.
type SearchTracksInput struct {
	Query string
	Limit int
}

// SearchTracksOutput contains the result of the SearchTracks use case.
type SearchTracksOutput struct {
	Tracks []domain.TrackCandidate
}

// TrackLoaderService turns user queries into tracks.
// It never touches sessions, so it runs outside the guild dispatcher.
type TrackLoaderService struct {
	trackResolver ports.TrackResolver
	externals     []ports.ExternalTrackResolver
	now           Clock
}

// NewTrackLoaderService creates a new TrackLoaderService.
// External resolvers are tried in order before the track backend.
func NewTrackLoaderService(
	trackResolver ports.TrackResolver,
	clock Clock,
	externals ...ports.ExternalTrackResolver,
) *TrackLoaderService {
	if clock == nil {
		clock = time.Now
	}
	return &TrackLoaderService{
		trackResolver: trackResolver,
		externals:     externals,
		now:           clock,
	}
}

// Resolve loads the tracks for a query. A search keeps only its first hit;
// playlists and albums keep every track.
func (s *TrackLoaderService) Resolve(ctx context.Context, input ResolveInput) (*ResolveOutput, error) {
	raw := strings.TrimSpace(input.Query)
	if raw == "" {
		return nil, ErrEmptyQuery
	}

	result, err := s.load(ctx, raw)
	if err != nil {
		return nil, wrapService(ErrLoadFailed, err)
	}
	if result.IsEmpty() {
		return nil, ErrNoResults
	}

	candidates := result.Tracks
	if result.IsSearch {
		candidates = candidates[:1]
	}

	now := s.now()
	tracks := lo.Map(candidates, func(c domain.TrackCandidate, _ int) domain.Track {
		return domain.NewTrack(c, input.RequesterID, now)
	})
	tracks = lo.Filter(tracks, func(t domain.Track, _ int) bool { return t.IsValid() })
	if len(tracks) == 0 {
		return nil, ErrNoResults
	}

	return &ResolveOutput{
		Tracks:         tracks,
		CollectionName: result.CollectionName,
	}, nil
}

func (s *TrackLoaderService) load(ctx context.Context, raw string) (*ports.LoadResult, error) {
	for _, external := range s.externals {
		if external.CanResolve(raw) {
			return external.Resolve(ctx, raw)
		}
	}

	query := domain.NewSearchQuery(raw)
	return s.trackResolver.LoadTracks(ctx, query.LavalinkQuery())
}

// SearchTracks searches for tracks matching the query. Failures yield no tracks.
func (s *TrackLoaderService) SearchTracks(
	ctx context.Context,
	input SearchTracksInput,
) (*SearchTracksOutput, error) {
	raw := strings.TrimSpace(input.Query)
	if raw == "" {
		return &SearchTracksOutput{Tracks: nil}, nil
	}

	query := domain.NewSearchQuery(raw)
	result, err := s.trackResolver.LoadTracks(ctx, query.LavalinkQuery())
	if err != nil {
		return nil, wrapService(ErrLoadFailed, err)
	}
	if result.IsEmpty() {
		return &SearchTracksOutput{Tracks: nil}, nil
	}

	limit := input.Limit
	if limit <= 0 || limit > len(result.Tracks) {
		limit = len(result.Tracks)
	}

	return &SearchTracksOutput{
		Tracks: result.Tracks[:limit],
	}, nil
}
