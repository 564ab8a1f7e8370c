package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
	"github.com/zmb3/spotify"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

// SpotifyConfig contains Spotify API credentials and limits.
type SpotifyConfig struct {
	ClientID          string
	ClientSecret      string
	MaxTracks         int
	RequestsPerSecond float64
}

// spotifyCatalog is the part of the Spotify Web API the resolver reads.
type spotifyCatalog interface {
	GetTrack(id spotify.ID) (*spotify.FullTrack, error)
	GetAlbum(id spotify.ID) (*spotify.FullAlbum, error)
	GetPlaylist(id spotify.ID) (*spotify.FullPlaylist, error)
	NextAlbumPage(page *spotify.SimpleTrackPage) error
	NextPlaylistPage(page *spotify.PlaylistTrackPage) error
}

type spotifyClient struct {
	*spotify.Client
}

func (c spotifyClient) NextAlbumPage(page *spotify.SimpleTrackPage) error {
	return c.NextPage(page)
}

func (c spotifyClient) NextPlaylistPage(page *spotify.PlaylistTrackPage) error {
	return c.NextPage(page)
}

// SpotifyResolver turns Spotify links into deferred candidates.
// Each candidate carries a YouTube search built from artist and title; the audio
// adapter resolves it when the track is about to play.
type SpotifyResolver struct {
	catalog   spotifyCatalog
	limiter   *rate.Limiter
	maxTracks int
}

// NewSpotifyResolver creates a SpotifyResolver authenticated with client credentials.
// ctx bounds the lifetime of the token source.
func NewSpotifyResolver(ctx context.Context, config SpotifyConfig) *SpotifyResolver {
	credentials := &clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     spotify.TokenURL,
	}
	client := spotify.NewClient(credentials.Client(ctx))

	return newSpotifyResolver(spotifyClient{Client: &client}, config)
}

func newSpotifyResolver(catalog spotifyCatalog, config SpotifyConfig) *SpotifyResolver {
	maxTracks := config.MaxTracks
	if maxTracks <= 0 {
		maxTracks = 100
	}
	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}

	return &SpotifyResolver{
		catalog:   catalog,
		limiter:   rate.NewLimiter(limit, 1),
		maxTracks: maxTracks,
	}
}

// CanResolve reports whether input is a Spotify track, album or playlist reference.
func (s *SpotifyResolver) CanResolve(input string) bool {
	_, ok := domain.ParseSpotifyReference(input)
	return ok
}

// Resolve fetches the referenced item. Albums and playlists are truncated to the track limit.
func (s *SpotifyResolver) Resolve(ctx context.Context, input string) (*ports.LoadResult, error) {
	ref, ok := domain.ParseSpotifyReference(input)
	if !ok {
		return nil, fmt.Errorf("not a spotify reference: %q", input)
	}

	switch ref.Kind {
	case domain.SpotifyTrack:
		return s.resolveTrack(ctx, spotify.ID(ref.ID))
	case domain.SpotifyAlbum:
		return s.resolveAlbum(ctx, spotify.ID(ref.ID))
	default:
		return s.resolvePlaylist(ctx, spotify.ID(ref.ID))
	}
}

func (s *SpotifyResolver) resolveTrack(ctx context.Context, id spotify.ID) (*ports.LoadResult, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	track, err := s.catalog.GetTrack(id)
	if err != nil {
		return nil, fmt.Errorf("spotify track %s: %w", id, err)
	}

	return &ports.LoadResult{
		Tracks: []domain.TrackCandidate{spotifyCandidate(track.SimpleTrack, track.Album.Images)},
	}, nil
}

func (s *SpotifyResolver) resolveAlbum(ctx context.Context, id spotify.ID) (*ports.LoadResult, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	album, err := s.catalog.GetAlbum(id)
	if err != nil {
		return nil, fmt.Errorf("spotify album %s: %w", id, err)
	}

	var candidates []domain.TrackCandidate
	page := &album.Tracks
	for {
		for _, track := range page.Tracks {
			candidates = append(candidates, spotifyCandidate(track, album.Images))
		}
		if len(candidates) >= s.maxTracks || page.Next == "" {
			break
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		if err := s.catalog.NextAlbumPage(page); err != nil {
			if errors.Is(err, spotify.ErrNoMorePages) {
				break
			}
			return nil, fmt.Errorf("spotify album %s: %w", id, err)
		}
	}

	return &ports.LoadResult{
		Tracks:         lo.Slice(candidates, 0, s.maxTracks),
		CollectionName: album.Name,
	}, nil
}

func (s *SpotifyResolver) resolvePlaylist(ctx context.Context, id spotify.ID) (*ports.LoadResult, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	playlist, err := s.catalog.GetPlaylist(id)
	if err != nil {
		return nil, fmt.Errorf("spotify playlist %s: %w", id, err)
	}

	var candidates []domain.TrackCandidate
	page := &playlist.Tracks
	for {
		for _, item := range page.Tracks {
			// Local files and removed tracks come back without an ID.
			if item.Track.ID == "" {
				continue
			}
			candidates = append(candidates, spotifyCandidate(item.Track.SimpleTrack, item.Track.Album.Images))
		}
		if len(candidates) >= s.maxTracks || page.Next == "" {
			break
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		if err := s.catalog.NextPlaylistPage(page); err != nil {
			if errors.Is(err, spotify.ErrNoMorePages) {
				break
			}
			return nil, fmt.Errorf("spotify playlist %s: %w", id, err)
		}
	}

	if len(candidates) > s.maxTracks {
		slog.Debug("truncated spotify playlist", "playlist", id, "limit", s.maxTracks)
	}

	return &ports.LoadResult{
		Tracks:         lo.Slice(candidates, 0, s.maxTracks),
		CollectionName: playlist.Name,
	}, nil
}

func spotifyCandidate(track spotify.SimpleTrack, images []spotify.Image) domain.TrackCandidate {
	artists := lo.Map(track.Artists, func(a spotify.SimpleArtist, _ int) string { return a.Name })

	var primary string
	if len(artists) > 0 {
		primary = artists[0]
	}

	var artwork string
	if len(images) > 0 {
		artwork = images[0].URL
	}

	return domain.TrackCandidate{
		Query:      domain.SearchFor(primary, track.Name),
		Title:      track.Name,
		Artist:     strings.Join(artists, ", "),
		Duration:   time.Duration(track.Duration) * time.Millisecond,
		URI:        track.ExternalURLs["spotify"],
		ArtworkURL: artwork,
		SourceName: string(domain.TrackSourceSpotify),
	}
}

var _ ports.ExternalTrackResolver = (*SpotifyResolver)(nil)
