package domain

import (
	"net/url"
	"strings"
)

// SearchSource represents the source for searching tracks.
type SearchSource string

const (
	// SourceYouTube searches YouTube.
	SourceYouTube SearchSource = "ytsearch"
	// SourceYouTubeMusic searches YouTube Music.
	SourceYouTubeMusic SearchSource = "ytmsearch"
	// SourceSoundCloud searches SoundCloud.
	SourceSoundCloud SearchSource = "scsearch"
	// SourceDirect indicates a direct URL (no search prefix).
	SourceDirect SearchSource = ""
)

// SearchQuery represents a query for searching tracks.
type SearchQuery struct {
	Query  string       // The search term or URL
	Source SearchSource // The search source
	IsURL  bool         // Whether the query is a direct URL
}

// NewSearchQuery creates a SearchQuery from user input.
// URLs are passed through, anything else becomes a YouTube search.
func NewSearchQuery(input string) SearchQuery {
	input = strings.TrimSpace(input)

	if isURL(input) {
		return SearchQuery{Query: input, Source: SourceDirect, IsURL: true}
	}
	return SearchQuery{Query: input, Source: SourceYouTube}
}

// LavalinkQuery returns the query string formatted for Lavalink.
func (q SearchQuery) LavalinkQuery() string {
	if q.IsURL {
		return q.Query
	}
	return string(q.Source) + ":" + q.Query
}

// IsValid returns true if the query is not empty.
func (q SearchQuery) IsValid() bool {
	return q.Query != ""
}

// SearchFor builds the deferred lookup string for an item known only by artist and title.
func SearchFor(artist, title string) string {
	if artist == "" {
		return string(SourceYouTube) + ":" + title
	}
	return string(SourceYouTube) + ":" + artist + " - " + title
}

func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") ||
		strings.HasPrefix(input, "https://") ||
		strings.HasPrefix(input, "www.")
}

// SpotifyKind is the type of object a Spotify reference points to.
type SpotifyKind string

const (
	SpotifyTrack    SpotifyKind = "track"
	SpotifyAlbum    SpotifyKind = "album"
	SpotifyPlaylist SpotifyKind = "playlist"
)

// SpotifyReference is a parsed open.spotify.com URL or spotify: URI.
type SpotifyReference struct {
	Kind SpotifyKind
	ID   string
}

// ParseSpotifyReference recognises
// https://open.spotify.com/{track,album,playlist}/<id> (optionally with an intl-xx segment)
// and spotify:{track,album,playlist}:<id>.
func ParseSpotifyReference(input string) (SpotifyReference, bool) {
	input = strings.TrimSpace(input)

	if rest, ok := strings.CutPrefix(input, "spotify:"); ok {
		kind, id, found := strings.Cut(rest, ":")
		if !found {
			return SpotifyReference{}, false
		}
		return newSpotifyReference(kind, id)
	}

	if strings.HasPrefix(input, "open.spotify.com/") {
		input = "https://" + input
	}
	u, err := url.Parse(input)
	if err != nil || u.Host != "open.spotify.com" {
		return SpotifyReference{}, false
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) > 0 && strings.HasPrefix(parts[0], "intl-") {
		parts = parts[1:]
	}
	if len(parts) != 2 {
		return SpotifyReference{}, false
	}
	return newSpotifyReference(parts[0], parts[1])
}

func newSpotifyReference(kind, id string) (SpotifyReference, bool) {
	if id == "" {
		return SpotifyReference{}, false
	}
	switch SpotifyKind(kind) {
	case SpotifyTrack, SpotifyAlbum, SpotifyPlaylist:
		return SpotifyReference{Kind: SpotifyKind(kind), ID: id}, true
	default:
		return SpotifyReference{}, false
	}
}
