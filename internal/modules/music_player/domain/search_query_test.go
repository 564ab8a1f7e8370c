package domain

import (
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

func TestNewSearchQuery(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedQuery string
		expectedLL    string
		expectedIsURL bool
	}{
		{
			name:          "search term",
			input:         "never gonna give you up",
			expectedQuery: "never gonna give you up",
			expectedLL:    "ytsearch:never gonna give you up",
		},
		{
			name:          "search term with whitespace",
			input:         "  hello world  ",
			expectedQuery: "hello world",
			expectedLL:    "ytsearch:hello world",
		},
		{
			name:          "https URL",
			input:         "https://youtube.com/watch?v=dQw4w9WgXcQ",
			expectedQuery: "https://youtube.com/watch?v=dQw4w9WgXcQ",
			expectedLL:    "https://youtube.com/watch?v=dQw4w9WgXcQ",
			expectedIsURL: true,
		},
		{
			name:          "www URL",
			input:         "www.youtube.com/watch?v=abc",
			expectedQuery: "www.youtube.com/watch?v=abc",
			expectedLL:    "www.youtube.com/watch?v=abc",
			expectedIsURL: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewSearchQuery(tt.input)

			if q.Query != tt.expectedQuery {
				t.Errorf("Query = %q, expected %q", q.Query, tt.expectedQuery)
			}
			if q.IsURL != tt.expectedIsURL {
				t.Errorf("IsURL = %v, expected %v", q.IsURL, tt.expectedIsURL)
			}
			if got := q.LavalinkQuery(); got != tt.expectedLL {
				t.Errorf("LavalinkQuery() = %q, expected %q", got, tt.expectedLL)
			}
		})
	}

	if NewSearchQuery("   ").IsValid() {
		t.Error("expected blank query to be invalid")
	}
}

func TestParseSpotifyReference(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   SpotifyReference
		wantOK bool
	}{
		{
			name:   "track URL",
			input:  "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC?si=abc",
			want:   SpotifyReference{Kind: SpotifyTrack, ID: "4uLU6hMCjMI75M1A2tKUQC"},
			wantOK: true,
		},
		{
			name:   "localised album URL",
			input:  "https://open.spotify.com/intl-ja/album/1DFixLWuPkv3KT3TnV35m3",
			want:   SpotifyReference{Kind: SpotifyAlbum, ID: "1DFixLWuPkv3KT3TnV35m3"},
			wantOK: true,
		},
		{
			name:   "playlist without scheme",
			input:  "open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
			want:   SpotifyReference{Kind: SpotifyPlaylist, ID: "37i9dQZF1DXcBWIGoYBM5M"},
			wantOK: true,
		},
		{
			name:   "track URI",
			input:  "spotify:track:4uLU6hMCjMI75M1A2tKUQC",
			want:   SpotifyReference{Kind: SpotifyTrack, ID: "4uLU6hMCjMI75M1A2tKUQC"},
			wantOK: true,
		},
		{name: "artist URL", input: "https://open.spotify.com/artist/0OdUWJ0sBjDrqHygGUXeCF"},
		{name: "youtube URL", input: "https://youtube.com/watch?v=abc"},
		{name: "plain text", input: "spotify playlist"},
		{name: "URI without id", input: "spotify:track:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSpotifyReference(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, expected %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("got %+v, expected %+v", got, tt.want)
			}
		})
	}
}

func TestSearchFor(t *testing.T) {
	if got := SearchFor("Rick Astley", "Never Gonna Give You Up"); got != "ytsearch:Rick Astley - Never Gonna Give You Up" {
		t.Errorf("unexpected query %q", got)
	}
	if got := SearchFor("", "Untitled"); got != "ytsearch:Untitled" {
		t.Errorf("unexpected query %q", got)
	}
}

func TestNewTrack(t *testing.T) {
	candidate := TrackCandidate{
		Query:      "https://youtube.com/watch?v=abc",
		Encoded:    "QAAA",
		Title:      "Song",
		Artist:     "Artist",
		Duration:   3 * time.Minute,
		SourceName: "youtube",
	}
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("JST", 9*3600))

	a := NewTrack(candidate, snowflake.ID(42), now)
	b := NewTrack(candidate, snowflake.ID(42), now)

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty entry IDs, got %q and %q", a.ID, b.ID)
	}
	if a.Source != TrackSourceYouTube {
		t.Errorf("expected youtube source, got %s", a.Source)
	}
	if a.RequesterID != 42 {
		t.Errorf("expected requester 42, got %d", a.RequesterID)
	}
	if a.EnqueuedAt.Location() != time.UTC {
		t.Error("expected EnqueuedAt in UTC")
	}
	if !a.IsValid() {
		t.Error("expected track to be valid")
	}

	deferred := NewTrack(TrackCandidate{Query: "ytsearch:x", Title: "x"}, 1, now)
	if !deferred.IsValid() {
		t.Error("expected deferred track with query to be valid")
	}
	if (Track{Title: "no source"}).IsValid() {
		t.Error("expected track without query or payload to be invalid")
	}
}

func TestParseTrackSource(t *testing.T) {
	if ParseTrackSource("spotify") != TrackSourceSpotify {
		t.Error("expected spotify")
	}
	if ParseTrackSource("bandcamp") != TrackSourceOther {
		t.Error("expected unknown sources to map to other")
	}
}
