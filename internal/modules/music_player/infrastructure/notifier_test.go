package infrastructure

import (
	"testing"
	"time"

	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

func TestNowPlayingEmbed(t *testing.T) {
	info := &ports.NowPlayingInfo{
		Title:              "Song",
		Artist:             "",
		Duration:           "00:03:20",
		URI:                "https://youtube.com/watch?v=a",
		ArtworkURL:         "https://img/a",
		Source:             domain.TrackSourceYouTube,
		RequesterID:        7,
		RequesterName:      "alice",
		RequesterAvatarURL: "https://cdn/a.png",
		EnqueuedAt:         time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	embed := nowPlayingEmbed(info)

	if embed.Title != "Song" || embed.URL != info.URI {
		t.Errorf("unexpected title/url %q %q", embed.Title, embed.URL)
	}
	if embed.Color != domain.TrackSourceYouTube.Color() {
		t.Errorf("expected source color, got %x", embed.Color)
	}
	if embed.Fields[0].Value != "-" {
		t.Errorf("expected placeholder artist, got %q", embed.Fields[0].Value)
	}
	if embed.Fields[1].Value != "00:03:20" {
		t.Errorf("expected duration field, got %q", embed.Fields[1].Value)
	}
	if embed.Footer.Text != "Requested by alice" {
		t.Errorf("unexpected footer %q", embed.Footer.Text)
	}
	if embed.Thumbnail == nil || embed.Thumbnail.URL != "https://img/a" {
		t.Error("expected artwork thumbnail")
	}
	if embed.Timestamp != "2024-01-02T03:04:05Z" {
		t.Errorf("unexpected timestamp %q", embed.Timestamp)
	}
}

func TestNowPlayingEmbed_FallsBackToMention(t *testing.T) {
	embed := nowPlayingEmbed(&ports.NowPlayingInfo{Title: "Song", RequesterID: 7, IsStream: true, Duration: "LIVE"})

	if embed.Footer.Text != "Requested by <@7>" {
		t.Errorf("unexpected footer %q", embed.Footer.Text)
	}
	if embed.Thumbnail != nil {
		t.Error("expected no thumbnail without artwork")
	}
	if embed.Timestamp != "" {
		t.Error("expected no timestamp without enqueue time")
	}
}
