package ports

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// LoadResult is the outcome of a resolution: always a list of candidates, possibly of length one.
type LoadResult struct {
	Tracks []domain.TrackCandidate

	// Name of the playlist or album the tracks came from; empty for single tracks and searches.
	CollectionName string

	// IsSearch marks results of a free-text search, where only the first hit is wanted.
	IsSearch bool
}

// IsEmpty returns true if there are no candidates.
func (r *LoadResult) IsEmpty() bool {
	return r == nil || len(r.Tracks) == 0
}

// NowPlayingInfo contains information for the "Now Playing" notification.
type NowPlayingInfo struct {
	Title              string
	Artist             string
	Duration           string
	URI                string
	ArtworkURL         string
	Source             domain.TrackSource
	IsStream           bool
	RequesterID        snowflake.ID
	RequesterName      string
	RequesterAvatarURL string
	EnqueuedAt         time.Time
}
