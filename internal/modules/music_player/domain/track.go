package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
)

// TrackID identifies one queue entry. Two requests for the same song get distinct IDs.
type TrackID string

// TrackCandidate is a playable item returned by track resolution, before anyone requested it.
type TrackCandidate struct {
	Query      string // stable lookup string, e.g. a URL or "ytsearch:<terms>"
	Encoded    string // Lavalink encoded track data; empty for deferred candidates
	Title      string
	Artist     string
	Duration   time.Duration
	URI        string
	ArtworkURL string
	SourceName string
	IsStream   bool
}

// IsDeferred reports whether the candidate still has to be looked up before it can be played.
func (c TrackCandidate) IsDeferred() bool {
	return c.Encoded == ""
}

// Track is a requested playable item. It is a value type and is never mutated after NewTrack.
type Track struct {
	ID          TrackID
	Query       string
	Encoded     string
	Title       string
	Artist      string
	Duration    time.Duration
	URI         string
	ArtworkURL  string
	Source      TrackSource
	IsStream    bool
	RequesterID snowflake.ID
	EnqueuedAt  time.Time
}

// NewTrack creates a Track for the given candidate, owned by the requesting user.
func NewTrack(c TrackCandidate, requesterID snowflake.ID, now time.Time) Track {
	return Track{
		ID:          TrackID(uuid.NewString()),
		Query:       c.Query,
		Encoded:     c.Encoded,
		Title:       c.Title,
		Artist:      c.Artist,
		Duration:    c.Duration,
		URI:         c.URI,
		ArtworkURL:  c.ArtworkURL,
		Source:      ParseTrackSource(c.SourceName),
		IsStream:    c.IsStream,
		RequesterID: requesterID,
		EnqueuedAt:  now.UTC(),
	}
}

// IsValid returns true if the track has a title and something to play from.
func (t Track) IsValid() bool {
	return t.Title != "" && (t.Encoded != "" || t.Query != "")
}

// FormattedDuration returns the total duration as HH:MM:SS, or LIVE for streams.
func (t Track) FormattedDuration() string {
	if t.IsStream {
		return liveLabel
	}
	return FormatDuration(t.Duration)
}

// FormattedRemaining returns the time left after elapsed, e.g. "00:01:15 left".
func (t Track) FormattedRemaining(elapsed time.Duration) string {
	if t.IsStream {
		return liveLabel
	}
	return FormatRemaining(t.Duration, elapsed)
}
