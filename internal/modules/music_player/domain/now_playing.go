package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// PlaybackStatus is the state of a session's now-playing slot.
type PlaybackStatus int

const (
	StatusIdle PlaybackStatus = iota
	StatusPlaying
)

func (s PlaybackStatus) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	default:
		return "idle"
	}
}

// NowPlaying holds the current track and when it started.
// The track and start time are set together and only while Playing.
type NowPlaying struct {
	track     *Track
	startedAt time.Time

	pausedAt    time.Time
	pausedTotal time.Duration
}

// Status returns Playing if a track is current, Idle otherwise.
func (n *NowPlaying) Status() PlaybackStatus {
	if n.track == nil {
		return StatusIdle
	}
	return StatusPlaying
}

// IsIdle returns true if no track is current.
func (n *NowPlaying) IsIdle() bool {
	return n.track == nil
}

// Current returns the playing track.
func (n *NowPlaying) Current() (Track, bool) {
	if n.track == nil {
		return Track{}, false
	}
	return *n.track, true
}

// StartedAt returns when the current track started.
func (n *NowPlaying) StartedAt() (time.Time, bool) {
	if n.track == nil {
		return time.Time{}, false
	}
	return n.startedAt, true
}

// Start makes track current. Any previous track is replaced without notice.
func (n *NowPlaying) Start(track Track, now time.Time) {
	n.track = &track
	n.startedAt = now
	n.pausedAt = time.Time{}
	n.pausedTotal = 0
}

// Finish clears the current track and returns it.
func (n *NowPlaying) Finish() (Track, bool) {
	if n.track == nil {
		return Track{}, false
	}
	finished := *n.track
	*n = NowPlaying{}
	return finished, true
}

// IsPaused returns true if the current track is paused.
func (n *NowPlaying) IsPaused() bool {
	return n.track != nil && !n.pausedAt.IsZero()
}

// Pause marks the current track paused. Returns false if idle or already paused.
func (n *NowPlaying) Pause(now time.Time) bool {
	if n.track == nil || n.IsPaused() {
		return false
	}
	n.pausedAt = now
	return true
}

// Resume ends a pause. Returns false if idle or not paused.
func (n *NowPlaying) Resume(now time.Time) bool {
	if !n.IsPaused() {
		return false
	}
	n.pausedTotal += now.Sub(n.pausedAt)
	n.pausedAt = time.Time{}
	return true
}

// Elapsed returns the time spent actually playing the current track.
func (n *NowPlaying) Elapsed(now time.Time) time.Duration {
	if n.track == nil {
		return 0
	}
	end := now
	if n.IsPaused() {
		end = n.pausedAt
	}
	elapsed := end.Sub(n.startedAt) - n.pausedTotal
	return max(elapsed, 0)
}

// NowPlayingMessage stores the channel and message ID for a "Now Playing" message.
// The channel is kept because the notification channel may change while a track plays.
type NowPlayingMessage struct {
	ChannelID snowflake.ID
	MessageID snowflake.ID
}
