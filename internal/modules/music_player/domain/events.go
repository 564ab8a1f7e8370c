package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// Event is a notification published on the module's event bus.
type Event interface {
	EventGuildID() snowflake.ID
}

// TrackEndReason represents why a track ended.
type TrackEndReason string

const (
	// TrackEndFinished means the track finished normally.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the track failed to load.
	TrackEndLoadFailed TrackEndReason = "load_failed"
	// TrackEndStopped means the track was stopped, e.g. skipped.
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means the track was replaced by another.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the player was destroyed.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// ShouldAdvanceQueue returns true if this end reason should start the next track.
func (r TrackEndReason) ShouldAdvanceQueue() bool {
	switch r {
	case TrackEndFinished, TrackEndLoadFailed, TrackEndStopped:
		return true
	default:
		return false
	}
}

// TrackEndedEvent is published by the audio layer when a track ends.
type TrackEndedEvent struct {
	GuildID snowflake.ID
	Reason  TrackEndReason
}

// PlaybackStartedEvent is published when a track becomes current.
type PlaybackStartedEvent struct {
	GuildID               snowflake.ID
	Track                 Track
	NotificationChannelID snowflake.ID
}

// PlaybackFinishedEvent is published when the current track is cleared.
// It signals that the "Now Playing" message should be deleted.
type PlaybackFinishedEvent struct {
	GuildID snowflake.ID
	Track   Track
}

// PlayerIdleEvent is published when a session runs out of tracks.
type PlayerIdleEvent struct {
	GuildID snowflake.ID
}

// SessionClosedEvent is published when a session is torn down.
type SessionClosedEvent struct {
	GuildID snowflake.ID
}

func (e TrackEndedEvent) EventGuildID() snowflake.ID       { return e.GuildID }
func (e PlaybackStartedEvent) EventGuildID() snowflake.ID  { return e.GuildID }
func (e PlaybackFinishedEvent) EventGuildID() snowflake.ID { return e.GuildID }
func (e PlayerIdleEvent) EventGuildID() snowflake.ID       { return e.GuildID }
func (e SessionClosedEvent) EventGuildID() snowflake.ID    { return e.GuildID }
