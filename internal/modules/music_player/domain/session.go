package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Session is the playback state of one guild: its channels, queue and now-playing slot.
// A session is owned by a single guild and must only be mutated from that guild's dispatcher.
type Session struct {
	guildID               snowflake.ID
	voiceChannelID        snowflake.ID // Voice channel the bot is connected to
	notificationChannelID snowflake.ID // Text channel for notifications

	queue      Queue
	nowPlaying NowPlaying
}

// NewSession creates an idle Session with an empty queue.
func NewSession(guildID, voiceChannelID, notificationChannelID snowflake.ID) *Session {
	return &Session{
		guildID:               guildID,
		voiceChannelID:        voiceChannelID,
		notificationChannelID: notificationChannelID,
		queue:                 NewQueue(),
	}
}

// GuildID returns the guild ID. It never changes.
func (s *Session) GuildID() snowflake.ID {
	return s.guildID
}

// VoiceChannelID returns the voice channel the bot is connected to.
func (s *Session) VoiceChannelID() snowflake.ID {
	return s.voiceChannelID
}

// SetVoiceChannelID records a move to another voice channel.
func (s *Session) SetVoiceChannelID(channelID snowflake.ID) {
	s.voiceChannelID = channelID
}

// NotificationChannelID returns the text channel for status updates.
func (s *Session) NotificationChannelID() snowflake.ID {
	return s.notificationChannelID
}

// SetNotificationChannelID updates the text channel for status updates.
func (s *Session) SetNotificationChannelID(channelID snowflake.ID) {
	s.notificationChannelID = channelID
}

// Queue returns the session's queue.
func (s *Session) Queue() *Queue {
	return &s.queue
}

// NowPlaying returns the session's now-playing slot.
func (s *Session) NowPlaying() *NowPlaying {
	return &s.nowPlaying
}

// IsIdle returns true if nothing is playing.
func (s *Session) IsIdle() bool {
	return s.nowPlaying.IsIdle()
}

// RequestPlay enqueues tracks. If the session was idle, the first pending track is started
// and returned.
func (s *Session) RequestPlay(tracks []Track, now time.Time) (Track, bool) {
	s.queue.Enqueue(tracks...)
	if !s.nowPlaying.IsIdle() {
		return Track{}, false
	}
	return s.StartNext(now)
}

// StartNext dequeues the next track and makes it current. It only acts while idle.
func (s *Session) StartNext(now time.Time) (Track, bool) {
	if !s.nowPlaying.IsIdle() {
		return Track{}, false
	}
	next, ok := s.queue.DequeueNext()
	if !ok {
		return Track{}, false
	}
	s.nowPlaying.Start(next, now)
	return next, true
}

// FinishCurrent clears the current track and returns it. The session is idle afterwards.
func (s *Session) FinishCurrent() (Track, bool) {
	return s.nowPlaying.Finish()
}

// Snapshot returns copies of the queue and now-playing slot for rendering.
func (s *Session) Snapshot() (Queue, NowPlaying) {
	return s.queue.Clone(), s.nowPlaying
}
