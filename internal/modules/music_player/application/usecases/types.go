package usecases

import (
	"time"

	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// Re-export domain types for presentation layer use.
// This allows presentation to depend only on usecases without importing domain directly.

// Track is an alias for domain.Track.
type Track = domain.Track

// TrackCandidate is an alias for domain.TrackCandidate.
type TrackCandidate = domain.TrackCandidate

// QueuePage is an alias for domain.QueuePage.
type QueuePage = domain.QueuePage

// SessionRepository is an alias for domain.SessionRepository.
type SessionRepository = domain.SessionRepository

// Clock returns the current time. Services take one so tests can pin time.
type Clock func() time.Time
