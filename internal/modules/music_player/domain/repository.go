package domain

import (
	"context"
	"errors"

	"github.com/disgoorg/snowflake/v2"
)

// ErrSessionNotFound is returned when a guild has no session.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository stores at most one Session per guild.
type SessionRepository interface {
	// Get returns the Session for the given guild, or ErrSessionNotFound.
	Get(ctx context.Context, guildID snowflake.ID) (*Session, error)

	// Save stores the Session, replacing any previous one for the guild.
	Save(ctx context.Context, session *Session) error

	// Delete removes the Session for the given guild. Deleting a missing session is not an error.
	Delete(ctx context.Context, guildID snowflake.ID) error
}
