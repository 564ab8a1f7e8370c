package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// VoiceStateProvider reads the gateway's cached voice states.
type VoiceStateProvider interface {
	// GetUserVoiceChannel returns the voice channel the user is in, or 0 if none.
	GetUserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error)
}
