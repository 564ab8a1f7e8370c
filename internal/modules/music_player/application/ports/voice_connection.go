package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// VoiceConnection defines the interface for voice channel connection operations.
type VoiceConnection interface {
	// JoinChannel connects the bot to the voice channel and blocks until the voice
	// session is ready, the context ends or the connection times out.
	JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error

	// LeaveChannel disconnects the bot and destroys the guild's player.
	LeaveChannel(ctx context.Context, guildID snowflake.ID) error
}
