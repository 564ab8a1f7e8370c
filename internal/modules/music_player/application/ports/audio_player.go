package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// AudioPlayer defines the interface for audio playback operations.
// Implementations report the end of a track by publishing domain.TrackEndedEvent.
type AudioPlayer interface {
	// Play starts playback of the given track, replacing anything that is playing.
	// The track starts unpaused even if the previous one was paused.
	Play(ctx context.Context, guildID snowflake.ID, track domain.Track) error

	// Stop stops the current playback.
	Stop(ctx context.Context, guildID snowflake.ID) error

	// Pause pauses the current playback.
	Pause(ctx context.Context, guildID snowflake.ID) error

	// Resume resumes the paused playback.
	Resume(ctx context.Context, guildID snowflake.ID) error
}
