package usecases

import (
	"context"
	"errors"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/events"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// JoinInput contains the input for the Join use case.
type JoinInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
	VoiceChannelID        snowflake.ID // Optional: specific channel to join (0 means use user's channel)
}

// JoinOutput contains the result of the Join use case.
type JoinOutput struct {
	VoiceChannelID snowflake.ID
	AlreadyJoined  bool
}

// LeaveInput contains the input for the Leave use case.
type LeaveInput struct {
	GuildID snowflake.ID
}

// BotVoiceStateChangeInput contains the input for handling bot voice state changes.
type BotVoiceStateChangeInput struct {
	GuildID      snowflake.ID
	NewChannelID *snowflake.ID // nil means disconnected
}

// VoiceChannelService creates, moves and tears down playback sessions.
type VoiceChannelService struct {
	repo            domain.SessionRepository
	dispatcher      *events.GuildDispatcher
	voiceConnection ports.VoiceConnection
	voiceState      ports.VoiceStateProvider
	publisher       ports.EventPublisher
}

// NewVoiceChannelService creates a new VoiceChannelService.
func NewVoiceChannelService(
	repo domain.SessionRepository,
	dispatcher *events.GuildDispatcher,
	voiceConnection ports.VoiceConnection,
	voiceState ports.VoiceStateProvider,
	publisher ports.EventPublisher,
) *VoiceChannelService {
	return &VoiceChannelService{
		repo:            repo,
		dispatcher:      dispatcher,
		voiceConnection: voiceConnection,
		voiceState:      voiceState,
		publisher:       publisher,
	}
}

// Join connects the bot to a voice channel, creating the guild's session.
// If the bot already is in the target channel only the notification channel is updated.
// Joining another channel keeps the queue.
func (v *VoiceChannelService) Join(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	voiceChannelID, err := v.targetChannel(input)
	if err != nil {
		return nil, err
	}

	var output *JoinOutput
	err = v.dispatcher.Do(ctx, input.GuildID, func(ctx context.Context) error {
		output, err = v.join(ctx, input, voiceChannelID)
		return err
	})
	return output, err
}

// EnsureConnected joins the user's channel only if the guild has no session yet.
// With an existing session it just refreshes the notification channel.
func (v *VoiceChannelService) EnsureConnected(
	ctx context.Context,
	input JoinInput,
) (*JoinOutput, error) {
	var output *JoinOutput
	err := v.dispatcher.Do(ctx, input.GuildID, func(ctx context.Context) error {
		session, err := v.repo.Get(ctx, input.GuildID)
		if err == nil {
			session.SetNotificationChannelID(input.NotificationChannelID)
			output = &JoinOutput{VoiceChannelID: session.VoiceChannelID(), AlreadyJoined: true}
			return v.repo.Save(ctx, session)
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return err
		}

		voiceChannelID, err := v.targetChannel(input)
		if err != nil {
			return err
		}
		output, err = v.join(ctx, input, voiceChannelID)
		return err
	})
	return output, err
}

// targetChannel returns the requested channel or the user's current one.
func (v *VoiceChannelService) targetChannel(input JoinInput) (snowflake.ID, error) {
	if input.VoiceChannelID != 0 {
		return input.VoiceChannelID, nil
	}

	userChannel, err := v.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
	if err != nil {
		slog.Debug("failed to read user voice state",
			"guild", input.GuildID,
			"user", input.UserID,
			"error", err,
		)
		return 0, ErrUserNotInVoice
	}
	if userChannel == 0 {
		return 0, ErrUserNotInVoice
	}
	return userChannel, nil
}

// join must run on the guild's dispatcher.
func (v *VoiceChannelService) join(
	ctx context.Context,
	input JoinInput,
	voiceChannelID snowflake.ID,
) (*JoinOutput, error) {
	session, err := v.repo.Get(ctx, input.GuildID)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, err
	}

	if session != nil && session.VoiceChannelID() == voiceChannelID {
		session.SetNotificationChannelID(input.NotificationChannelID)
		if err := v.repo.Save(ctx, session); err != nil {
			return nil, err
		}
		return &JoinOutput{VoiceChannelID: voiceChannelID, AlreadyJoined: true}, nil
	}

	if err := v.voiceConnection.JoinChannel(ctx, input.GuildID, voiceChannelID); err != nil {
		return nil, wrapService(ErrJoinFailed, err)
	}

	if session != nil {
		session.SetVoiceChannelID(voiceChannelID)
		session.SetNotificationChannelID(input.NotificationChannelID)
	} else {
		session = domain.NewSession(input.GuildID, voiceChannelID, input.NotificationChannelID)
	}
	if err := v.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	slog.Info("joined voice channel", "guild", input.GuildID, "channel", voiceChannelID)

	return &JoinOutput{VoiceChannelID: voiceChannelID}, nil
}

// Leave disconnects the bot and discards the guild's session.
func (v *VoiceChannelService) Leave(ctx context.Context, input LeaveInput) error {
	return v.dispatcher.Do(ctx, input.GuildID, func(ctx context.Context) error {
		if _, err := v.repo.Get(ctx, input.GuildID); err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return ErrNotConnected
			}
			return err
		}

		if err := v.voiceConnection.LeaveChannel(ctx, input.GuildID); err != nil {
			return wrapService(ErrServiceUnavailable, err)
		}

		return v.closeSession(ctx, input.GuildID)
	})
}

// HandleBotVoiceStateChange reacts to the bot being moved or disconnected by someone else.
func (v *VoiceChannelService) HandleBotVoiceStateChange(
	ctx context.Context,
	input BotVoiceStateChangeInput,
) error {
	return v.dispatcher.Do(ctx, input.GuildID, func(ctx context.Context) error {
		session, err := v.repo.Get(ctx, input.GuildID)
		if err != nil {
			// No session exists, nothing to do
			return nil
		}

		if input.NewChannelID == nil {
			slog.Info("bot disconnected from voice", "guild", input.GuildID)
			return v.closeSession(ctx, input.GuildID)
		}

		if *input.NewChannelID != session.VoiceChannelID() {
			session.SetVoiceChannelID(*input.NewChannelID)
			return v.repo.Save(ctx, session)
		}
		return nil
	})
}

// closeSession must run on the guild's dispatcher.
func (v *VoiceChannelService) closeSession(ctx context.Context, guildID snowflake.ID) error {
	if err := v.repo.Delete(ctx, guildID); err != nil {
		return err
	}

	event := domain.SessionClosedEvent{GuildID: guildID}
	if err := v.publisher.Publish(event); err != nil {
		slog.Warn("failed to publish event", "event", event, "error", err)
	}
	return nil
}
