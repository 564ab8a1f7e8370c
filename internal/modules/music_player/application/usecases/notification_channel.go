package usecases

import (
	"context"
	"errors"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/events"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// NotificationChannelService handles updating the notification channel for a guild's session.
type NotificationChannelService struct {
	repo       domain.SessionRepository
	dispatcher *events.GuildDispatcher
}

// NewNotificationChannelService creates a new NotificationChannelService.
func NewNotificationChannelService(
	repo domain.SessionRepository,
	dispatcher *events.GuildDispatcher,
) *NotificationChannelService {
	return &NotificationChannelService{repo: repo, dispatcher: dispatcher}
}

// SetNotificationChannelInput contains the input for the Set use case.
type SetNotificationChannelInput struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
}

// Set updates the notification channel for the guild's session.
func (n *NotificationChannelService) Set(
	ctx context.Context,
	input SetNotificationChannelInput,
) error {
	return n.dispatcher.Do(ctx, input.GuildID, func(ctx context.Context) error {
		session, err := n.repo.Get(ctx, input.GuildID)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return ErrNotConnected
			}
			return err
		}

		if session.NotificationChannelID() == input.ChannelID {
			return nil
		}
		session.SetNotificationChannelID(input.ChannelID)

		return n.repo.Save(ctx, session)
	})
}
