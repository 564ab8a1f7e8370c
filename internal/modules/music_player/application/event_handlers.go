package application

import (
	"context"
	"log/slog"
	"reflect"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// TrackFinisher advances a guild's session when its track ends.
type TrackFinisher interface {
	TrackFinished(ctx context.Context, input usecases.TrackFinishedInput) error
}

// PlaybackEventHandler feeds track-end reports from the audio layer into the session controller.
// Advancing a session may resolve the next track over the network, so each guild's track ends
// run on their own goroutine, in arrival order, and never hold up the event bus.
type PlaybackEventHandler struct {
	playback   TrackFinisher
	subscriber ports.EventSubscriber

	mu      sync.Mutex
	pending map[snowflake.ID][]domain.TrackEndedEvent
	wg      sync.WaitGroup
}

// NewPlaybackEventHandler creates a new PlaybackEventHandler.
func NewPlaybackEventHandler(
	playback TrackFinisher,
	subscriber ports.EventSubscriber,
) *PlaybackEventHandler {
	return &PlaybackEventHandler{
		playback:   playback,
		subscriber: subscriber,
		pending:    make(map[snowflake.ID][]domain.TrackEndedEvent),
	}
}

// Start registers event handlers with the subscriber.
func (h *PlaybackEventHandler) Start() error {
	err := h.subscriber.Subscribe(
		reflect.TypeFor[domain.TrackEndedEvent](),
		func(ctx context.Context, e domain.Event) {
			h.enqueueTrackEnded(ctx, e.(domain.TrackEndedEvent))
		},
	)
	if err != nil {
		return err
	}

	slog.Debug("playback event handlers properly registered")

	return nil
}

// Wait blocks until every track end handed off so far has been processed.
func (h *PlaybackEventHandler) Wait() {
	h.wg.Wait()
}

// enqueueTrackEnded queues event for its guild and starts the guild's worker if none runs.
func (h *PlaybackEventHandler) enqueueTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	queued, running := h.pending[event.GuildID]
	h.pending[event.GuildID] = append(queued, event)
	if running {
		return
	}

	h.wg.Add(1)
	go h.drainTrackEnded(ctx, event.GuildID)
}

func (h *PlaybackEventHandler) drainTrackEnded(ctx context.Context, guildID snowflake.ID) {
	defer h.wg.Done()

	for {
		h.mu.Lock()
		queued := h.pending[guildID]
		if len(queued) == 0 {
			delete(h.pending, guildID)
			h.mu.Unlock()
			return
		}
		event := queued[0]
		h.pending[guildID] = queued[1:]
		h.mu.Unlock()

		h.handleTrackEnded(ctx, event)
	}
}

func (h *PlaybackEventHandler) handleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	slog.Debug("track ended", "event", event)

	err := h.playback.TrackFinished(ctx, usecases.TrackFinishedInput{
		GuildID: event.GuildID,
		Reason:  event.Reason,
	})
	if err != nil {
		slog.Error(
			"failed to advance session after track end",
			"event", event,
			"error", err,
		)
	}
}

// NotificationEventHandler keeps the "Now Playing" message and the bot presence in step
// with each session. Failures are logged and never affect playback.
type NotificationEventHandler struct {
	subscriber       ports.EventSubscriber
	notifier         ports.NotificationSender
	presence         ports.PresenceUpdater
	userInfoProvider ports.UserInfoProvider

	mu       sync.Mutex
	messages map[snowflake.ID]domain.NowPlayingMessage
}

// NewNotificationEventHandler creates a new NotificationEventHandler.
func NewNotificationEventHandler(
	subscriber ports.EventSubscriber,
	notifier ports.NotificationSender,
	presence ports.PresenceUpdater,
	userInfoProvider ports.UserInfoProvider,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		subscriber:       subscriber,
		notifier:         notifier,
		presence:         presence,
		userInfoProvider: userInfoProvider,
		messages:         make(map[snowflake.ID]domain.NowPlayingMessage),
	}
}

// Start registers event handlers with the subscriber.
func (h *NotificationEventHandler) Start() error {
	handlers := map[reflect.Type]ports.EventHandlerFunc{
		reflect.TypeFor[domain.PlaybackStartedEvent](): func(ctx context.Context, e domain.Event) {
			h.handlePlaybackStarted(ctx, e.(domain.PlaybackStartedEvent))
		},
		reflect.TypeFor[domain.PlaybackFinishedEvent](): func(_ context.Context, e domain.Event) {
			h.retractNowPlaying(e.EventGuildID())
		},
		reflect.TypeFor[domain.PlayerIdleEvent](): func(_ context.Context, _ domain.Event) {
			h.clearPresence()
		},
		reflect.TypeFor[domain.SessionClosedEvent](): func(_ context.Context, e domain.Event) {
			h.retractNowPlaying(e.EventGuildID())
			h.clearPresence()
		},
	}

	for eventType, handler := range handlers {
		if err := h.subscriber.Subscribe(eventType, handler); err != nil {
			return err
		}
	}

	slog.Debug("notification event handlers properly registered")

	return nil
}

func (h *NotificationEventHandler) handlePlaybackStarted(
	ctx context.Context,
	event domain.PlaybackStartedEvent,
) {
	// A message left over from a start without a matching finish is stale.
	h.retractNowPlaying(event.GuildID)

	track := event.Track
	info := &ports.NowPlayingInfo{
		Title:       track.Title,
		Artist:      track.Artist,
		Duration:    track.FormattedDuration(),
		URI:         track.URI,
		ArtworkURL:  track.ArtworkURL,
		Source:      track.Source,
		IsStream:    track.IsStream,
		RequesterID: track.RequesterID,
		EnqueuedAt:  track.EnqueuedAt,
	}

	if h.userInfoProvider != nil {
		userInfo, err := h.userInfoProvider.GetUserInfo(ctx, event.GuildID, track.RequesterID)
		if err != nil {
			slog.Debug("failed to fetch requester info", "event", event, "error", err)
		} else {
			info.RequesterName = userInfo.DisplayName
			info.RequesterAvatarURL = userInfo.AvatarURL
		}
	}

	if event.NotificationChannelID != 0 {
		messageID, err := h.notifier.SendNowPlaying(event.NotificationChannelID, info)
		if err != nil {
			slog.Warn(
				"failed to send now playing notification",
				"event", event,
				"error", err,
			)
		} else {
			h.mu.Lock()
			h.messages[event.GuildID] = domain.NowPlayingMessage{
				ChannelID: event.NotificationChannelID,
				MessageID: messageID,
			}
			h.mu.Unlock()
		}
	}

	if h.presence != nil {
		if err := h.presence.SetListening(track.Title); err != nil {
			slog.Warn("failed to update presence", "event", event, "error", err)
		}
	}
}

// retractNowPlaying deletes the guild's "Now Playing" message, if any.
func (h *NotificationEventHandler) retractNowPlaying(guildID snowflake.ID) {
	h.mu.Lock()
	message, ok := h.messages[guildID]
	delete(h.messages, guildID)
	h.mu.Unlock()

	if !ok {
		return
	}

	if err := h.notifier.DeleteMessage(message.ChannelID, message.MessageID); err != nil {
		slog.Warn(
			"failed to delete now playing message",
			"guild", guildID,
			"now_playing", message,
			"error", err,
		)
	}
}

func (h *NotificationEventHandler) clearPresence() {
	if h.presence == nil {
		return
	}
	if err := h.presence.ClearListening(); err != nil {
		slog.Warn("failed to clear presence", "error", err)
	}
}

// NowPlayingMessage returns the remembered message for a guild.
func (h *NotificationEventHandler) NowPlayingMessage(guildID snowflake.ID) (domain.NowPlayingMessage, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	message, ok := h.messages[guildID]
	return message, ok
}
