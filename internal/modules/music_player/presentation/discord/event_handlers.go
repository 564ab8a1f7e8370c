package discord

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/bot"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/usecases"
)

// VoiceEventSink receives the raw voice events the audio backend needs.
type VoiceEventSink interface {
	OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate)
	OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate)
}

// BotVoiceStateHandler reacts to the bot being moved or disconnected.
type BotVoiceStateHandler interface {
	HandleBotVoiceStateChange(ctx context.Context, input usecases.BotVoiceStateChangeInput) error
}

// EventHandlers handles Discord gateway events for the music player.
type EventHandlers struct {
	botID        snowflake.ID
	voiceEvents  VoiceEventSink
	voiceChannel BotVoiceStateHandler
	commands     *CommandHandlers
	autocomplete *AutocompleteHandler
}

// NewEventHandlers creates a new EventHandlers.
func NewEventHandlers(
	botID snowflake.ID,
	voiceEvents VoiceEventSink,
	voiceChannel BotVoiceStateHandler,
	commands *CommandHandlers,
	autocomplete *AutocompleteHandler,
) *EventHandlers {
	return &EventHandlers{
		botID:        botID,
		voiceEvents:  voiceEvents,
		voiceChannel: voiceChannel,
		commands:     commands,
		autocomplete: autocomplete,
	}
}

// HandleVoiceServerUpdate forwards voice server updates to the audio backend.
func (h *EventHandlers) HandleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	h.voiceEvents.OnVoiceServerUpdate(event)
}

// HandleVoiceStateUpdate forwards the bot's own voice state to the audio backend
// and to the session lifecycle.
func (h *EventHandlers) HandleVoiceStateUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	// Only handle updates for the bot itself
	if event.UserID != h.botID.String() {
		return
	}

	h.voiceEvents.OnVoiceStateUpdate(event)

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	// Parse the channel ID - nil means disconnected
	var newChannelID *snowflake.ID
	if event.ChannelID != "" {
		id, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("failed to parse channel ID in voice state update", "error", err)
			return
		}
		newChannelID = &id
	}

	err = h.voiceChannel.HandleBotVoiceStateChange(context.Background(), usecases.BotVoiceStateChangeInput{
		GuildID:      guildID,
		NewChannelID: newChannelID,
	})
	if err != nil {
		slog.Error("failed to handle bot voice state change", "guild", guildID, "error", err)
	}
}

// HandleInteractionCreate routes autocomplete and component interactions.
// Slash commands are routed by the bot host.
func (h *EventHandlers) HandleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.handleInteraction(s, i, bot.NewDiscordResponder(s, i.Interaction))
}

func (h *EventHandlers) handleInteraction(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) {
	var err error

	switch i.Type {
	case discordgo.InteractionApplicationCommandAutocomplete:
		if i.ApplicationCommandData().Name != CommandPlay {
			return
		}
		err = h.autocomplete.HandlePlay(s, i, r)
	case discordgo.InteractionMessageComponent:
		if !strings.HasPrefix(i.MessageComponentData().CustomID, QueuePagePrefix) {
			return
		}
		err = h.commands.HandleQueuePage(s, i, r)
	default:
		return
	}

	if err != nil {
		slog.Warn("failed to respond to interaction", "type", i.Type.String(), "error", err)
	}
}
