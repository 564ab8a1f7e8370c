package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/bot"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/usecases"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

// DefaultResolveTimeout bounds how long /play waits for track resolution.
const DefaultResolveTimeout = 10 * time.Second

// Messages shown for errors that are not the user's fault.
const (
	messageUnavailable = "The music service is unavailable right now. Please try again later."
	messageInternal    = "An error occurred while processing your command."
)

var errNotInGuild = errors.New("interaction outside a guild")

// VoiceChannelUseCase creates and discards sessions.
type VoiceChannelUseCase interface {
	Join(ctx context.Context, input usecases.JoinInput) (*usecases.JoinOutput, error)
	EnsureConnected(ctx context.Context, input usecases.JoinInput) (*usecases.JoinOutput, error)
	Leave(ctx context.Context, input usecases.LeaveInput) error
}

// PlaybackUseCase drives playback.
type PlaybackUseCase interface {
	PlayRequested(
		ctx context.Context,
		input usecases.PlayRequestedInput,
	) (*usecases.PlayRequestedOutput, error)
	Pause(ctx context.Context, input usecases.PauseInput) error
	Resume(ctx context.Context, input usecases.ResumeInput) error
	Skip(ctx context.Context, input usecases.SkipInput) (*usecases.SkipOutput, error)
}

// QueueUseCase renders queue pages.
type QueueUseCase interface {
	List(ctx context.Context, input usecases.QueueListInput) (*usecases.QueueListOutput, error)
}

// TrackLoaderUseCase resolves and searches tracks.
type TrackLoaderUseCase interface {
	Resolve(ctx context.Context, input usecases.ResolveInput) (*usecases.ResolveOutput, error)
	SearchTracks(
		ctx context.Context,
		input usecases.SearchTracksInput,
	) (*usecases.SearchTracksOutput, error)
}

// NotificationChannelUseCase moves a session's notification channel.
type NotificationChannelUseCase interface {
	Set(ctx context.Context, input usecases.SetNotificationChannelInput) error
}

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	voiceChannel        VoiceChannelUseCase
	playback            PlaybackUseCase
	queue               QueueUseCase
	trackLoader         TrackLoaderUseCase
	notificationChannel NotificationChannelUseCase
	resolveTimeout      time.Duration
}

// NewCommandHandlers creates new CommandHandlers.
// A non-positive resolveTimeout uses DefaultResolveTimeout.
func NewCommandHandlers(
	voiceChannel VoiceChannelUseCase,
	playback PlaybackUseCase,
	queue QueueUseCase,
	trackLoader TrackLoaderUseCase,
	notificationChannel NotificationChannelUseCase,
	resolveTimeout time.Duration,
) *CommandHandlers {
	if resolveTimeout <= 0 {
		resolveTimeout = DefaultResolveTimeout
	}
	return &CommandHandlers{
		voiceChannel:        voiceChannel,
		playback:            playback,
		queue:               queue,
		trackLoader:         trackLoader,
		notificationChannel: notificationChannel,
		resolveTimeout:      resolveTimeout,
	}
}

// Handlers returns the command name to handler mapping.
func (h *CommandHandlers) Handlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		CommandConnect:    h.HandleConnect,
		CommandDisconnect: h.HandleDisconnect,
		CommandPlay:       h.HandlePlay,
		CommandPause:      h.HandlePause,
		CommandResume:     h.HandleResume,
		CommandSkip:       h.HandleSkip,
		CommandQueue:      h.HandleQueue,
	}
}

// interactionContext holds the IDs every command needs.
type interactionContext struct {
	guildID   snowflake.ID
	userID    snowflake.ID
	channelID snowflake.ID
}

func parseInteraction(i *discordgo.InteractionCreate) (interactionContext, error) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return interactionContext{}, errNotInGuild
	}

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return interactionContext{}, fmt.Errorf("invalid guild ID: %w", err)
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return interactionContext{}, fmt.Errorf("invalid user ID: %w", err)
	}
	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return interactionContext{}, fmt.Errorf("invalid channel ID: %w", err)
	}

	return interactionContext{guildID: guildID, userID: userID, channelID: channelID}, nil
}

// HandleConnect handles the /connect command.
func (h *CommandHandlers) HandleConnect(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ic, err := parseInteraction(i)
	if err != nil {
		return respondError(r, "This command can only be used in a server.")
	}

	var voiceChannelID snowflake.ID
	if opt := findOption(i.ApplicationCommandData().Options, "channel"); opt != nil {
		voiceChannelID, err = optionID(opt)
		if err != nil {
			return respondError(r, "Invalid voice channel.")
		}
	}

	output, err := h.voiceChannel.Join(ctx, usecases.JoinInput{
		GuildID:               ic.guildID,
		UserID:                ic.userID,
		NotificationChannelID: ic.channelID,
		VoiceChannelID:        voiceChannelID,
	})
	if err != nil {
		return respondFailure(r, CommandConnect, err)
	}

	description := fmt.Sprintf("Connected to <#%d>.", output.VoiceChannelID)
	if output.AlreadyJoined {
		description = fmt.Sprintf("Already connected to <#%d>.", output.VoiceChannelID)
	}

	return respondSuccess(r, description)
}

// HandleDisconnect handles the /disconnect command.
func (h *CommandHandlers) HandleDisconnect(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ic, err := parseInteraction(i)
	if err != nil {
		return respondError(r, "This command can only be used in a server.")
	}

	if err := h.voiceChannel.Leave(ctx, usecases.LeaveInput{GuildID: ic.guildID}); err != nil {
		return respondFailure(r, CommandDisconnect, err)
	}

	return respondSuccess(r, "Disconnected.")
}

// HandlePlay handles the /play command.
// Resolution can outlast the interaction deadline, so the response is deferred and edited.
func (h *CommandHandlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ic, err := parseInteraction(i)
	if err != nil {
		return respondError(r, "This command can only be used in a server.")
	}

	var query string
	if opt := findOption(i.ApplicationCommandData().Options, "query"); opt != nil {
		query = opt.StringValue()
	}

	if err := r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		return err
	}

	resolveCtx, cancel := context.WithTimeout(ctx, h.resolveTimeout)
	resolved, err := h.trackLoader.Resolve(resolveCtx, usecases.ResolveInput{
		Query:       query,
		RequesterID: ic.userID,
	})
	cancel()
	if err != nil {
		return editFailure(r, CommandPlay, err)
	}

	if _, err := h.voiceChannel.EnsureConnected(ctx, usecases.JoinInput{
		GuildID:               ic.guildID,
		UserID:                ic.userID,
		NotificationChannelID: ic.channelID,
	}); err != nil {
		return editFailure(r, CommandPlay, err)
	}

	if _, err := h.playback.PlayRequested(ctx, usecases.PlayRequestedInput{
		GuildID: ic.guildID,
		Tracks:  resolved.Tracks,
	}); err != nil {
		return editFailure(r, CommandPlay, err)
	}

	var description string
	if resolved.CollectionName != "" {
		description = fmt.Sprintf(
			"Added **%d tracks** from **%s** to the queue.",
			len(resolved.Tracks),
			resolved.CollectionName,
		)
	} else {
		description = fmt.Sprintf("Added %s to the queue.", trackLink(resolved.Tracks[0]))
	}

	return editEmbed(r, &discordgo.MessageEmbed{
		Description: description,
		Color:       colorSuccess,
	})
}

// HandlePause handles the /pause command.
func (h *CommandHandlers) HandlePause(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ic, err := parseInteraction(i)
	if err != nil {
		return respondError(r, "This command can only be used in a server.")
	}
	h.refreshNotificationChannel(ctx, ic)

	if err := h.playback.Pause(ctx, usecases.PauseInput{GuildID: ic.guildID}); err != nil {
		return respondFailure(r, CommandPause, err)
	}

	return respondSuccess(r, "Paused playback.")
}

// HandleResume handles the /resume command.
func (h *CommandHandlers) HandleResume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ic, err := parseInteraction(i)
	if err != nil {
		return respondError(r, "This command can only be used in a server.")
	}
	h.refreshNotificationChannel(ctx, ic)

	if err := h.playback.Resume(ctx, usecases.ResumeInput{GuildID: ic.guildID}); err != nil {
		return respondFailure(r, CommandResume, err)
	}

	return respondSuccess(r, "Resumed playback.")
}

// HandleSkip handles the /skip command.
// The next track's "Now Playing" message is sent once the audio layer reports the stop.
func (h *CommandHandlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ic, err := parseInteraction(i)
	if err != nil {
		return respondError(r, "This command can only be used in a server.")
	}
	h.refreshNotificationChannel(ctx, ic)

	output, err := h.playback.Skip(ctx, usecases.SkipInput{GuildID: ic.guildID})
	if err != nil {
		return respondFailure(r, CommandSkip, err)
	}

	return respondSuccess(r, fmt.Sprintf("Skipped %s.", trackLink(output.SkippedTrack)))
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ic, err := parseInteraction(i)
	if err != nil {
		return respondError(r, "This command can only be used in a server.")
	}
	h.refreshNotificationChannel(ctx, ic)

	// 0 lets the service pick the page holding the current track
	var page int
	if opt := findOption(i.ApplicationCommandData().Options, "page"); opt != nil {
		page = int(opt.IntValue())
	}

	output, err := h.queue.List(ctx, usecases.QueueListInput{GuildID: ic.guildID, Page: page})
	if err != nil {
		return respondFailure(r, CommandQueue, err)
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{queueEmbed(output.Page)},
			Components: queueComponents(output.Page),
		},
	})
}

// refreshNotificationChannel moves notifications to where the user issued the command.
func (h *CommandHandlers) refreshNotificationChannel(ctx context.Context, ic interactionContext) {
	// Best effort: commands on a guild without a session still report their own error.
	_ = h.notificationChannel.Set(ctx, usecases.SetNotificationChannelInput{
		GuildID:   ic.guildID,
		ChannelID: ic.channelID,
	})
}

// Option helpers.

func findOption(
	options []*discordgo.ApplicationCommandInteractionDataOption,
	name string,
) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range options {
		if opt.Name == name {
			return opt
		}
	}
	return nil
}

// optionID reads a channel, user or role option without a session lookup.
func optionID(opt *discordgo.ApplicationCommandInteractionDataOption) (snowflake.ID, error) {
	value, ok := opt.Value.(string)
	if !ok {
		return 0, fmt.Errorf("option %s is not an ID", opt.Name)
	}
	return snowflake.Parse(value)
}

// Response helpers.

func respondSuccess(r bot.Responder, description string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: description,
					Color:       colorSuccess,
				},
			},
		},
	})
}

func respondError(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{errorEmbed(message)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func respondFailure(r bot.Responder, command string, err error) error {
	return respondError(r, failureMessage(command, err))
}

func editFailure(r bot.Responder, command string, err error) error {
	return editEmbed(r, errorEmbed(failureMessage(command, err)))
}

func editEmbed(r bot.Responder, embed *discordgo.MessageEmbed) error {
	return r.Edit(&discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
}

func errorEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Error",
		Description: message,
		Color:       colorError,
	}
}

// failureMessage maps an error to what the user sees. Only user input errors are shown verbatim.
func failureMessage(command string, err error) string {
	switch usecases.ClassifyError(err) {
	case usecases.ErrorKindUserInput:
		return sentence(err.Error())
	case usecases.ErrorKindServiceUnavailable:
		slog.Warn("command failed on an external service", "command", command, "error", err)
		return messageUnavailable
	default:
		slog.Error("failed to handle command", "command", command, "error", err)
		return messageInternal
	}
}

func sentence(message string) string {
	if message == "" {
		return message
	}
	return strings.ToUpper(message[:1]) + message[1:] + "."
}

// trackLink renders a track title, linked when it has a URI.
func trackLink(track usecases.Track) string {
	if track.URI != "" {
		return fmt.Sprintf("[%s](%s)", track.Title, track.URI)
	}
	return fmt.Sprintf("**%s**", track.Title)
}
