package discord

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/bot"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/usecases"
)

const (
	testGuildID   = snowflake.ID(1)
	testChannelID = snowflake.ID(3)
	testUserID    = snowflake.ID(100)
)

func testInteraction(
	interactionType discordgo.InteractionType,
	data discordgo.InteractionData,
) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:      interactionType,
			GuildID:   testGuildID.String(),
			ChannelID: testChannelID.String(),
			Member:    &discordgo.Member{User: &discordgo.User{ID: testUserID.String()}},
			Data:      data,
		},
	}
}

func commandInteraction(
	name string,
	options ...*discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.InteractionCreate {
	return testInteraction(
		discordgo.InteractionApplicationCommand,
		discordgo.ApplicationCommandInteractionData{Name: name, Options: options},
	)
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func intOption(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionInteger,
		Value: float64(value),
	}
}

// responseEmbed returns the single embed of the last response.
func responseEmbed(t *testing.T, r *bot.MockResponder) *discordgo.MessageEmbed {
	t.Helper()
	response := r.LastResponse()
	if response == nil || response.Data == nil || len(response.Data.Embeds) != 1 {
		t.Fatalf("expected one embed in response, got %+v", response)
	}
	return response.Data.Embeds[0]
}

// editEmbedOf returns the single embed of the last edit.
func editEmbedOf(t *testing.T, r *bot.MockResponder) *discordgo.MessageEmbed {
	t.Helper()
	edit := r.LastEdit()
	if edit == nil || edit.Embeds == nil || len(*edit.Embeds) != 1 {
		t.Fatalf("expected one embed in edit, got %+v", edit)
	}
	return (*edit.Embeds)[0]
}

type fakeVoiceChannel struct {
	joinOutput *usecases.JoinOutput
	joinErr    error
	ensureErr  error
	leaveErr   error

	joined  []usecases.JoinInput
	ensured []usecases.JoinInput
	left    int
}

func (f *fakeVoiceChannel) Join(_ context.Context, input usecases.JoinInput) (*usecases.JoinOutput, error) {
	f.joined = append(f.joined, input)
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	return f.joinOutput, nil
}

func (f *fakeVoiceChannel) EnsureConnected(
	_ context.Context,
	input usecases.JoinInput,
) (*usecases.JoinOutput, error) {
	f.ensured = append(f.ensured, input)
	if f.ensureErr != nil {
		return nil, f.ensureErr
	}
	return &usecases.JoinOutput{VoiceChannelID: 4}, nil
}

func (f *fakeVoiceChannel) Leave(context.Context, usecases.LeaveInput) error {
	f.left++
	return f.leaveErr
}

type fakePlayback struct {
	playErr   error
	pauseErr  error
	resumeErr error
	skipErr   error
	skipped   usecases.Track

	requested []usecases.PlayRequestedInput
}

func (f *fakePlayback) PlayRequested(
	_ context.Context,
	input usecases.PlayRequestedInput,
) (*usecases.PlayRequestedOutput, error) {
	f.requested = append(f.requested, input)
	if f.playErr != nil {
		return nil, f.playErr
	}
	return &usecases.PlayRequestedOutput{Queued: len(input.Tracks)}, nil
}

func (f *fakePlayback) Pause(context.Context, usecases.PauseInput) error {
	return f.pauseErr
}

func (f *fakePlayback) Resume(context.Context, usecases.ResumeInput) error {
	return f.resumeErr
}

func (f *fakePlayback) Skip(context.Context, usecases.SkipInput) (*usecases.SkipOutput, error) {
	if f.skipErr != nil {
		return nil, f.skipErr
	}
	return &usecases.SkipOutput{SkippedTrack: f.skipped}, nil
}

type fakeQueue struct {
	output *usecases.QueueListOutput
	err    error
	inputs []usecases.QueueListInput
}

func (f *fakeQueue) List(_ context.Context, input usecases.QueueListInput) (*usecases.QueueListOutput, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

type fakeTrackLoader struct {
	resolved   *usecases.ResolveOutput
	resolveErr error
	search     *usecases.SearchTracksOutput
	searchErr  error

	resolveInputs []usecases.ResolveInput
	searchInputs  []usecases.SearchTracksInput
}

func (f *fakeTrackLoader) Resolve(
	ctx context.Context,
	input usecases.ResolveInput,
) (*usecases.ResolveOutput, error) {
	f.resolveInputs = append(f.resolveInputs, input)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errNoDeadline
	}
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return f.resolved, nil
}

func (f *fakeTrackLoader) SearchTracks(
	_ context.Context,
	input usecases.SearchTracksInput,
) (*usecases.SearchTracksOutput, error) {
	f.searchInputs = append(f.searchInputs, input)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.search, nil
}

type fakeNotificationChannel struct {
	sets []usecases.SetNotificationChannelInput
}

func (f *fakeNotificationChannel) Set(_ context.Context, input usecases.SetNotificationChannelInput) error {
	f.sets = append(f.sets, input)
	return usecases.ErrNotConnected
}

type testError string

func (e testError) Error() string { return string(e) }

const errNoDeadline = testError("resolution ran without a deadline")

type fakeVoiceEvents struct {
	states  []*discordgo.VoiceStateUpdate
	servers []*discordgo.VoiceServerUpdate
}

func (f *fakeVoiceEvents) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	f.states = append(f.states, event)
}

func (f *fakeVoiceEvents) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	f.servers = append(f.servers, event)
}

type fakeBotVoiceState struct {
	inputs []usecases.BotVoiceStateChangeInput
}

func (f *fakeBotVoiceState) HandleBotVoiceStateChange(
	_ context.Context,
	input usecases.BotVoiceStateChangeInput,
) error {
	f.inputs = append(f.inputs, input)
	return nil
}

type testHandlers struct {
	voiceChannel        *fakeVoiceChannel
	playback            *fakePlayback
	queue               *fakeQueue
	trackLoader         *fakeTrackLoader
	notificationChannel *fakeNotificationChannel
	handlers            *CommandHandlers
}

func newTestHandlers() *testHandlers {
	th := &testHandlers{
		voiceChannel:        &fakeVoiceChannel{},
		playback:            &fakePlayback{},
		queue:               &fakeQueue{},
		trackLoader:         &fakeTrackLoader{},
		notificationChannel: &fakeNotificationChannel{},
	}
	th.handlers = NewCommandHandlers(
		th.voiceChannel,
		th.playback,
		th.queue,
		th.trackLoader,
		th.notificationChannel,
		0,
	)
	return th
}
