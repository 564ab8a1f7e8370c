package music_player

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/sglre6355/sgrmusic/internal/bot"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/events"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/presentation/discord"
)

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*MusicPlayerModule)(nil)

var errNoSession = errors.New("music_player module requires an open Discord session")

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config          *Config
	commandHandlers *discord.CommandHandlers
	eventHandlers   *discord.EventHandlers

	lavalinkAdapter *infrastructure.LavalinkAdapter
	redisClient     *redislib.Client

	// Event-driven components
	eventBus            *infrastructure.ChannelEventBus
	dispatcher          *events.GuildDispatcher
	playbackHandler     *application.PlaybackEventHandler
	notificationHandler *application.NotificationEventHandler
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	if m.commandHandlers == nil {
		return nil
	}
	return m.commandHandlers.Handlers()
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	if m.eventHandlers == nil {
		return nil
	}
	return []bot.EventHandler{
		m.eventHandlers.HandleVoiceServerUpdate,
		m.eventHandlers.HandleVoiceStateUpdate,
		m.eventHandlers.HandleInteractionCreate,
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init wires the module against an open Discord session.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil || deps.Session.State == nil || deps.Session.State.User == nil {
		return errNoSession
	}
	if m.config == nil {
		if err := m.LoadConfig(); err != nil {
			return err
		}
	}

	ctx := deps.Context
	if ctx == nil {
		ctx = context.Background()
	}
	session := deps.Session

	// Event bus first: the Lavalink adapter publishes track ends on it.
	m.eventBus = infrastructure.NewChannelEventBus(infrastructure.DefaultEventBufferSize)
	m.dispatcher = events.NewGuildDispatcher(events.DefaultMailboxSize)

	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(ctx, session, infrastructure.LavalinkConfig{
		Address:  m.config.LavalinkAddress,
		Password: m.config.LavalinkPassword,
		Secure:   m.config.LavalinkSecure,
	})
	if err != nil {
		return err
	}
	lavalinkAdapter.SetPublisher(m.eventBus)
	m.lavalinkAdapter = lavalinkAdapter

	trackResolver := m.newTrackResolver(ctx)
	externals := m.newExternalResolvers(ctx)

	// Create infrastructure
	repo := infrastructure.NewMemoryRepository()
	voiceState := infrastructure.NewVoiceStateProvider(session)
	userInfo := infrastructure.NewDiscordUserInfoProvider(session)
	notifier := infrastructure.NewNotifier(session)
	presence := infrastructure.NewDiscordPresence(session)

	// Create services
	trackLoader := usecases.NewTrackLoaderService(trackResolver, nil, externals...)
	voiceChannel := usecases.NewVoiceChannelService(
		repo,
		m.dispatcher,
		lavalinkAdapter,
		voiceState,
		m.eventBus,
	)
	playback := usecases.NewPlaybackService(repo, m.dispatcher, lavalinkAdapter, m.eventBus, nil)
	queue := usecases.NewQueueService(repo, m.dispatcher, m.config.QueuePageSize, nil)
	notificationChannel := usecases.NewNotificationChannelService(repo, m.dispatcher)

	// Create application event handlers
	m.playbackHandler = application.NewPlaybackEventHandler(playback, m.eventBus)
	m.notificationHandler = application.NewNotificationEventHandler(
		m.eventBus,
		notifier,
		presence,
		userInfo,
	)

	if err := m.playbackHandler.Start(); err != nil {
		return err
	}
	if err := m.notificationHandler.Start(); err != nil {
		return err
	}

	// Create presentation handlers
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return err
	}
	m.commandHandlers = discord.NewCommandHandlers(
		voiceChannel,
		playback,
		queue,
		trackLoader,
		notificationChannel,
		m.config.ResolveTimeout,
	)
	m.eventHandlers = discord.NewEventHandlers(
		botID,
		lavalinkAdapter,
		voiceChannel,
		m.commandHandlers,
		discord.NewAutocompleteHandler(trackLoader),
	)

	slog.Info("music_player module initialized",
		"spotify", m.config.SpotifyEnabled(),
		"track_cache", m.redisClient != nil,
	)

	return nil
}

// newTrackResolver returns the Lavalink resolver, behind the Redis cache when one is reachable.
func (m *MusicPlayerModule) newTrackResolver(ctx context.Context) ports.TrackResolver {
	if !m.config.TrackCacheEnabled() {
		return m.lavalinkAdapter
	}

	client, err := infrastructure.NewRedisClient(ctx, infrastructure.RedisConfig{
		Address:  m.config.RedisAddress,
		Password: m.config.RedisPassword,
		DB:       m.config.RedisDB,
	})
	if err != nil {
		slog.Warn("track cache disabled", "error", err)
		return m.lavalinkAdapter
	}
	m.redisClient = client

	return infrastructure.NewCachedTrackResolver(m.lavalinkAdapter, client, m.config.TrackCacheTTL)
}

func (m *MusicPlayerModule) newExternalResolvers(ctx context.Context) []ports.ExternalTrackResolver {
	if !m.config.SpotifyEnabled() {
		return nil
	}
	return []ports.ExternalTrackResolver{
		infrastructure.NewSpotifyResolver(ctx, infrastructure.SpotifyConfig{
			ClientID:          m.config.SpotifyClientID,
			ClientSecret:      m.config.SpotifyClientSecret,
			MaxTracks:         m.config.SpotifyMaxTracks,
			RequestsPerSecond: m.config.SpotifyRequestsPerSecond,
		}),
	}
}

// Shutdown cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	// Stop the source of track-end events first
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Close()
	}

	if m.eventBus != nil {
		m.eventBus.Close()
	}

	// Track ends already handed off still need the dispatcher
	if m.playbackHandler != nil {
		m.playbackHandler.Wait()
	}

	if m.dispatcher != nil {
		m.dispatcher.Close()
	}

	if m.redisClient != nil {
		return m.redisClient.Close()
	}

	return nil
}
