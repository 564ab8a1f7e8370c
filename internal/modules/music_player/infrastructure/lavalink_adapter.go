package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/samber/lo"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// ErrNoNode is returned when no Lavalink node is available.
var ErrNoNode = errors.New("no available Lavalink node")

// LavalinkConfig contains Lavalink connection configuration.
type LavalinkConfig struct {
	Address  string
	Password string
	Secure   bool
}

// LavalinkAdapter wraps DisGoLink to implement the audio, voice and track resolution ports.
type LavalinkAdapter struct {
	link    disgolink.Client
	session *discordgo.Session
	botID   snowflake.ID

	handshakeMu sync.Mutex
	handshakes  map[snowflake.ID]*voiceHandshake

	publisherMu sync.RWMutex
	publisher   ports.EventPublisher
}

// NewLavalinkAdapter creates a new LavalinkAdapter and connects to the node.
// The Discord session must be open so the bot user is known.
func NewLavalinkAdapter(
	ctx context.Context,
	session *discordgo.Session,
	config LavalinkConfig,
) (*LavalinkAdapter, error) {
	if session.State == nil || session.State.User == nil {
		return nil, errors.New("discord session is not ready")
	}
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot ID: %w", err)
	}

	adapter := &LavalinkAdapter{
		session:    session,
		botID:      botID,
		handshakes: make(map[snowflake.ID]*voiceHandshake),
	}

	adapter.link = disgolink.New(botID,
		disgolink.WithListenerFunc(adapter.onTrackStart),
		disgolink.WithListenerFunc(adapter.onTrackEnd),
		disgolink.WithListenerFunc(adapter.onTrackException),
		disgolink.WithListenerFunc(adapter.onTrackStuck),
	)

	node, err := adapter.link.AddNode(ctx, disgolink.NodeConfig{
		Name:     "main",
		Address:  config.Address,
		Password: config.Password,
		Secure:   config.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address)

	return adapter, nil
}

// SetPublisher sets where track-end reports are published.
func (c *LavalinkAdapter) SetPublisher(publisher ports.EventPublisher) {
	c.publisherMu.Lock()
	defer c.publisherMu.Unlock()
	c.publisher = publisher
}

// Close disconnects from every node.
func (c *LavalinkAdapter) Close() {
	c.link.Close()
}

// Play starts a track. Deferred tracks are looked up by their query first.
func (c *LavalinkAdapter) Play(ctx context.Context, guildID snowflake.ID, track domain.Track) error {
	encoded := track.Encoded
	if encoded == "" {
		var err error
		encoded, err = c.lookupEncoded(ctx, track.Query)
		if err != nil {
			return fmt.Errorf("failed to resolve %q: %w", track.Query, err)
		}
	}

	if err := c.link.Player(guildID).Update(ctx, playUpdate(encoded)...); err != nil {
		return fmt.Errorf("failed to play track: %w", err)
	}
	return nil
}

// playUpdate starts encoded unpaused. The paused flag belongs to the Lavalink player
// and outlives the track, so a track started after a paused one would stay silent.
// WithEncodedTrack avoids the userData:null issue of WithTrack.
func playUpdate(encoded string) []lavalink.PlayerUpdateOpt {
	return []lavalink.PlayerUpdateOpt{
		lavalink.WithEncodedTrack(encoded),
		lavalink.WithPaused(false),
	}
}

func (c *LavalinkAdapter) lookupEncoded(ctx context.Context, query string) (string, error) {
	result, err := c.LoadTracks(ctx, query)
	if err != nil {
		return "", err
	}
	if result.IsEmpty() || result.Tracks[0].Encoded == "" {
		return "", errors.New("no playable match")
	}
	return result.Tracks[0].Encoded, nil
}

// Stop stops the current playback.
func (c *LavalinkAdapter) Stop(ctx context.Context, guildID snowflake.ID) error {
	if err := c.link.Player(guildID).Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}
	return nil
}

// Pause pauses the current playback.
func (c *LavalinkAdapter) Pause(ctx context.Context, guildID snowflake.ID) error {
	if err := c.link.Player(guildID).Update(ctx, lavalink.WithPaused(true)); err != nil {
		return fmt.Errorf("failed to pause playback: %w", err)
	}
	return nil
}

// Resume resumes the current playback.
func (c *LavalinkAdapter) Resume(ctx context.Context, guildID snowflake.ID) error {
	if err := c.link.Player(guildID).Update(ctx, lavalink.WithPaused(false)); err != nil {
		return fmt.Errorf("failed to resume playback: %w", err)
	}
	return nil
}

// LoadTracks loads tracks from Lavalink. A load exception is returned as an error.
func (c *LavalinkAdapter) LoadTracks(ctx context.Context, query string) (*ports.LoadResult, error) {
	node := c.link.BestNode()
	if node == nil {
		return nil, ErrNoNode
	}

	result, err := node.LoadTracks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}

	return convertLoadResult(result)
}

func convertLoadResult(result *lavalink.LoadResult) (*ports.LoadResult, error) {
	switch data := result.Data.(type) {
	case lavalink.Track:
		return &ports.LoadResult{Tracks: []domain.TrackCandidate{convertTrack(data)}}, nil

	case lavalink.Playlist:
		return &ports.LoadResult{
			Tracks:         convertTracks(data.Tracks),
			CollectionName: data.Info.Name,
		}, nil

	case lavalink.Search:
		return &ports.LoadResult{Tracks: convertTracks(data), IsSearch: true}, nil

	case lavalink.Exception:
		return nil, fmt.Errorf("lavalink %s exception: %s", data.Severity, data.Message)

	default:
		return &ports.LoadResult{}, nil
	}
}

func convertTracks(tracks []lavalink.Track) []domain.TrackCandidate {
	return lo.Map(tracks, func(track lavalink.Track, _ int) domain.TrackCandidate {
		return convertTrack(track)
	})
}

func convertTrack(track lavalink.Track) domain.TrackCandidate {
	info := track.Info
	uri := lo.FromPtr(info.URI)

	query := uri
	if query == "" {
		query = domain.SearchFor(info.Author, info.Title)
	}

	return domain.TrackCandidate{
		Query:      query,
		Encoded:    track.Encoded,
		Title:      info.Title,
		Artist:     info.Author,
		Duration:   time.Duration(info.Length) * time.Millisecond,
		URI:        uri,
		ArtworkURL: lo.FromPtr(info.ArtworkURL),
		SourceName: info.SourceName,
		IsStream:   info.IsStream,
	}
}

func (c *LavalinkAdapter) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild", player.GuildID(), "track", event.Track.Info.Title)
}

func (c *LavalinkAdapter) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	slog.Debug("track ended", "guild", player.GuildID(), "reason", event.Reason)

	c.publisherMu.RLock()
	publisher := c.publisher
	c.publisherMu.RUnlock()
	if publisher == nil {
		return
	}

	ended := domain.TrackEndedEvent{
		GuildID: player.GuildID(),
		Reason:  convertEndReason(event.Reason),
	}
	if err := publisher.Publish(ended); err != nil {
		slog.Error("failed to publish track end", "event", ended, "error", err)
	}
}

func (c *LavalinkAdapter) onTrackException(
	player disgolink.Player,
	event lavalink.TrackExceptionEvent,
) {
	slog.Warn("track exception", "guild", player.GuildID(), "error", event.Exception.Message)
}

func (c *LavalinkAdapter) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("track stuck", "guild", player.GuildID(), "threshold", event.Threshold)
}

func convertEndReason(reason lavalink.TrackEndReason) domain.TrackEndReason {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return domain.TrackEndFinished
	case lavalink.TrackEndReasonLoadFailed:
		return domain.TrackEndLoadFailed
	case lavalink.TrackEndReasonStopped:
		return domain.TrackEndStopped
	case lavalink.TrackEndReasonReplaced:
		return domain.TrackEndReplaced
	case lavalink.TrackEndReasonCleanup:
		return domain.TrackEndCleanup
	default:
		return domain.TrackEndStopped
	}
}

// Ensure LavalinkAdapter implements port interfaces.
var (
	_ ports.AudioPlayer     = (*LavalinkAdapter)(nil)
	_ ports.VoiceConnection = (*LavalinkAdapter)(nil)
	_ ports.TrackResolver   = (*LavalinkAdapter)(nil)
)
