package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
)

// voiceConnectionTimeout is the maximum time to wait for voice connection to be established.
const voiceConnectionTimeout = 10 * time.Second

// voiceHandshake collects the two gateway events Lavalink needs for one guild.
// Discord may deliver them in either order; they are forwarded together once both arrived,
// which avoids "Partial Lavalink voice state" errors.
type voiceHandshake struct {
	mu sync.Mutex

	// From VoiceStateUpdate
	hasState  bool
	channelID *snowflake.ID
	sessionID string

	// From VoiceServerUpdate
	hasServer bool
	token     string
	endpoint  string

	waiters []chan struct{}
}

// voiceHandshakeData is one complete handshake, ready to forward.
type voiceHandshakeData struct {
	channelID *snowflake.ID
	sessionID string
	token     string
	endpoint  string
}

// setState records the voice state half. It returns the complete data once both halves are in.
func (h *voiceHandshake) setState(channelID *snowflake.ID, sessionID string) (voiceHandshakeData, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hasState = true
	h.channelID = channelID
	h.sessionID = sessionID
	return h.completeLocked()
}

// setServer records the voice server half. It returns the complete data once both halves are in.
func (h *voiceHandshake) setServer(token, endpoint string) (voiceHandshakeData, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hasServer = true
	h.token = token
	h.endpoint = endpoint
	return h.completeLocked()
}

// wait returns a channel closed when the next handshake completes.
func (h *voiceHandshake) wait() <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()

	ready := make(chan struct{})
	h.waiters = append(h.waiters, ready)
	return ready
}

func (h *voiceHandshake) completeLocked() (voiceHandshakeData, bool) {
	if !h.hasState || !h.hasServer {
		return voiceHandshakeData{}, false
	}

	data := voiceHandshakeData{
		channelID: h.channelID,
		sessionID: h.sessionID,
		token:     h.token,
		endpoint:  h.endpoint,
	}

	for _, ready := range h.waiters {
		close(ready)
	}
	h.reset()

	return data, true
}

// reset clears the collected halves and waiters. h.mu stays as is: callers hold it.
func (h *voiceHandshake) reset() {
	h.hasState, h.hasServer = false, false
	h.channelID = nil
	h.sessionID = ""
	h.token, h.endpoint = "", ""
	h.waiters = nil
}

func (c *LavalinkAdapter) handshake(guildID snowflake.ID) *voiceHandshake {
	c.handshakeMu.Lock()
	defer c.handshakeMu.Unlock()

	h, ok := c.handshakes[guildID]
	if !ok {
		h = &voiceHandshake{}
		c.handshakes[guildID] = h
	}
	return h
}

func (c *LavalinkAdapter) dropHandshake(guildID snowflake.ID) {
	c.handshakeMu.Lock()
	defer c.handshakeMu.Unlock()
	delete(c.handshakes, guildID)
}

// JoinChannel connects to a voice channel and waits until Lavalink has the voice session.
func (c *LavalinkAdapter) JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error {
	ready := c.handshake(guildID).wait()

	err := c.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, true)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	timer := time.NewTimer(voiceConnectionTimeout)
	defer timer.Stop()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for voice connection: %w", ctx.Err())
	case <-timer.C:
		return fmt.Errorf("timeout waiting for voice connection")
	}
}

// LeaveChannel destroys the guild's player and disconnects from voice.
func (c *LavalinkAdapter) LeaveChannel(ctx context.Context, guildID snowflake.ID) error {
	if player := c.link.ExistingPlayer(guildID); player != nil {
		if err := player.Destroy(ctx); err != nil {
			slog.Warn("failed to destroy player", "guild", guildID, "error", err)
		}
	}

	err := c.session.ChannelVoiceJoinManual(guildID.String(), "", false, false)
	if err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// OnVoiceServerUpdate handles Discord voice server updates.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	if data, ok := c.handshake(guildID).setServer(event.Token, event.Endpoint); ok {
		c.forwardHandshake(guildID, data)
	}
}

// OnVoiceStateUpdate handles Discord voice state updates for the bot itself.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	if event.UserID != c.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	// An empty channel means the bot left; no server update follows.
	if event.ChannelID == "" {
		c.link.OnVoiceStateUpdate(context.Background(), guildID, nil, event.SessionID)
		c.dropHandshake(guildID)
		return
	}

	channelID, err := snowflake.Parse(event.ChannelID)
	if err != nil {
		slog.Error("failed to parse channel ID in voice state update", "error", err)
		return
	}

	if data, ok := c.handshake(guildID).setState(&channelID, event.SessionID); ok {
		c.forwardHandshake(guildID, data)
	}
}

func (c *LavalinkAdapter) forwardHandshake(guildID snowflake.ID, data voiceHandshakeData) {
	slog.Debug("forwarding voice handshake to Lavalink",
		"guild", guildID,
		"channel", data.channelID,
		"hasSessionID", data.sessionID != "",
	)

	c.link.OnVoiceStateUpdate(context.Background(), guildID, data.channelID, data.sessionID)
	c.link.OnVoiceServerUpdate(context.Background(), guildID, data.token, data.endpoint)
}
