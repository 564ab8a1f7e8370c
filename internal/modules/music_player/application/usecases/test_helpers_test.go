package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/events"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

var testNow = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() Clock {
	return func() time.Time { return testNow }
}

func mockTrack(id string) domain.Track {
	return domain.Track{
		ID:          domain.TrackID(id),
		Query:       "ytsearch:" + id,
		Encoded:     "encoded-" + id,
		Title:       "Track " + id,
		Artist:      "Artist",
		Duration:    3 * time.Minute,
		RequesterID: snowflake.ID(123),
	}
}

func newTestDispatcher(t *testing.T) *events.GuildDispatcher {
	t.Helper()
	d := events.NewGuildDispatcher(0)
	t.Cleanup(d.Close)
	return d
}

type mockRepository struct {
	sessions map[snowflake.ID]*domain.Session
	deleted  []snowflake.ID
	getErr   error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		sessions: make(map[snowflake.ID]*domain.Session),
	}
}

func (m *mockRepository) Get(_ context.Context, guildID snowflake.ID) (*domain.Session, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	session, ok := m.sessions[guildID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (m *mockRepository) Save(_ context.Context, session *domain.Session) error {
	m.sessions[session.GuildID()] = session
	return nil
}

func (m *mockRepository) Delete(_ context.Context, guildID snowflake.ID) error {
	m.deleted = append(m.deleted, guildID)
	delete(m.sessions, guildID)
	return nil
}

// createConnectedSession creates a Session with the given IDs and saves it to the mock repository.
// Returns the session for further modification (e.g., adding tracks).
func (m *mockRepository) createConnectedSession(
	guildID, voiceChannelID, notificationChannelID snowflake.ID,
) *domain.Session {
	session := domain.NewSession(guildID, voiceChannelID, notificationChannelID)
	m.sessions[guildID] = session
	return session
}

type mockAudioPlayer struct {
	playErr   error
	stopErr   error
	pauseErr  error
	resumeErr error

	// failing lists track IDs whose Play call fails.
	failing map[domain.TrackID]bool

	played  []domain.Track
	stopped int
	// paused mirrors the transport's player-level paused flag.
	paused bool
}

func (m *mockAudioPlayer) Play(_ context.Context, _ snowflake.ID, track domain.Track) error {
	if m.playErr != nil {
		return m.playErr
	}
	if m.failing[track.ID] {
		return errTestPlayFailed
	}
	m.played = append(m.played, track)
	m.paused = false
	return nil
}

func (m *mockAudioPlayer) Stop(_ context.Context, _ snowflake.ID) error {
	if m.stopErr != nil {
		return m.stopErr
	}
	m.stopped++
	return nil
}

func (m *mockAudioPlayer) Pause(_ context.Context, _ snowflake.ID) error {
	if m.pauseErr != nil {
		return m.pauseErr
	}
	m.paused = true
	return nil
}

func (m *mockAudioPlayer) Resume(_ context.Context, _ snowflake.ID) error {
	if m.resumeErr != nil {
		return m.resumeErr
	}
	m.paused = false
	return nil
}

type mockVoiceConnection struct {
	joinErr  error
	leaveErr error

	joined []snowflake.ID
	left   int
}

func (m *mockVoiceConnection) JoinChannel(_ context.Context, _, channelID snowflake.ID) error {
	if m.joinErr != nil {
		return m.joinErr
	}
	m.joined = append(m.joined, channelID)
	return nil
}

func (m *mockVoiceConnection) LeaveChannel(_ context.Context, _ snowflake.ID) error {
	if m.leaveErr != nil {
		return m.leaveErr
	}
	m.left++
	return nil
}

type mockTrackResolver struct {
	loadErr    error
	loadResult *ports.LoadResult
	queries    []string
}

func (m *mockTrackResolver) LoadTracks(_ context.Context, query string) (*ports.LoadResult, error) {
	m.queries = append(m.queries, query)
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.loadResult, nil
}

type mockExternalResolver struct {
	prefix  string
	result  *ports.LoadResult
	err     error
	queries []string
}

func (m *mockExternalResolver) CanResolve(input string) bool {
	return len(input) >= len(m.prefix) && input[:len(m.prefix)] == m.prefix
}

func (m *mockExternalResolver) Resolve(_ context.Context, input string) (*ports.LoadResult, error) {
	m.queries = append(m.queries, input)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	err      error
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(
	guildID, userID snowflake.ID,
) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

type mockEventPublisher struct {
	events []domain.Event
}

func (m *mockEventPublisher) Publish(event domain.Event) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventPublisher) started() []domain.PlaybackStartedEvent {
	return eventsOf[domain.PlaybackStartedEvent](m.events)
}

func (m *mockEventPublisher) finished() []domain.PlaybackFinishedEvent {
	return eventsOf[domain.PlaybackFinishedEvent](m.events)
}

func (m *mockEventPublisher) idle() []domain.PlayerIdleEvent {
	return eventsOf[domain.PlayerIdleEvent](m.events)
}

func (m *mockEventPublisher) closed() []domain.SessionClosedEvent {
	return eventsOf[domain.SessionClosedEvent](m.events)
}

func eventsOf[T domain.Event](all []domain.Event) []T {
	var out []T
	for _, e := range all {
		if typed, ok := e.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

type testError string

func (e testError) Error() string { return string(e) }

const errTestPlayFailed = testError("play failed")
