package usecases

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/events"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// PlayRequestedInput contains the input for the PlayRequested use case.
type PlayRequestedInput struct {
	GuildID snowflake.ID
	Tracks  []domain.Track
}

// PlayRequestedOutput contains the result of the PlayRequested use case.
type PlayRequestedOutput struct {
	Started *domain.Track // nil if something was already playing
	Queued  int
}

// TrackFinishedInput contains the input for the TrackFinished use case.
type TrackFinishedInput struct {
	GuildID snowflake.ID
	Reason  domain.TrackEndReason
}

// PauseInput contains the input for the Pause use case.
type PauseInput struct {
	GuildID snowflake.ID
}

// ResumeInput contains the input for the Resume use case.
type ResumeInput struct {
	GuildID snowflake.ID
}

// SkipInput contains the input for the Skip use case.
type SkipInput struct {
	GuildID snowflake.ID
}

// SkipOutput contains the result of the Skip use case.
type SkipOutput struct {
	SkippedTrack domain.Track
}

// PlaybackService drives each guild's now-playing state machine.
// Every transition runs on the guild's dispatcher.
type PlaybackService struct {
	repo        domain.SessionRepository
	dispatcher  *events.GuildDispatcher
	audioPlayer ports.AudioPlayer
	publisher   ports.EventPublisher
	now         Clock
}

// NewPlaybackService creates a new PlaybackService. A nil clock uses time.Now.
func NewPlaybackService(
	repo domain.SessionRepository,
	dispatcher *events.GuildDispatcher,
	audioPlayer ports.AudioPlayer,
	publisher ports.EventPublisher,
	clock Clock,
) *PlaybackService {
	if clock == nil {
		clock = time.Now
	}
	return &PlaybackService{
		repo:        repo,
		dispatcher:  dispatcher,
		audioPlayer: audioPlayer,
		publisher:   publisher,
		now:         clock,
	}
}

// PlayRequested enqueues tracks. If nothing is playing, the first pending track starts.
func (p *PlaybackService) PlayRequested(
	ctx context.Context,
	input PlayRequestedInput,
) (*PlayRequestedOutput, error) {
	if len(input.Tracks) == 0 {
		return nil, ErrNoResults
	}

	var output *PlayRequestedOutput
	err := p.dispatcher.Do(ctx, input.GuildID, func(ctx context.Context) error {
		session, err := p.session(ctx, input.GuildID)
		if err != nil {
			return err
		}

		session.Queue().Enqueue(input.Tracks...)
		output = &PlayRequestedOutput{Queued: len(input.Tracks)}

		if session.IsIdle() {
			if started, ok := p.startNext(ctx, session); ok {
				output.Started = &started
			}
		}

		return p.repo.Save(ctx, session)
	})
	return output, err
}

// TrackFinished handles the audio layer reporting the end of the current track.
// Playing moves to the next pending track, or to Idle when none remain.
func (p *PlaybackService) TrackFinished(ctx context.Context, input TrackFinishedInput) error {
	if !input.Reason.ShouldAdvanceQueue() {
		slog.Debug("track end does not advance queue",
			"guild", input.GuildID,
			"reason", input.Reason,
		)
		return nil
	}

	return p.dispatcher.Do(ctx, input.GuildID, func(ctx context.Context) error {
		session, err := p.repo.Get(ctx, input.GuildID)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return nil
			}
			return err
		}

		finished, ok := session.FinishCurrent()
		if !ok {
			return nil
		}
		p.publish(domain.PlaybackFinishedEvent{GuildID: input.GuildID, Track: finished})

		p.startNext(ctx, session)

		return p.repo.Save(ctx, session)
	})
}

// startNext starts pending tracks until one plays. A track the audio layer refuses is
// finished on the spot. When the queue runs dry the session stays idle.
// It must run on the guild's dispatcher.
func (p *PlaybackService) startNext(ctx context.Context, session *domain.Session) (domain.Track, bool) {
	guildID := session.GuildID()

	for {
		track, ok := session.StartNext(p.now())
		if !ok {
			p.publish(domain.PlayerIdleEvent{GuildID: guildID})
			return domain.Track{}, false
		}

		if err := p.audioPlayer.Play(ctx, guildID, track); err != nil {
			slog.Warn("failed to play track, skipping",
				"guild", guildID,
				"track", track.Title,
				"error", err,
			)
			session.FinishCurrent()
			continue
		}

		p.publish(domain.PlaybackStartedEvent{
			GuildID:               guildID,
			Track:                 track,
			NotificationChannelID: session.NotificationChannelID(),
		})
		return track, true
	}
}

// Pause pauses the current playback.
func (p *PlaybackService) Pause(ctx context.Context, input PauseInput) error {
	return p.dispatcher.Do(ctx, input.GuildID, func(ctx context.Context) error {
		session, err := p.session(ctx, input.GuildID)
		if err != nil {
			return err
		}

		nowPlaying := session.NowPlaying()
		if nowPlaying.IsIdle() {
			return ErrNotPlaying
		}
		if nowPlaying.IsPaused() {
			return ErrAlreadyPaused
		}

		if err := p.audioPlayer.Pause(ctx, input.GuildID); err != nil {
			return wrapService(ErrServiceUnavailable, err)
		}

		nowPlaying.Pause(p.now())
		return p.repo.Save(ctx, session)
	})
}

// Resume resumes the paused playback.
func (p *PlaybackService) Resume(ctx context.Context, input ResumeInput) error {
	return p.dispatcher.Do(ctx, input.GuildID, func(ctx context.Context) error {
		session, err := p.session(ctx, input.GuildID)
		if err != nil {
			return err
		}

		nowPlaying := session.NowPlaying()
		if nowPlaying.IsIdle() {
			return ErrNotPlaying
		}
		if !nowPlaying.IsPaused() {
			return ErrNotPaused
		}

		if err := p.audioPlayer.Resume(ctx, input.GuildID); err != nil {
			return wrapService(ErrServiceUnavailable, err)
		}

		nowPlaying.Resume(p.now())
		return p.repo.Save(ctx, session)
	})
}

// Skip stops the current track. The audio layer then reports a stopped track end,
// which advances the queue through TrackFinished.
func (p *PlaybackService) Skip(ctx context.Context, input SkipInput) (*SkipOutput, error) {
	var output *SkipOutput
	err := p.dispatcher.Do(ctx, input.GuildID, func(ctx context.Context) error {
		session, err := p.session(ctx, input.GuildID)
		if err != nil {
			return err
		}

		current, ok := session.NowPlaying().Current()
		if !ok {
			return ErrNotPlaying
		}

		if err := p.audioPlayer.Stop(ctx, input.GuildID); err != nil {
			return wrapService(ErrServiceUnavailable, err)
		}

		output = &SkipOutput{SkippedTrack: current}
		return nil
	})
	return output, err
}

// session loads the guild's session, mapping a missing one to ErrNotConnected.
func (p *PlaybackService) session(ctx context.Context, guildID snowflake.ID) (*domain.Session, error) {
	session, err := p.repo.Get(ctx, guildID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, ErrNotConnected
		}
		return nil, err
	}
	return session, nil
}

func (p *PlaybackService) publish(event domain.Event) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(event); err != nil {
		slog.Warn("failed to publish event", "event", event, "error", err)
	}
}
