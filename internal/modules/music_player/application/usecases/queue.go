package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/events"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

const DefaultPageSize = 10

// QueueListInput contains the input for the QueueList use case.
type QueueListInput struct {
	GuildID snowflake.ID
	Page    int // 1-indexed page number; 0 selects the page holding the current track
}

// QueueListOutput contains the result of the QueueList use case.
type QueueListOutput struct {
	Page domain.QueuePage
}

// QueueService renders a guild's queue.
type QueueService struct {
	repo       domain.SessionRepository
	dispatcher *events.GuildDispatcher
	pageSize   int
	now        Clock
}

// NewQueueService creates a new QueueService. A non-positive pageSize uses DefaultPageSize.
func NewQueueService(
	repo domain.SessionRepository,
	dispatcher *events.GuildDispatcher,
	pageSize int,
	clock Clock,
) *QueueService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if clock == nil {
		clock = time.Now
	}
	return &QueueService{
		repo:       repo,
		dispatcher: dispatcher,
		pageSize:   pageSize,
		now:        clock,
	}
}

// List returns one page of the queue. The snapshot is taken on the guild's dispatcher;
// rendering happens after it so the session is never shared.
func (q *QueueService) List(ctx context.Context, input QueueListInput) (*QueueListOutput, error) {
	if input.Page < 0 {
		return nil, ErrInvalidPage
	}

	var (
		queue      domain.Queue
		nowPlaying domain.NowPlaying
	)
	err := q.dispatcher.Do(ctx, input.GuildID, func(ctx context.Context) error {
		session, err := q.repo.Get(ctx, input.GuildID)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return ErrNotConnected
			}
			return err
		}
		queue, nowPlaying = session.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}

	pageIndex := input.Page - 1
	if input.Page == 0 {
		pageIndex = domain.DefaultPageIndex(queue, nowPlaying, q.pageSize)
	}
	if pageIndex >= domain.TotalPages(queue.Len(), q.pageSize) {
		return nil, ErrInvalidPage
	}

	return &QueueListOutput{
		Page: domain.RenderQueuePage(queue, nowPlaying, pageIndex, q.pageSize, q.now()),
	}, nil
}
