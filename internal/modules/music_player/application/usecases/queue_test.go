package usecases

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

func TestQueueService_List(t *testing.T) {
	tracks := func(n int) []domain.Track {
		out := make([]domain.Track, n)
		for i := range out {
			out[i] = mockTrack(fmt.Sprintf("t%d", i))
		}
		return out
	}

	tests := []struct {
		name          string
		page          int
		pageSize      int
		setupRepo     func(*mockRepository)
		wantErr       error
		wantPageIndex int
		wantRows      int
		wantTotal     int
	}{
		{
			name:    "not connected",
			page:    1,
			wantErr: ErrNotConnected,
		},
		{
			name: "empty queue has one empty page",
			page: 0,
			setupRepo: func(m *mockRepository) {
				m.createConnectedSession(guildID, voiceChannelID, textChannelID)
			},
			wantPageIndex: 0,
			wantRows:      0,
			wantTotal:     1,
		},
		{
			name:     "explicit page",
			page:     2,
			pageSize: 10,
			setupRepo: func(m *mockRepository) {
				s := m.createConnectedSession(guildID, voiceChannelID, textChannelID)
				s.Queue().Enqueue(tracks(15)...)
			},
			wantPageIndex: 1,
			wantRows:      5,
			wantTotal:     2,
		},
		{
			name:     "page past the end",
			page:     3,
			pageSize: 10,
			setupRepo: func(m *mockRepository) {
				s := m.createConnectedSession(guildID, voiceChannelID, textChannelID)
				s.Queue().Enqueue(tracks(15)...)
			},
			wantErr: ErrInvalidPage,
		},
		{
			name:    "negative page",
			page:    -1,
			wantErr: ErrInvalidPage,
		},
		{
			name:     "default page follows current track",
			page:     0,
			pageSize: 5,
			setupRepo: func(m *mockRepository) {
				s := m.createConnectedSession(guildID, voiceChannelID, textChannelID)
				s.Queue().Enqueue(tracks(12)...)
				for range 7 {
					s.Queue().DequeueNext()
				}
				s.StartNext(testNow)
			},
			wantPageIndex: 1,
			wantRows:      5,
			wantTotal:     3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepository()
			if tt.setupRepo != nil {
				tt.setupRepo(repo)
			}

			service := NewQueueService(repo, newTestDispatcher(t), tt.pageSize, fixedClock())
			output, err := service.List(context.Background(), QueueListInput{
				GuildID: guildID,
				Page:    tt.page,
			})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if output.Page.PageIndex != tt.wantPageIndex {
				t.Errorf("expected page index %d, got %d", tt.wantPageIndex, output.Page.PageIndex)
			}
			if len(output.Page.Rows) != tt.wantRows {
				t.Errorf("expected %d rows, got %d", tt.wantRows, len(output.Page.Rows))
			}
			if output.Page.TotalPages != tt.wantTotal {
				t.Errorf("expected %d pages, got %d", tt.wantTotal, output.Page.TotalPages)
			}
		})
	}
}

func TestQueueService_ListMarksCurrentRow(t *testing.T) {
	repo := newMockRepository()
	session := repo.createConnectedSession(guildID, voiceChannelID, textChannelID)

	a := mockTrack("a")
	a.Duration = 2 * time.Minute
	b := mockTrack("b")
	b.Duration = 59 * time.Second
	session.RequestPlay([]domain.Track{a, b}, testNow)

	clock := func() time.Time { return testNow.Add(45 * time.Second) }
	service := NewQueueService(repo, newTestDispatcher(t), 10, clock)

	output, err := service.List(context.Background(), QueueListInput{GuildID: guildID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := output.Page.Rows
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !rows[0].IsCurrent || rows[0].Duration != "00:01:15 left" {
		t.Errorf("expected current row with 00:01:15 left, got %+v", rows[0])
	}
	if rows[1].IsCurrent || rows[1].Duration != "00:00:59" {
		t.Errorf("expected pending row with 00:00:59, got %+v", rows[1])
	}

	// Rendering must not touch the session.
	if session.Queue().Cursor() != 1 {
		t.Errorf("expected cursor to stay at 1, got %d", session.Queue().Cursor())
	}
}
