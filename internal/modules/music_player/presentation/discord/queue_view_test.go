package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/sgrmusic/internal/bot"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

func TestQueueEmbed(t *testing.T) {
	page := domain.QueuePage{
		Rows: []domain.QueueRow{
			{Position: 1, Track: domain.Track{Title: "A"}, Duration: "00:00:59"},
			{
				Position:  2,
				Track:     domain.Track{Title: "B", URI: "https://youtu.be/b"},
				Duration:  "00:01:15 left",
				IsCurrent: true,
			},
			{Position: 3, Track: domain.Track{Title: "C"}, Duration: "LIVE"},
		},
		PageIndex:   0,
		TotalPages:  1,
		TotalTracks: 3,
	}

	embed := queueEmbed(page)

	want := "1\\. **A** - 00:00:59\n" +
		"**2\\. [B](https://youtu.be/b) - 00:01:15 left**\n" +
		"3\\. **C** - LIVE\n"
	if embed.Description != want {
		t.Errorf("unexpected description:\n%s\nwant:\n%s", embed.Description, want)
	}
	if embed.Footer.Text != "Page 1/1" {
		t.Errorf("unexpected footer %q", embed.Footer.Text)
	}
}

func TestQueueEmbed_Empty(t *testing.T) {
	embed := queueEmbed(domain.QueuePage{Rows: []domain.QueueRow{}, TotalPages: 1})

	if embed.Description != "Queue is empty." {
		t.Errorf("unexpected description %q", embed.Description)
	}
	if embed.Footer.Text != "Page 1/1" {
		t.Errorf("unexpected footer %q", embed.Footer.Text)
	}
}

func TestQueueComponents(t *testing.T) {
	tests := []struct {
		name         string
		pageIndex    int
		totalPages   int
		wantRow      bool
		wantPrevID   string
		wantNextID   string
		wantPrevDown bool
		wantNextDown bool
	}{
		{name: "single page", pageIndex: 0, totalPages: 1},
		{
			name:         "first page",
			pageIndex:    0,
			totalPages:   3,
			wantRow:      true,
			wantPrevID:   "queue_page:1",
			wantNextID:   "queue_page:2",
			wantPrevDown: true,
		},
		{
			name:       "middle page",
			pageIndex:  1,
			totalPages: 3,
			wantRow:    true,
			wantPrevID: "queue_page:1",
			wantNextID: "queue_page:3",
		},
		{
			name:         "last page",
			pageIndex:    2,
			totalPages:   3,
			wantRow:      true,
			wantPrevID:   "queue_page:2",
			wantNextID:   "queue_page:4",
			wantNextDown: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			components := queueComponents(domain.QueuePage{PageIndex: tt.pageIndex, TotalPages: tt.totalPages})
			if !tt.wantRow {
				if components != nil {
					t.Fatalf("expected no components, got %+v", components)
				}
				return
			}

			row := components[0].(discordgo.ActionsRow)
			prev := row.Components[0].(discordgo.Button)
			next := row.Components[1].(discordgo.Button)

			if prev.CustomID != tt.wantPrevID || next.CustomID != tt.wantNextID {
				t.Errorf("unexpected IDs %q %q", prev.CustomID, next.CustomID)
			}
			if prev.Disabled != tt.wantPrevDown || next.Disabled != tt.wantNextDown {
				t.Errorf("unexpected disabled state prev=%v next=%v", prev.Disabled, next.Disabled)
			}
		})
	}
}

func TestParseQueuePageID(t *testing.T) {
	tests := []struct {
		customID string
		wantPage int
		wantOK   bool
	}{
		{"queue_page:1", 1, true},
		{"queue_page:12", 12, true},
		{"queue_page:0", 0, false},
		{"queue_page:-1", 0, false},
		{"queue_page:x", 0, false},
		{"other:1", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.customID, func(t *testing.T) {
			page, ok := parseQueuePageID(tt.customID)
			if page != tt.wantPage || ok != tt.wantOK {
				t.Errorf("parseQueuePageID(%q) = (%d, %v), want (%d, %v)",
					tt.customID, page, ok, tt.wantPage, tt.wantOK)
			}
		})
	}
}

func TestHandleQueuePage(t *testing.T) {
	th := newTestHandlers()
	th.queue.output = &usecases.QueueListOutput{Page: domain.QueuePage{
		Rows:        []domain.QueueRow{{Position: 11, Track: domain.Track{Title: "K"}, Duration: "00:03:00"}},
		PageIndex:   1,
		TotalPages:  2,
		TotalTracks: 11,
	}}
	r := &bot.MockResponder{}

	i := testInteraction(
		discordgo.InteractionMessageComponent,
		discordgo.MessageComponentInteractionData{CustomID: "queue_page:2"},
	)
	if err := th.handlers.HandleQueuePage(nil, i, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if th.queue.inputs[0].Page != 2 {
		t.Errorf("expected page 2, got %d", th.queue.inputs[0].Page)
	}
	if r.LastResponse().Type != discordgo.InteractionResponseUpdateMessage {
		t.Errorf("expected message update, got %v", r.LastResponse().Type)
	}
	if got := responseEmbed(t, r).Footer.Text; got != "Page 2/2" {
		t.Errorf("unexpected footer %q", got)
	}
}
