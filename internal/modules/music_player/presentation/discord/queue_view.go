package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/sgrmusic/internal/bot"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// QueuePagePrefix prefixes the custom ID of the queue navigation buttons.
const QueuePagePrefix = "queue_page:"

// queueEmbed renders one queue page. Periods after positions are escaped so Discord
// does not turn the lines into a list.
func queueEmbed(page domain.QueuePage) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Queue",
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d/%d", page.PageIndex+1, page.TotalPages),
		},
	}

	if page.TotalTracks == 0 {
		embed.Description = "Queue is empty."
		return embed
	}

	var sb strings.Builder
	for _, row := range page.Rows {
		line := fmt.Sprintf("%d\\. %s - %s", row.Position, trackLink(row.Track), row.Duration)
		if row.IsCurrent {
			line = "**" + line + "**"
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	embed.Description = sb.String()

	return embed
}

// queueComponents returns Prev/Next buttons, or nothing for a single page.
func queueComponents(page domain.QueuePage) []discordgo.MessageComponent {
	if page.TotalPages <= 1 {
		return nil
	}

	current := page.PageIndex + 1
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Prev",
					Style:    discordgo.SecondaryButton,
					CustomID: queuePageID(current - 1),
					Disabled: current <= 1,
				},
				discordgo.Button{
					Label:    "Next",
					Style:    discordgo.SecondaryButton,
					CustomID: queuePageID(current + 1),
					Disabled: current >= page.TotalPages,
				},
			},
		},
	}
}

func queuePageID(page int) string {
	return QueuePagePrefix + strconv.Itoa(max(page, 1))
}

// parseQueuePageID returns the 1-based page encoded in a navigation button's custom ID.
func parseQueuePageID(customID string) (int, bool) {
	raw, ok := strings.CutPrefix(customID, QueuePagePrefix)
	if !ok {
		return 0, false
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, false
	}
	return page, true
}

// HandleQueuePage handles the queue navigation buttons by replacing the message in place.
func (h *CommandHandlers) HandleQueuePage(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ic, err := parseInteraction(i)
	if err != nil {
		return respondError(r, "This command can only be used in a server.")
	}

	page, ok := parseQueuePageID(i.MessageComponentData().CustomID)
	if !ok {
		return respondError(r, "Invalid queue page.")
	}

	output, err := h.queue.List(ctx, usecases.QueueListInput{GuildID: ic.guildID, Page: page})
	if err != nil {
		return respondFailure(r, CommandQueue, err)
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{queueEmbed(output.Page)},
			Components: queueComponents(output.Page),
		},
	})
}
