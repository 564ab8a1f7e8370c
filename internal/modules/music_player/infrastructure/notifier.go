package infrastructure

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
)

// Notifier sends "Now Playing" notifications to Discord channels.
type Notifier struct {
	session *discordgo.Session
}

// NewNotifier creates a new Notifier.
func NewNotifier(session *discordgo.Session) *Notifier {
	return &Notifier{session: session}
}

// SendNowPlaying sends a "Now Playing" embed to the channel and returns the message ID.
func (n *Notifier) SendNowPlaying(
	channelID snowflake.ID,
	info *ports.NowPlayingInfo,
) (snowflake.ID, error) {
	msg, err := n.session.ChannelMessageSendEmbed(channelID.String(), nowPlayingEmbed(info))
	if err != nil {
		return 0, err
	}
	return snowflake.Parse(msg.ID)
}

// DeleteMessage deletes a message from the channel.
func (n *Notifier) DeleteMessage(channelID snowflake.ID, messageID snowflake.ID) error {
	return n.session.ChannelMessageDelete(channelID.String(), messageID.String())
}

func nowPlayingEmbed(info *ports.NowPlayingInfo) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: "Now Playing",
		},
		Title: info.Title,
		URL:   info.URI,
		Color: info.Source.Color(),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Artist",
				Value:  orDash(info.Artist),
				Inline: true,
			},
			{
				Name:   "Duration",
				Value:  info.Duration,
				Inline: true,
			},
			{
				Name:   "Source",
				Value:  info.Source.Label(),
				Inline: true,
			},
		},
	}

	if !info.EnqueuedAt.IsZero() {
		embed.Timestamp = info.EnqueuedAt.UTC().Format(time.RFC3339)
	}

	requester := info.RequesterName
	if requester == "" {
		requester = fmt.Sprintf("<@%s>", info.RequesterID)
	}
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text:    "Requested by " + requester,
		IconURL: info.RequesterAvatarURL,
	}

	if info.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: info.ArtworkURL}
	}

	return embed
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Ensure Notifier implements ports.NotificationSender.
var _ ports.NotificationSender = (*Notifier)(nil)
