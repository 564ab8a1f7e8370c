package infrastructure

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
)

// DiscordPresence sets the bot's "Listening to" status.
type DiscordPresence struct {
	session *discordgo.Session
}

// NewDiscordPresence creates a new DiscordPresence.
func NewDiscordPresence(session *discordgo.Session) *DiscordPresence {
	return &DiscordPresence{session: session}
}

// SetListening shows "Listening to <title>".
func (p *DiscordPresence) SetListening(title string) error {
	return p.session.UpdateListeningStatus(title)
}

// ClearListening removes the activity.
func (p *DiscordPresence) ClearListening() error {
	return p.session.UpdateListeningStatus("")
}

var _ ports.PresenceUpdater = (*DiscordPresence)(nil)
