package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
)

// Command names.
const (
	CommandConnect    = "connect"
	CommandDisconnect = "disconnect"
	CommandPlay       = "play"
	CommandPause      = "pause"
	CommandResume     = "resume"
	CommandSkip       = "skip"
	CommandQueue      = "queue"
)

// Commands returns all slash commands for the music player module.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandConnect,
			Description: "Join a voice channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Voice channel to join (defaults to your current channel)",
					Required:    false,
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildVoice,
						discordgo.ChannelTypeGuildStageVoice,
					},
				},
			},
		},
		{
			Name:        CommandDisconnect,
			Description: "Leave the voice channel and discard the queue",
		},
		{
			Name:        CommandPlay,
			Description: "Play a track from a URL, a Spotify link or a search",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "query",
					Description:  "URL or search term",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        CommandPause,
			Description: "Pause playback",
		},
		{
			Name:        CommandResume,
			Description: "Resume playback",
		},
		{
			Name:        CommandSkip,
			Description: "Skip the current track",
		},
		{
			Name:        CommandQueue,
			Description: "Show the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "page",
					Description: "Page number (defaults to the page with the current track)",
					Required:    false,
					MinValue:    lo.ToPtr(1.0),
				},
			},
		},
	}
}
