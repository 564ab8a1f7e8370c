package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
	"github.com/sglre6355/sgrmusic/internal/bot"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

const (
	// Discord limits for autocomplete.
	maxChoices      = 25
	maxChoiceLength = 100

	minQueryLength      = 2
	autocompleteTimeout = 2500 * time.Millisecond
)

// AutocompleteHandler handles autocomplete requests.
type AutocompleteHandler struct {
	trackLoader TrackLoaderUseCase
}

// NewAutocompleteHandler creates a new AutocompleteHandler.
func NewAutocompleteHandler(trackLoader TrackLoaderUseCase) *AutocompleteHandler {
	return &AutocompleteHandler{
		trackLoader: trackLoader,
	}
}

// HandlePlay suggests search results for the play command's query.
// Spotify links and very short queries get no suggestions.
func (h *AutocompleteHandler) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	var query string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "query" && opt.Focused {
			query = opt.StringValue()
			break
		}
	}

	if len([]rune(query)) < minQueryLength {
		return respondChoices(r, nil)
	}
	if _, ok := domain.ParseSpotifyReference(query); ok {
		return respondChoices(r, nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), autocompleteTimeout)
	defer cancel()

	output, err := h.trackLoader.SearchTracks(ctx, usecases.SearchTracksInput{
		Query: query,
		Limit: maxChoices,
	})
	if err != nil {
		slog.Debug("autocomplete search failed", "query", query, "error", err)
		return respondChoices(r, nil)
	}

	return respondChoices(r, trackChoices(output.Tracks))
}

// trackChoices turns candidates into choices. Candidates whose value does not fit are dropped.
func trackChoices(candidates []usecases.TrackCandidate) []*discordgo.ApplicationCommandOptionChoice {
	choices := lo.FilterMap(
		candidates,
		func(c usecases.TrackCandidate, _ int) (*discordgo.ApplicationCommandOptionChoice, bool) {
			value := c.URI
			if value == "" {
				value = c.Query
			}
			if value == "" || len(value) > maxChoiceLength {
				return nil, false
			}

			name := c.Title
			if c.Artist != "" {
				name = fmt.Sprintf("%s - %s", c.Title, c.Artist)
			}

			return &discordgo.ApplicationCommandOptionChoice{
				Name:  truncate(name, maxChoiceLength),
				Value: value,
			}, true
		},
	)

	return lo.Slice(choices, 0, maxChoices)
}

func respondChoices(r bot.Responder, choices []*discordgo.ApplicationCommandOptionChoice) error {
	if choices == nil {
		choices = []*discordgo.ApplicationCommandOptionChoice{}
	}
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
