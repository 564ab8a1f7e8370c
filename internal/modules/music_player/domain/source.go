package domain

// TrackSource represents the origin platform of a track.
type TrackSource string

const (
	TrackSourceYouTube    TrackSource = "youtube"
	TrackSourceSpotify    TrackSource = "spotify"
	TrackSourceSoundCloud TrackSource = "soundcloud"
	TrackSourceTwitch     TrackSource = "twitch"
	TrackSourceOther      TrackSource = "other"
)

// ParseTrackSource converts a source name string to a TrackSource.
func ParseTrackSource(name string) TrackSource {
	switch TrackSource(name) {
	case TrackSourceYouTube, TrackSourceSpotify, TrackSourceSoundCloud, TrackSourceTwitch:
		return TrackSource(name)
	default:
		return TrackSourceOther
	}
}

// Label returns a display name for the source.
func (s TrackSource) Label() string {
	switch s {
	case TrackSourceYouTube:
		return "YouTube"
	case TrackSourceSpotify:
		return "Spotify"
	case TrackSourceSoundCloud:
		return "SoundCloud"
	case TrackSourceTwitch:
		return "Twitch"
	default:
		return "Other"
	}
}

// Color returns the brand color used for embeds of this source.
func (s TrackSource) Color() int {
	switch s {
	case TrackSourceYouTube:
		return 0xFF0000
	case TrackSourceSpotify:
		return 0x1DB954
	case TrackSourceSoundCloud:
		return 0xFF5500
	case TrackSourceTwitch:
		return 0x9146FF
	default:
		return 0x5865F2
	}
}
