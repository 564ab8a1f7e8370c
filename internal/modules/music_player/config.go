package music_player

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the music player module configuration.
type Config struct {
	LavalinkAddress  string `env:"LAVALINK_ADDRESS,notEmpty"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE"            envDefault:"false"`

	SpotifyClientID          string  `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret      string  `env:"SPOTIFY_CLIENT_SECRET"`
	SpotifyMaxTracks         int     `env:"SPOTIFY_MAX_TRACKS"          envDefault:"100"`
	SpotifyRequestsPerSecond float64 `env:"SPOTIFY_REQUESTS_PER_SECOND" envDefault:"5"`

	RedisAddress  string        `env:"REDIS_ADDRESS"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB"        envDefault:"0"`
	TrackCacheTTL time.Duration `env:"TRACK_CACHE_TTL" envDefault:"1h"`

	QueuePageSize  int           `env:"QUEUE_PAGE_SIZE" envDefault:"10"`
	ResolveTimeout time.Duration `env:"RESOLVE_TIMEOUT" envDefault:"10s"`
}

// LoadConfig parses the module configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SpotifyEnabled reports whether Spotify credentials are configured.
func (c *Config) SpotifyEnabled() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

// TrackCacheEnabled reports whether a Redis server is configured.
func (c *Config) TrackCacheEnabled() bool {
	return c.RedisAddress != ""
}
