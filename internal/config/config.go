// Package config loads service settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultStorageDriver   = "sqlite"
	defaultSQLitePath      = "setlist.db"
	defaultWorkerCount     = 2
	defaultWorkerQueueSize = 100
	defaultShutdownTimeout = 10 * time.Second

	defaultTrackCount   = 25
	defaultCreativity   = 0.4
	defaultArc          = domain.ArcJourney
	defaultMaxPerArtist = 3
	defaultSearchLimit  = 50
	defaultMarket       = "US"
)

// Spotify holds catalog credentials and endpoints. Empty URLs mean the
// adapter's defaults.
type Spotify struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	APIURL       string
	TokenURL     string
	Market       string
}

// Curation holds the defaults applied when a request leaves a knob unset.
type Curation struct {
	TrackCount      int
	Creativity      float64
	Arc             domain.Arc
	MaxPerArtist    int
	SearchLimit     int
	PublicPlaylists bool
}

type Config struct {
	HTTPAddr        string
	StorageDriver   string
	SQLitePath      string
	WorkerCount     int
	WorkerQueueSize int
	ShutdownTimeout time.Duration

	Spotify  Spotify
	Curation Curation
}

// Load reads .env when present, then the process environment, and validates
// the result. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:        stringOrDefault("HTTP_ADDR", defaultHTTPAddr),
		StorageDriver:   stringOrDefault("STORAGE_DRIVER", defaultStorageDriver),
		SQLitePath:      stringOrDefault("SQLITE_PATH", defaultSQLitePath),
		WorkerCount:     intOrDefault("WORKER_COUNT", defaultWorkerCount),
		WorkerQueueSize: intOrDefault("WORKER_QUEUE_SIZE", defaultWorkerQueueSize),
		ShutdownTimeout: durationOrDefault("SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		Spotify: Spotify{
			ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
			ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
			RefreshToken: os.Getenv("SPOTIFY_REFRESH_TOKEN"),
			APIURL:       os.Getenv("SPOTIFY_API_URL"),
			TokenURL:     os.Getenv("SPOTIFY_TOKEN_URL"),
			Market:       strings.ToUpper(stringOrDefault("CURATE_MARKET", defaultMarket)),
		},
		Curation: Curation{
			TrackCount:      intOrDefault("CURATE_TRACK_COUNT", defaultTrackCount),
			Creativity:      floatOrDefault("CURATE_CREATIVITY", defaultCreativity),
			Arc:             domain.Arc(strings.ToLower(stringOrDefault("CURATE_ARC", string(defaultArc)))),
			MaxPerArtist:    intOrDefault("CURATE_MAX_PER_ARTIST", defaultMaxPerArtist),
			SearchLimit:     intOrDefault("CURATE_SEARCH_LIMIT", defaultSearchLimit),
			PublicPlaylists: boolOrDefault("PLAYLIST_PUBLIC", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		errs = append(errs, errors.New("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are required"))
	}
	if c.StorageDriver != "sqlite" {
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.StorageDriver))
	}
	if !c.Curation.Arc.Valid() {
		errs = append(errs, fmt.Errorf("CURATE_ARC: %w: %q", domain.ErrUnknownArc, c.Curation.Arc))
	}
	if c.Curation.Creativity < 0 || c.Curation.Creativity > 1 {
		errs = append(errs, fmt.Errorf("CURATE_CREATIVITY %v outside [0,1]", c.Curation.Creativity))
	}
	if c.Curation.TrackCount < 1 {
		errs = append(errs, fmt.Errorf("CURATE_TRACK_COUNT must be positive, got %d", c.Curation.TrackCount))
	}
	if c.Curation.MaxPerArtist < 1 {
		errs = append(errs, fmt.Errorf("CURATE_MAX_PER_ARTIST must be positive, got %d", c.Curation.MaxPerArtist))
	}
	if c.Curation.SearchLimit < 1 || c.Curation.SearchLimit > 50 {
		errs = append(errs, fmt.Errorf("CURATE_SEARCH_LIMIT %d outside [1,50]", c.Curation.SearchLimit))
	}
	if c.WorkerCount < 1 || c.WorkerQueueSize < 1 {
		errs = append(errs, errors.New("WORKER_COUNT and WORKER_QUEUE_SIZE must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func stringOrDefault(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}

func intOrDefault(key string, defaultValue int) int {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("WARN config: could not parse %s=%q, using default %d: %v", key, s, defaultValue, err)
		return defaultValue
	}
	return v
}

func floatOrDefault(key string, defaultValue float64) float64 {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Printf("WARN config: could not parse %s=%q, using default %v: %v", key, s, defaultValue, err)
		return defaultValue
	}
	return v
}

func boolOrDefault(key string, defaultValue bool) bool {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		log.Printf("WARN config: could not parse %s=%q, using default %v: %v", key, s, defaultValue, err)
		return defaultValue
	}
	return v
}

func durationOrDefault(key string, defaultValue time.Duration) time.Duration {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("WARN config: could not parse %s=%q, using default %v: %v", key, s, defaultValue, err)
		return defaultValue
	}
	return d
}
