package ports

import (
	"context"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
)

// TrackCatalog is the music service tracks are searched in.
type TrackCatalog interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]domain.Track, error)
	// ArtistTopTracks resolves an artist by name and returns their best known tracks.
	ArtistTopTracks(ctx context.Context, artistName string, limit int) ([]domain.Track, error)
	// GetAudioFeatures returns features keyed by track ID. IDs the catalog
	// has no features for are absent from the map.
	GetAudioFeatures(ctx context.Context, trackIDs []string) (map[string]domain.AudioFeatures, error)
}

// RemotePlaylist identifies a playlist created on the music service.
type RemotePlaylist struct {
	ID  string
	URL string
}

// PlaylistPublisher creates playlists on the music service.
type PlaylistPublisher interface {
	CreatePlaylist(ctx context.Context, name, description string, public bool) (RemotePlaylist, error)
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error
}

// AnalysisJob asks for a track's features to be estimated from its preview.
type AnalysisJob struct {
	TrackID    string
	PreviewURL string
}

// AnalysisQueue accepts background analysis jobs. Submit reports false when
// the job was dropped.
type AnalysisQueue interface {
	Submit(job AnalysisJob) bool
}
