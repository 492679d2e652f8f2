package ports

import (
	"context"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
)

// PlaylistRepository persists curated playlists.
type PlaylistRepository interface {
	GetByID(ctx context.Context, id string) (domain.Playlist, error)
	Save(ctx context.Context, p domain.Playlist) error
	// GetPlaylistAudioFeatures averages the features of the playlist's
	// analyzed tracks. Tracks without features do not contribute.
	GetPlaylistAudioFeatures(ctx context.Context, playlistID string) (domain.AudioFeatures, error)
}

// FeatureStore records audio features estimated after a playlist was saved.
type FeatureStore interface {
	UpdateTrackFeatures(ctx context.Context, trackID string, features domain.AudioFeatures) error
}
