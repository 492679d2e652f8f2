package spotify

import (
	"github.com/ewilliams-labs/setlist/internal/core/domain"
)

// mapTrackToDomain converts a raw Spotify track to a domain track.
// features can be nil; search and top-tracks responses never carry them.
func mapTrackToDomain(st spotifyTrack, features *spotifyAudioFeatures) domain.Track {
	artists := make([]domain.Artist, 0, len(st.Artists))
	for _, a := range st.Artists {
		artists = append(artists, domain.Artist{ID: a.ID, Name: a.Name})
	}

	coverURL := ""
	if len(st.Album.Images) > 0 {
		coverURL = st.Album.Images[0].URL
	}

	dt := domain.Track{
		ID:      st.ID,
		Title:   st.Name,
		Artists: artists,
		Album: domain.Album{
			ID:          st.Album.ID,
			Name:        st.Album.Name,
			ReleaseDate: st.Album.ReleaseDate,
			CoverURL:    coverURL,
		},
		DurationMs: st.DurationMs,
		Popularity: st.Popularity,
		ISRC:       st.ExternalIDs.ISRC,
		PreviewURL: st.PreviewURL,
	}

	if features != nil {
		dt = dt.WithFeatures(mapFeaturesToDomain(*features))
	}
	return dt
}

func mapTracksToDomain(items []spotifyTrack) []domain.Track {
	tracks := make([]domain.Track, 0, len(items))
	for _, st := range items {
		if st.ID == "" {
			continue
		}
		tracks = append(tracks, mapTrackToDomain(st, nil))
	}
	return tracks
}

func mapFeaturesToDomain(f spotifyAudioFeatures) domain.AudioFeatures {
	return domain.AudioFeatures{
		Danceability:     f.Danceability,
		Energy:           f.Energy,
		Valence:          f.Valence,
		Tempo:            f.Tempo,
		Instrumentalness: f.Instrumentalness,
		Acousticness:     f.Acousticness,
	}
}
