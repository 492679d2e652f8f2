package spotify

// spotifyArtist represents an artist from the Spotify API.
type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyImage struct {
	URL string `json:"url"`
}

type spotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	Images      []spotifyImage `json:"images"`
}

// spotifyTrack represents the Spotify API response for a track.
type spotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []spotifyArtist `json:"artists"`
	Album       spotifyAlbum    `json:"album"`
	DurationMs  int             `json:"duration_ms"`
	Popularity  int             `json:"popularity"`
	PreviewURL  string          `json:"preview_url"`
	ExternalIDs struct {
		ISRC string `json:"isrc"`
	} `json:"external_ids"`
}

// spotifyAudioFeatures represents one entry of the audio-features endpoint.
type spotifyAudioFeatures struct {
	ID               string  `json:"id"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	Instrumentalness float64 `json:"instrumentalness"`
	Acousticness     float64 `json:"acousticness"`
}

type searchTracksResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

type searchArtistsResponse struct {
	Artists struct {
		Items []spotifyArtist `json:"items"`
	} `json:"artists"`
}

type topTracksResponse struct {
	Tracks []spotifyTrack `json:"tracks"`
}

// audioFeaturesResponse entries are null for tracks Spotify has no analysis for.
type audioFeaturesResponse struct {
	AudioFeatures []*spotifyAudioFeatures `json:"audio_features"`
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

// spotifyPlaylist is the subset of the playlist object returned on creation.
type spotifyPlaylist struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

// addTracksRequest represents the request body for adding tracks to a playlist.
type addTracksRequest struct {
	URIs []string `json:"uris"`
}
