package domain

// Artist is a contributing artist on a track.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Album is the album reference carried by a track.
type Album struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
}

// AudioFeatures are the per-track numeric descriptors used for scoring and sequencing.
// Energy, Valence and Danceability are in [0,1]; Tempo is in beats per minute.
type AudioFeatures struct {
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	Danceability     float64 `json:"danceability"`
	Acousticness     float64 `json:"acousticness,omitempty"`
	Instrumentalness float64 `json:"instrumentalness,omitempty"`
}

// NeutralFeatures returns the values assumed for a track with no audio features.
func NeutralFeatures() AudioFeatures {
	return AudioFeatures{
		Energy:       0.5,
		Valence:      0.5,
		Tempo:        120,
		Danceability: 0.5,
	}
}

// Track represents a musical track in the domain layer.
type Track struct {
	ID         string         `json:"id"`
	Title      string         `json:"name"`
	Artists    []Artist       `json:"artists"`
	Album      Album          `json:"album"`
	DurationMs int            `json:"duration_ms"`
	Popularity int            `json:"popularity"` // 0-100
	ISRC       string         `json:"isrc,omitempty"`
	PreviewURL string         `json:"preview_url,omitempty"`
	Features   *AudioFeatures `json:"audio_features,omitempty"` // nil when unknown
}

// PrimaryArtist returns the first listed artist, or the zero Artist.
func (t Track) PrimaryArtist() Artist {
	if len(t.Artists) == 0 {
		return Artist{}
	}
	return t.Artists[0]
}

// HasFeatures reports whether audio features are attached.
func (t Track) HasFeatures() bool {
	return t.Features != nil
}

// FeaturesOrNeutral returns the attached features or NeutralFeatures.
func (t Track) FeaturesOrNeutral() AudioFeatures {
	if t.Features == nil {
		return NeutralFeatures()
	}
	return *t.Features
}

// WithFeatures returns a copy of the track carrying f.
func (t Track) WithFeatures(f AudioFeatures) Track {
	t.Features = &f
	return t
}
