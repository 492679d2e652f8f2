package domain

import (
	"errors"
	"time"
)

type Playlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Prompt      string    `json:"prompt,omitempty"`
	Arc         Arc       `json:"arc,omitempty"`
	RemoteID    string    `json:"remote_id,omitempty"`
	RemoteURL   string    `json:"remote_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Tracks      []Track   `json:"tracks"`
}

func NewPlaylist(id, name string) (*Playlist, error) {
	if id == "" || name == "" {
		return nil, errors.New("domain: invalid argument")
	}
	return &Playlist{
		ID:     id,
		Name:   name,
		Tracks: []Track{},
	}, nil
}

// AddTrack appends a track while keeping track identifiers unique.
// A track whose ID is already present is rejected with ErrDuplicateTrack.
func (p *Playlist) AddTrack(t Track) error {
	for _, ex := range p.Tracks {
		if ex.ID == t.ID {
			return ErrDuplicateTrack
		}
	}
	p.Tracks = append(p.Tracks, t)
	return nil
}

// Analyze averages the audio features of tracks that carry them.
// It returns the zero value when no track has features.
func (p Playlist) Analyze() AudioFeatures {
	var sum AudioFeatures
	n := 0
	for _, t := range p.Tracks {
		if t.Features == nil {
			continue
		}
		f := *t.Features
		sum.Danceability += f.Danceability
		sum.Energy += f.Energy
		sum.Valence += f.Valence
		sum.Tempo += f.Tempo
		sum.Instrumentalness += f.Instrumentalness
		sum.Acousticness += f.Acousticness
		n++
	}
	if n == 0 {
		return AudioFeatures{}
	}
	d := float64(n)
	return AudioFeatures{
		Danceability:     sum.Danceability / d,
		Energy:           sum.Energy / d,
		Valence:          sum.Valence / d,
		Tempo:            sum.Tempo / d,
		Instrumentalness: sum.Instrumentalness / d,
		Acousticness:     sum.Acousticness / d,
	}
}

// TrackIDs returns the identifiers in playlist order.
func (p Playlist) TrackIDs() []string {
	ids := make([]string, len(p.Tracks))
	for i, t := range p.Tracks {
		ids[i] = t.ID
	}
	return ids
}
