package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
)

// featuresBatchSize is the most IDs the audio-features endpoint accepts per call.
const featuresBatchSize = 100

// GetAudioFeatures fetches features in batches of 100. Tracks Spotify has no
// analysis for, returned as null or all-zero entries, are left out of the map.
func (c *Client) GetAudioFeatures(ctx context.Context, trackIDs []string) (map[string]domain.AudioFeatures, error) {
	result := make(map[string]domain.AudioFeatures, len(trackIDs))
	for start := 0; start < len(trackIDs); start += featuresBatchSize {
		end := min(start+featuresBatchSize, len(trackIDs))
		batch, err := c.getAudioFeaturesBatch(ctx, trackIDs[start:end])
		if err != nil {
			return nil, err
		}
		for id, f := range batch {
			result[id] = f
		}
	}
	return result, nil
}

func (c *Client) getAudioFeaturesBatch(ctx context.Context, trackIDs []string) (map[string]domain.AudioFeatures, error) {
	featuresURL, err := url.Parse(fmt.Sprintf("%s/audio-features", c.baseURL))
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: invalid features url: %w", err)
	}
	q := featuresURL.Query()
	q.Set("ids", strings.Join(trackIDs, ","))
	featuresURL.RawQuery = q.Encode()

	var body audioFeaturesResponse
	if err := c.doJSON(ctx, "features", http.MethodGet, featuresURL.String(), nil, &body); err != nil {
		return nil, err
	}

	result := make(map[string]domain.AudioFeatures, len(body.AudioFeatures))
	for _, f := range body.AudioFeatures {
		if f == nil || f.ID == "" || allFeaturesZero(*f) {
			continue
		}
		result[f.ID] = mapFeaturesToDomain(*f)
	}
	return result, nil
}

func allFeaturesZero(features spotifyAudioFeatures) bool {
	return features.Danceability == 0 &&
		features.Energy == 0 &&
		features.Valence == 0 &&
		features.Tempo == 0 &&
		features.Instrumentalness == 0 &&
		features.Acousticness == 0
}
