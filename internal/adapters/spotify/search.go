package spotify

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
)

// maxSearchLimit is the largest page the search endpoint serves.
const maxSearchLimit = 50

// SearchTracks runs a catalog track search. limit is clamped to [1,50].
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]domain.Track, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	searchURL, err := url.Parse(fmt.Sprintf("%s/search", c.baseURL))
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: invalid search url: %w", err)
	}
	q := searchURL.Query()
	q.Set("q", query)
	q.Set("type", "track")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("market", c.market)
	searchURL.RawQuery = q.Encode()

	log.Printf("DEBUG spotify adapter: search request URL: %s", searchURL.String()) // #nosec G706 -- URL is internally constructed from trusted baseURL

	var body searchTracksResponse
	if err := c.doJSON(ctx, "search", http.MethodGet, searchURL.String(), nil, &body); err != nil {
		return nil, err
	}
	return mapTracksToDomain(body.Tracks.Items), nil
}
