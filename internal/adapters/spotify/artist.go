package spotify

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
)

// artistSearchLimit is how many artist candidates are compared by name.
const artistSearchLimit = 5

// ArtistTopTracks resolves an artist by name and returns up to limit of
// their top tracks. When the top-tracks endpoint yields nothing, a track
// search restricted to the resolved artist is used instead, most popular first.
func (c *Client) ArtistTopTracks(ctx context.Context, artistName string, limit int) ([]domain.Track, error) {
	artist, err := c.searchArtist(ctx, artistName)
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: failed to find artist %q: %w", artistName, err)
	}

	tracks, err := c.getTopTracks(ctx, artist.ID)
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: failed to get top tracks for artist %q: %w", artistName, err)
	}

	if len(tracks) == 0 {
		log.Printf("WARN spotify adapter: no top tracks for %s, falling back to search", artist.ID)
		found, err := c.SearchTracks(ctx, fmt.Sprintf("artist:%q", artist.Name), maxSearchLimit)
		if err != nil {
			return nil, err
		}
		tracks = filterByArtist(found, artist.ID)
		sort.SliceStable(tracks, func(i, j int) bool { return tracks[i].Popularity > tracks[j].Popularity })
	}

	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

// searchArtist searches for an artist by name and picks the closest match.
func (c *Client) searchArtist(ctx context.Context, artistName string) (spotifyArtist, error) {
	searchURL, err := url.Parse(fmt.Sprintf("%s/search", c.baseURL))
	if err != nil {
		return spotifyArtist{}, fmt.Errorf("invalid search url: %w", err)
	}

	query := searchURL.Query()
	query.Set("q", fmt.Sprintf("artist:%q", artistName))
	query.Set("type", "artist")
	query.Set("limit", fmt.Sprint(artistSearchLimit))
	query.Set("market", c.market)
	searchURL.RawQuery = query.Encode()

	var body searchArtistsResponse
	if err := c.doJSON(ctx, "artist search", http.MethodGet, searchURL.String(), nil, &body); err != nil {
		return spotifyArtist{}, err
	}

	best, ok := bestArtistMatch(artistName, body.Artists.Items)
	if !ok {
		return spotifyArtist{}, fmt.Errorf("%w: no artist named %q", domain.ErrNotFound, artistName)
	}
	return best, nil
}

// getTopTracks fetches an artist's top tracks in the client's market.
func (c *Client) getTopTracks(ctx context.Context, artistID string) ([]domain.Track, error) {
	topURL, err := url.Parse(fmt.Sprintf("%s/artists/%s/top-tracks", c.baseURL, url.PathEscape(artistID)))
	if err != nil {
		return nil, fmt.Errorf("invalid top tracks url: %w", err)
	}
	query := topURL.Query()
	query.Set("market", c.market)
	topURL.RawQuery = query.Encode()

	var body topTracksResponse
	if err := c.doJSON(ctx, "top tracks", http.MethodGet, topURL.String(), nil, &body); err != nil {
		return nil, err
	}
	return mapTracksToDomain(body.Tracks), nil
}

func filterByArtist(tracks []domain.Track, artistID string) []domain.Track {
	out := make([]domain.Track, 0, len(tracks))
	for _, t := range tracks {
		for _, a := range t.Artists {
			if a.ID == artistID {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
