package spotify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ewilliams-labs/setlist/internal/core/ports"
)

// addTracksBatchSize is the most URIs one add-items call accepts.
const addTracksBatchSize = 100

// CreatePlaylist creates an empty playlist owned by the authorized user.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string, public bool) (ports.RemotePlaylist, error) {
	reqBody := createPlaylistRequest{Name: name, Description: description, Public: public}

	var sp spotifyPlaylist
	if err := c.doJSON(ctx, "create playlist", http.MethodPost, c.baseURL+"/me/playlists", reqBody, &sp); err != nil {
		return ports.RemotePlaylist{}, err
	}
	if sp.ID == "" {
		return ports.RemotePlaylist{}, fmt.Errorf("spotify adapter: create playlist returned no id")
	}
	return ports.RemotePlaylist{ID: sp.ID, URL: sp.ExternalURLs.Spotify}, nil
}

// AddTracks appends tracks to a playlist in order, 100 per request.
// Spotify requires URIs in the format "spotify:track:{id}".
func (c *Client) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	endpoint := fmt.Sprintf("%s/playlists/%s/tracks", c.baseURL, playlistID)
	for start := 0; start < len(trackIDs); start += addTracksBatchSize {
		end := min(start+addTracksBatchSize, len(trackIDs))
		uris := make([]string, 0, end-start)
		for _, id := range trackIDs[start:end] {
			uris = append(uris, "spotify:track:"+id)
		}
		if err := c.doJSON(ctx, "add tracks", http.MethodPost, endpoint, addTracksRequest{URIs: uris}, nil); err != nil {
			return err
		}
	}
	return nil
}
