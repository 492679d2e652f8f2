package spotify

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultTokenURL is Spotify's OAuth2 token endpoint.
const DefaultTokenURL = "https://accounts.spotify.com/api/token"

// Scopes needed to publish playlists on behalf of a user.
var playlistScopes = []string{"playlist-modify-public", "playlist-modify-private"}

// Credentials identify the application and, optionally, the user it acts for.
type Credentials struct {
	ClientID     string
	ClientSecret string
	// RefreshToken enables user-scoped calls such as playlist creation.
	// Without it the client-credentials grant is used, which can search and
	// read audio features but cannot publish.
	RefreshToken string
	TokenURL     string
}

// CanPublish reports whether the credentials carry a user grant.
func (c Credentials) CanPublish() bool {
	return c.RefreshToken != ""
}

// NewHTTPClient returns an http.Client that attaches and refreshes access
// tokens. The session is explicit; nothing is cached outside the returned client.
func NewHTTPClient(ctx context.Context, creds Credentials) (*http.Client, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, errors.New("spotify adapter: client id and secret are required")
	}
	tokenURL := creds.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	if creds.RefreshToken != "" {
		cfg := &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
			Scopes: playlistScopes,
		}
		src := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})
		return oauth2.NewClient(ctx, src), nil
	}

	cfg := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	return cfg.Client(ctx), nil
}
