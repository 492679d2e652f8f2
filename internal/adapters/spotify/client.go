package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ewilliams-labs/setlist/internal/core/ports"
)

// DefaultBaseURL is the Spotify Web API root.
const DefaultBaseURL = "https://api.spotify.com/v1"

// DefaultMarket is the market used for catalog lookups when none is configured.
const DefaultMarket = "US"

// Client is an HTTP client for the Spotify adapter.
type Client struct {
	httpClient *http.Client
	baseURL    string
	market     string
}

// compile-time interface assertions
var (
	_ ports.TrackCatalog      = (*Client)(nil)
	_ ports.PlaylistPublisher = (*Client)(nil)
)

// NewClient constructs a new Spotify client. httpClient is expected to
// authorize requests, see NewHTTPClient.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		market:     DefaultMarket,
	}
}

// SetMarket sets the ISO 3166-1 country code sent with catalog lookups.
func (c *Client) SetMarket(market string) {
	if market != "" {
		c.market = market
	}
}

// StatusError is returned for non-2xx API responses.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("spotify adapter: %s status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("spotify adapter: %s status %d: %s", e.Op, e.Status, e.Body)
}

// doJSON sends a request with an optional JSON body and decodes a JSON
// response into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, op, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("spotify adapter: failed to marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("spotify adapter: failed to create %s request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// #nosec G107 -- URL constructed from the configured Spotify API base URL
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("spotify adapter: %s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("spotify adapter: %s decode error: %w", op, err)
	}
	return nil
}
