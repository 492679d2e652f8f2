package spotify_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ewilliams-labs/setlist/internal/adapters/spotify"
	"github.com/ewilliams-labs/setlist/internal/core/domain"
)

// --- Helpers ---

func compareTracks(t *testing.T, got, want domain.Track) {
	t.Helper()

	if got.ID != want.ID {
		t.Errorf("ID: got %v, want %v", got.ID, want.ID)
	}
	if got.Title != want.Title {
		t.Errorf("Title: got %v, want %v", got.Title, want.Title)
	}
	if len(got.Artists) != len(want.Artists) {
		t.Fatalf("Artists: got %v, want %v", got.Artists, want.Artists)
	}
	for i := range want.Artists {
		if got.Artists[i] != want.Artists[i] {
			t.Errorf("Artists[%d]: got %v, want %v", i, got.Artists[i], want.Artists[i])
		}
	}
	if got.Album != want.Album {
		t.Errorf("Album: got %+v, want %+v", got.Album, want.Album)
	}
	if got.ISRC != want.ISRC {
		t.Errorf("ISRC: got %v, want %v", got.ISRC, want.ISRC)
	}
	if got.DurationMs != want.DurationMs {
		t.Errorf("DurationMs: got %v, want %v", got.DurationMs, want.DurationMs)
	}
	if got.Popularity != want.Popularity {
		t.Errorf("Popularity: got %v, want %v", got.Popularity, want.Popularity)
	}
	if got.PreviewURL != want.PreviewURL {
		t.Errorf("PreviewURL: got %v, want %v", got.PreviewURL, want.PreviewURL)
	}
	if got.HasFeatures() != want.HasFeatures() {
		t.Errorf("HasFeatures: got %v, want %v", got.HasFeatures(), want.HasFeatures())
	}
}

// --- Tests ---

func TestSearchTracks(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		wantLimit  string
		response   string
		statusCode int
		want       []domain.Track
		expectErr  bool
	}{
		{
			name:       "successful search",
			limit:      20,
			wantLimit:  "20",
			statusCode: http.StatusOK,
			response: `{
				"tracks": {
					"items": [
						{
							"id": "1",
							"name": "Test Track",
							"duration_ms": 200000,
							"popularity": 64,
							"preview_url": "https://p.scdn.co/mp3-preview/1",
							"artists": [ { "id": "a1", "name": "Test Artist" } ],
							"album": {
								"id": "al1",
								"name": "Test Album",
								"release_date": "1998-04-20",
								"images": [ { "url": "http://img.com/1.jpg" } ]
							},
							"external_ids": { "isrc": "US1234567890" }
						},
						{ "id": "", "name": "local file" }
					]
				}
			}`,
			want: []domain.Track{
				{
					ID:         "1",
					Title:      "Test Track",
					Artists:    []domain.Artist{{ID: "a1", Name: "Test Artist"}},
					Album:      domain.Album{ID: "al1", Name: "Test Album", ReleaseDate: "1998-04-20", CoverURL: "http://img.com/1.jpg"},
					DurationMs: 200000,
					Popularity: 64,
					PreviewURL: "https://p.scdn.co/mp3-preview/1",
					ISRC:       "US1234567890",
				},
			},
		},
		{
			name:       "limit clamped to fifty",
			limit:      500,
			wantLimit:  "50",
			statusCode: http.StatusOK,
			response:   `{ "tracks": { "items": [] } }`,
			want:       []domain.Track{},
		},
		{
			name:       "server error",
			limit:      10,
			wantLimit:  "10",
			statusCode: http.StatusInternalServerError,
			response:   `{"error":{"status":500}}`,
			expectErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/search" {
					t.Errorf("Expected URL path /search, got %s", r.URL.Path)
				}
				q := r.URL.Query()
				if q.Get("q") != "genre:jazz year:1980-1989" || q.Get("type") != "track" {
					t.Errorf("unexpected query %v", q)
				}
				if q.Get("limit") != tt.wantLimit {
					t.Errorf("limit: got %s, want %s", q.Get("limit"), tt.wantLimit)
				}
				if q.Get("market") != "GB" {
					t.Errorf("market: got %s, want GB", q.Get("market"))
				}
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.response))
			}))
			defer ts.Close()

			client := spotify.NewClient(ts.Client(), ts.URL)
			client.SetMarket("GB")

			tracks, err := client.SearchTracks(context.Background(), "genre:jazz year:1980-1989", tt.limit)

			if (err != nil) != tt.expectErr {
				t.Fatalf("expected error: %v, got: %v", tt.expectErr, err)
			}
			if tt.expectErr {
				var se *spotify.StatusError
				if !errors.As(err, &se) || se.Status != tt.statusCode {
					t.Fatalf("expected StatusError with %d, got %v", tt.statusCode, err)
				}
				return
			}
			if len(tracks) != len(tt.want) {
				t.Fatalf("tracks: got %d, want %d", len(tracks), len(tt.want))
			}
			for i := range tt.want {
				compareTracks(t, tracks[i], tt.want[i])
			}
		})
	}
}

func TestGetAudioFeatures_Batches(t *testing.T) {
	ids := make([]string, 150)
	for i := range ids {
		ids[i] = fmt.Sprintf("t%03d", i)
	}

	var (
		mu      sync.Mutex
		batches []int
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio-features" {
			t.Errorf("Expected URL path /audio-features, got %s", r.URL.Path)
		}
		requested := strings.Split(r.URL.Query().Get("ids"), ",")
		mu.Lock()
		batches = append(batches, len(requested))
		mu.Unlock()

		entries := make([]any, 0, len(requested))
		for _, id := range requested {
			switch id {
			case "t000":
				entries = append(entries, nil)
			case "t001":
				entries = append(entries, map[string]any{"id": id})
			default:
				entries = append(entries, map[string]any{
					"id": id, "energy": 0.8, "valence": 0.3, "tempo": 128.0, "danceability": 0.7,
				})
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"audio_features": entries})
	}))
	defer ts.Close()

	client := spotify.NewClient(ts.Client(), ts.URL)
	features, err := client.GetAudioFeatures(context.Background(), ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(batches) != 2 || batches[0] != 100 || batches[1] != 50 {
		t.Fatalf("expected batches [100 50], got %v", batches)
	}
	if len(features) != 148 {
		t.Fatalf("expected 148 features, got %d", len(features))
	}
	if _, ok := features["t000"]; ok {
		t.Fatalf("null entry should be skipped")
	}
	if _, ok := features["t001"]; ok {
		t.Fatalf("all-zero entry should be skipped")
	}
	if f := features["t149"]; f.Energy != 0.8 || f.Tempo != 128 {
		t.Fatalf("unexpected features %+v", f)
	}
}

func TestGetAudioFeatures_Empty(t *testing.T) {
	client := spotify.NewClient(http.DefaultClient, "http://127.0.0.1:0")
	features, err := client.GetAudioFeatures(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(features) != 0 {
		t.Fatalf("expected no features, got %d", len(features))
	}
}

func TestCreatePlaylistAndAddTracks(t *testing.T) {
	ids := make([]string, 130)
	for i := range ids {
		ids[i] = fmt.Sprintf("id%d", i)
	}

	var (
		created   map[string]any
		addedURIs [][]string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		switch r.URL.Path {
		case "/me/playlists":
			_ = json.NewDecoder(r.Body).Decode(&created)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"p1","name":"Chill Jazz Mix","external_urls":{"spotify":"https://open.spotify.com/playlist/p1"}}`))
		case "/playlists/p1/tracks":
			var body struct {
				URIs []string `json:"uris"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			addedURIs = append(addedURIs, body.URIs)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"snapshot_id":"s1"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	client := spotify.NewClient(ts.Client(), ts.URL)

	remote, err := client.CreatePlaylist(context.Background(), "Chill Jazz Mix", "Curated playlist", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remote.ID != "p1" || remote.URL != "https://open.spotify.com/playlist/p1" {
		t.Fatalf("unexpected remote playlist %+v", remote)
	}
	if created["name"] != "Chill Jazz Mix" || created["public"] != false {
		t.Fatalf("unexpected create body %v", created)
	}

	if err := client.AddTracks(context.Background(), remote.ID, ids); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(addedURIs) != 2 || len(addedURIs[0]) != 100 || len(addedURIs[1]) != 30 {
		t.Fatalf("unexpected batches %d", len(addedURIs))
	}
	if addedURIs[0][0] != "spotify:track:id0" || addedURIs[1][29] != "spotify:track:id129" {
		t.Fatalf("unexpected uris %s %s", addedURIs[0][0], addedURIs[1][29])
	}
}

func TestCreatePlaylist_Forbidden(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"status":403,"message":"Insufficient client scope"}}`))
	}))
	defer ts.Close()

	client := spotify.NewClient(ts.Client(), ts.URL)
	_, err := client.CreatePlaylist(context.Background(), "x", "y", true)
	var se *spotify.StatusError
	if !errors.As(err, &se) || se.Status != http.StatusForbidden {
		t.Fatalf("expected 403 StatusError, got %v", err)
	}
}

func TestArtistTopTracks(t *testing.T) {
	tests := []struct {
		name      string
		topTracks string
		search    string
		limit     int
		wantIDs   []string
	}{
		{
			name:      "top tracks",
			topTracks: `{"tracks":[{"id":"t1","name":"Teardrop","artists":[{"id":"ma","name":"Massive Attack"}]},{"id":"t2","name":"Angel","artists":[{"id":"ma","name":"Massive Attack"}]}]}`,
			limit:     1,
			wantIDs:   []string{"t1"},
		},
		{
			name:      "falls back to filtered search",
			topTracks: `{"tracks":[]}`,
			search: `{"tracks":{"items":[
				{"id":"s1","name":"Cover","popularity":90,"artists":[{"id":"other","name":"Tribute"}]},
				{"id":"s2","name":"Angel","popularity":40,"artists":[{"id":"ma","name":"Massive Attack"}]},
				{"id":"s3","name":"Teardrop","popularity":80,"artists":[{"id":"x","name":"Guest"},{"id":"ma","name":"Massive Attack"}]}
			]}}`,
			limit:   10,
			wantIDs: []string{"s3", "s2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch {
				case r.URL.Path == "/search" && r.URL.Query().Get("type") == "artist":
					w.Write([]byte(`{"artists":{"items":[{"id":"ma","name":"Massive Attack"}]}}`))
				case r.URL.Path == "/search":
					w.Write([]byte(tt.search))
				case r.URL.Path == "/artists/ma/top-tracks":
					if r.URL.Query().Get("market") != spotify.DefaultMarket {
						t.Errorf("expected default market, got %s", r.URL.Query().Get("market"))
					}
					w.Write([]byte(tt.topTracks))
				default:
					t.Errorf("unexpected path %s", r.URL.Path)
					w.WriteHeader(http.StatusNotFound)
				}
			}))
			defer ts.Close()

			client := spotify.NewClient(ts.Client(), ts.URL)
			tracks, err := client.ArtistTopTracks(context.Background(), "massive attack", tt.limit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tracks) != len(tt.wantIDs) {
				t.Fatalf("tracks: got %d, want %d", len(tracks), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if tracks[i].ID != id {
					t.Fatalf("track %d: got %s, want %s", i, tracks[i].ID, id)
				}
			}
		})
	}
}

func TestArtistTopTracks_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"artists":{"items":[]}}`))
	}))
	defer ts.Close()

	client := spotify.NewClient(ts.Client(), ts.URL)
	_, err := client.ArtistTopTracks(context.Background(), "nobody", 5)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
