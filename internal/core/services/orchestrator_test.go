package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
	"github.com/ewilliams-labs/setlist/internal/core/ports"
)

func catalogTrack(id, title, artistID string, popularity int) domain.Track {
	return domain.Track{
		ID:         id,
		Title:      title,
		Artists:    []domain.Artist{{ID: artistID, Name: artistID}},
		DurationMs: 240000,
		Popularity: popularity,
		PreviewURL: "https://previews.example/" + id + ".mp3",
	}
}

func newTestOrchestrator(catalog *mockCatalog, publisher ports.PlaylistPublisher, repo *mockRepo, queue ports.AnalysisQueue) *Orchestrator {
	o := NewOrchestrator(catalog, publisher, repo, queue, Settings{
		TrackCount:   10,
		DefaultArc:   domain.ArcJourney,
		MaxPerArtist: 3,
	})
	o.newID = func() string { return "pl-fixed" }
	o.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return o
}

// TestOrchestrator_CreatePlaylistFromPrompt verifies the prompt-to-playlist flow.
func TestOrchestrator_CreatePlaylistFromPrompt(t *testing.T) {
	errDown := errors.New("catalog down")
	pool := []domain.Track{
		catalogTrack("t1", "Insomnia", "faithless", 70),
		catalogTrack("t2", "Salva Mea", "faithless", 65),
		catalogTrack("t3", "Forever Young", "alphaville", 60),
	}

	tests := []struct {
		name          string
		prompt        string
		catalog       *mockCatalog
		publisher     *mockPublisher
		repo          *mockRepo
		wantErr       error
		wantSaved     bool
		wantRemoteID  string
		wantQueuedIDs int
	}{
		{
			name:          "Happy Path",
			prompt:        "energetic pop for my workout",
			catalog:       &mockCatalog{tracks: pool, features: map[string]domain.AudioFeatures{"t1": {Energy: 0.9, Valence: 0.6, Tempo: 130, Danceability: 0.7}}},
			publisher:     &mockPublisher{remote: ports.RemotePlaylist{ID: "remote-1", URL: "https://open.example/remote-1"}},
			wantSaved:     true,
			wantRemoteID:  "remote-1",
			wantQueuedIDs: 2,
		},
		{
			name:      "No publisher stores locally",
			prompt:    "chill jazz",
			catalog:   &mockCatalog{tracks: pool},
			wantSaved: true,
		},
		{
			name:      "Features failure is tolerated",
			prompt:    "chill jazz",
			catalog:   &mockCatalog{tracks: pool, featuresErr: errors.New("features gone")},
			wantSaved: true,
		},
		{
			name:    "Empty prompt",
			prompt:  "   ",
			catalog: &mockCatalog{tracks: pool},
			wantErr: domain.ErrInvalidOptions,
		},
		{
			name:    "No tracks found",
			prompt:  "chill jazz",
			catalog: &mockCatalog{},
			wantErr: domain.ErrNoTracks,
		},
		{
			name:    "Every search fails",
			prompt:  "chill jazz",
			catalog: &mockCatalog{searchErr: errDown},
			wantErr: errDown,
		},
		{
			name:      "Publish failure",
			prompt:    "chill jazz",
			catalog:   &mockCatalog{tracks: pool},
			publisher: &mockPublisher{createErr: errors.New("forbidden")},
			wantErr:   errAny,
		},
		{
			name:    "Repository save error",
			prompt:  "chill jazz",
			catalog: &mockCatalog{tracks: pool},
			repo:    &mockRepo{saveErr: errors.New("save failed")},
			wantErr: errAny,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.repo == nil {
				tc.repo = &mockRepo{}
			}
			queue := &mockQueue{}
			var publisher ports.PlaylistPublisher
			if tc.publisher != nil {
				publisher = tc.publisher
			}
			o := newTestOrchestrator(tc.catalog, publisher, tc.repo, queue)

			pl, res, err := o.CreatePlaylistFromPrompt(context.Background(), PromptRequest{Prompt: tc.prompt})

			if tc.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if tc.wantErr != errAny && !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if tc.repo.saved != nil {
					t.Fatalf("did not expect Save to be called, but it was")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tc.wantSaved && tc.repo.saved == nil {
				t.Fatalf("expected playlist to be saved, but Save was not called")
			}
			if pl.ID != "pl-fixed" || tc.repo.saved.ID != "pl-fixed" {
				t.Fatalf("unexpected playlist id %q", pl.ID)
			}
			if pl.Name == "" || !strings.HasSuffix(pl.Name, " Mix") {
				t.Fatalf("unexpected playlist name %q", pl.Name)
			}
			if len(pl.Tracks) != len(res.Tracks) || len(pl.Tracks) == 0 {
				t.Fatalf("playlist tracks %d, result tracks %d", len(pl.Tracks), len(res.Tracks))
			}
			if pl.RemoteID != tc.wantRemoteID {
				t.Fatalf("remote id: got %q, want %q", pl.RemoteID, tc.wantRemoteID)
			}
			if tc.publisher != nil && len(tc.publisher.added) != len(pl.Tracks) {
				t.Fatalf("published %d tracks, want %d", len(tc.publisher.added), len(pl.Tracks))
			}
			if tc.wantQueuedIDs > 0 && len(queue.jobs) != tc.wantQueuedIDs {
				t.Fatalf("queued %d jobs, want %d", len(queue.jobs), tc.wantQueuedIDs)
			}
			if tc.catalog.searches == 0 {
				t.Fatalf("expected catalog searches")
			}
		})
	}
}

func TestOrchestrator_ArtistQueries(t *testing.T) {
	catalog := &mockCatalog{
		artistTracks: map[string][]domain.Track{
			"Massive Attack": {catalogTrack("ma1", "Teardrop", "massive-attack", 80)},
		},
	}
	repo := &mockRepo{}
	o := newTestOrchestrator(catalog, nil, repo, nil)

	pl, _, err := o.CreatePlaylistFromPrompt(context.Background(), PromptRequest{Prompt: "songs by Massive Attack"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(catalog.artists) != 1 || catalog.artists[0] != "Massive Attack" {
		t.Fatalf("expected one artist lookup, got %v", catalog.artists)
	}
	for _, q := range catalog.queries {
		if strings.HasPrefix(q, "artist:") {
			t.Fatalf("artist query %q should not fall back to search", q)
		}
	}
	if len(pl.Tracks) != 1 || pl.Tracks[0].ID != "ma1" {
		t.Fatalf("unexpected tracks %v", pl.TrackIDs())
	}

	// Unknown artists fall back to a plain search.
	catalog = &mockCatalog{tracks: []domain.Track{catalogTrack("x1", "Unfinished Sympathy", "massive-attack", 70)}}
	o = newTestOrchestrator(catalog, nil, &mockRepo{}, nil)
	if _, _, err := o.CreatePlaylistFromPrompt(context.Background(), PromptRequest{Prompt: "songs by Massive Attack"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fellBack := false
	for _, q := range catalog.queries {
		if q == "artist:Massive Attack" {
			fellBack = true
		}
	}
	if !fellBack {
		t.Fatalf("expected search fallback, queries %v", catalog.queries)
	}
}

func TestOrchestrator_Curate(t *testing.T) {
	o := newTestOrchestrator(&mockCatalog{}, nil, &mockRepo{}, nil)
	tracks := []domain.Track{
		catalogTrack("a1", "Insomnia", "faithless", 90),
		catalogTrack("a2", "Salva Mea", "faithless", 80),
		catalogTrack("a3", "God Is A DJ", "faithless", 70),
		catalogTrack("b1", "Forever Young", "alphaville", 60),
	}

	res, err := o.Curate(context.Background(), CurateRequest{
		Prompt: "anything",
		Tracks: tracks,
		Params: Params{MaxPerArtist: 2, Arc: "Wind_Down"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Arc != domain.ArcWindDown {
		t.Fatalf("arc: got %q", res.Arc)
	}
	if len(res.Tracks) != 3 {
		t.Fatalf("expected 3 tracks after per-artist cap, got %d", len(res.Tracks))
	}

	res, err = o.Curate(context.Background(), CurateRequest{Tracks: tracks})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Arc != domain.ArcJourney {
		t.Fatalf("expected configured default arc, got %q", res.Arc)
	}

	_, err = o.Curate(context.Background(), CurateRequest{Tracks: tracks, Params: Params{Arc: "sideways"}})
	if !errors.Is(err, domain.ErrUnknownArc) {
		t.Fatalf("expected ErrUnknownArc, got %v", err)
	}

	bad := 2.0
	_, err = o.Curate(context.Background(), CurateRequest{Tracks: tracks, Params: Params{Creativity: &bad}})
	if !errors.Is(err, domain.ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions, got %v", err)
	}
}

func TestOrchestrator_GetPlaylist(t *testing.T) {
	repo := &mockRepo{getErr: domain.ErrNotFound}
	o := newTestOrchestrator(&mockCatalog{}, nil, repo, nil)
	if _, err := o.GetPlaylist(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	repo.getErr = nil
	pl, err := o.GetPlaylist(context.Background(), "pl-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pl.ID != "pl-1" {
		t.Fatalf("unexpected playlist %+v", pl)
	}
}

func TestOrchestrator_GetPlaylistAnalysis(t *testing.T) {
	tests := []struct {
		name    string
		repo    *mockRepo
		want    domain.AudioFeatures
		wantErr error
	}{
		{
			name: "returns averaged features",
			repo: &mockRepo{features: domain.AudioFeatures{Energy: 0.6, Valence: 0.4, Tempo: 118}},
			want: domain.AudioFeatures{Energy: 0.6, Valence: 0.4, Tempo: 118},
		},
		{
			name:    "missing playlist",
			repo:    &mockRepo{getErr: domain.ErrNotFound},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrchestrator(&mockCatalog{}, nil, tt.repo, nil)
			got, err := o.GetPlaylistAnalysis(context.Background(), "pl-1")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

// --- Mocks ---

// errAny marks cases where any error is acceptable.
var errAny = errors.New("any error")

// mockCatalog is a lightweight mock of the track catalog.
type mockCatalog struct {
	tracks      []domain.Track
	features    map[string]domain.AudioFeatures
	searchErr   error
	featuresErr error

	artistTracks map[string][]domain.Track

	mu       sync.Mutex
	searches int
	queries  []string
	artists  []string
}

func (m *mockCatalog) SearchTracks(ctx context.Context, query string, limit int) ([]domain.Track, error) {
	m.mu.Lock()
	m.searches++
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.tracks, nil
}

func (m *mockCatalog) ArtistTopTracks(ctx context.Context, artistName string, limit int) ([]domain.Track, error) {
	m.mu.Lock()
	m.artists = append(m.artists, artistName)
	m.mu.Unlock()
	tracks, ok := m.artistTracks[artistName]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return tracks, nil
}

func (m *mockCatalog) GetAudioFeatures(ctx context.Context, ids []string) (map[string]domain.AudioFeatures, error) {
	if m.featuresErr != nil {
		return nil, m.featuresErr
	}
	return m.features, nil
}

type mockPublisher struct {
	remote    ports.RemotePlaylist
	createErr error

	added []string
}

func (m *mockPublisher) CreatePlaylist(ctx context.Context, name, description string, public bool) (ports.RemotePlaylist, error) {
	if m.createErr != nil {
		return ports.RemotePlaylist{}, m.createErr
	}
	return m.remote, nil
}

func (m *mockPublisher) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	m.added = append(m.added, trackIDs...)
	return nil
}

// mockRepo is a minimal mock for PlaylistRepository.
type mockRepo struct {
	getErr   error
	saveErr  error
	features domain.AudioFeatures

	saved *domain.Playlist // captured saved playlist (pointer for test inspection)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (domain.Playlist, error) {
	if m.getErr != nil {
		return domain.Playlist{}, m.getErr
	}
	return domain.Playlist{ID: id, Name: "Test Playlist", Tracks: []domain.Track{}}, nil
}

func (m *mockRepo) Save(ctx context.Context, p domain.Playlist) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = &p
	return nil
}

func (m *mockRepo) GetPlaylistAudioFeatures(ctx context.Context, playlistID string) (domain.AudioFeatures, error) {
	if m.getErr != nil {
		return domain.AudioFeatures{}, m.getErr
	}
	return m.features, nil
}

type mockQueue struct {
	jobs []ports.AnalysisJob
}

func (m *mockQueue) Submit(job ports.AnalysisJob) bool {
	m.jobs = append(m.jobs, job)
	return true
}
