package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ewilliams-labs/setlist/internal/core/curation"
	"github.com/ewilliams-labs/setlist/internal/core/domain"
	"github.com/ewilliams-labs/setlist/internal/core/ports"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	// searchConcurrency bounds parallel catalog searches for one prompt.
	searchConcurrency = 4
	// defaultSearchLimit is the page size requested per search query.
	defaultSearchLimit = 50
)

// Settings holds the curation defaults applied when a request leaves a field unset.
type Settings struct {
	TrackCount      int
	Creativity      float64
	DefaultArc      domain.Arc
	MaxPerArtist    int
	SearchLimit     int
	PublicPlaylists bool
}

// Params are the per-request curation knobs. Zero values fall back to Settings.
type Params struct {
	TrackCount       int      `json:"track_count,omitempty"`
	Creativity       *float64 `json:"creativity,omitempty"`
	Arc              string   `json:"arc,omitempty"`
	MaxPerArtist     int      `json:"max_per_artist,omitempty"`
	Seed             *int64   `json:"seed,omitempty"`
	Interleave       bool     `json:"interleave,omitempty"` // artist round robin when nothing has features
	DisableEmotional bool     `json:"disable_emotional,omitempty"`
}

// CurateRequest curates caller-supplied tracks without touching the catalog.
type CurateRequest struct {
	Prompt   string
	Tracks   []domain.Track
	Features map[string]domain.AudioFeatures
	Params
}

// PromptRequest builds, publishes and stores a playlist from a prompt alone.
type PromptRequest struct {
	Prompt string
	Params
}

// Orchestrator coordinates the catalog, the curation engine, publishing and persistence.
type Orchestrator struct {
	catalog   ports.TrackCatalog
	publisher ports.PlaylistPublisher
	repo      ports.PlaylistRepository
	queue     ports.AnalysisQueue
	settings  Settings

	newID func() string
	now   func() time.Time
}

// NewOrchestrator constructs an Orchestrator. publisher and queue may be nil,
// in which case playlists are only stored locally and featureless tracks are
// left unanalyzed.
func NewOrchestrator(catalog ports.TrackCatalog, publisher ports.PlaylistPublisher, repo ports.PlaylistRepository, queue ports.AnalysisQueue, settings Settings) *Orchestrator {
	return &Orchestrator{
		catalog:   catalog,
		publisher: publisher,
		repo:      repo,
		queue:     queue,
		settings:  settings,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Curate runs the curation engine over the request's tracks.
func (o *Orchestrator) Curate(ctx context.Context, req CurateRequest) (curation.Result, error) {
	if err := ctx.Err(); err != nil {
		return curation.Result{}, err
	}
	opts, err := o.options(req.Params)
	if err != nil {
		return curation.Result{}, fmt.Errorf("service: invalid options: %w", err)
	}
	res, err := curation.Curate(req.Tracks, req.Features, req.Prompt, opts)
	if err != nil {
		return curation.Result{}, fmt.Errorf("service: curate: %w", err)
	}
	return res, nil
}

// CreatePlaylistFromPrompt searches the catalog using queries derived from
// the prompt, curates the results, publishes the playlist when a publisher is
// configured and saves it. Tracks without audio features are queued for
// background analysis.
func (o *Orchestrator) CreatePlaylistFromPrompt(ctx context.Context, req PromptRequest) (domain.Playlist, curation.Result, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return domain.Playlist{}, curation.Result{}, fmt.Errorf("service: %w: empty prompt", domain.ErrInvalidOptions)
	}
	opts, err := o.options(req.Params)
	if err != nil {
		return domain.Playlist{}, curation.Result{}, fmt.Errorf("service: invalid options: %w", err)
	}

	queries := curation.SearchQueries(curation.AnalyzePrompt(prompt))
	candidates, err := o.search(ctx, queries)
	if err != nil {
		return domain.Playlist{}, curation.Result{}, fmt.Errorf("service: failed to search catalog: %w", err)
	}
	candidates = curation.UniqueByID(candidates)

	features, err := o.catalog.GetAudioFeatures(ctx, trackIDs(candidates))
	if err != nil {
		// Curation treats missing features as neutral.
		log.Printf("WARN service: audio features unavailable: %v", err)
		features = nil
	}

	res, err := curation.Curate(candidates, features, prompt, opts)
	if err != nil {
		return domain.Playlist{}, curation.Result{}, fmt.Errorf("service: curate: %w", err)
	}
	if len(res.Tracks) == 0 {
		return domain.Playlist{}, res, fmt.Errorf("service: %w for %q", domain.ErrNoTracks, prompt)
	}

	created, err := domain.NewPlaylist(o.newID(), curation.PlaylistName(res.Signals))
	if err != nil {
		return domain.Playlist{}, res, fmt.Errorf("service: %w", err)
	}
	pl := *created
	pl.Description = curation.PlaylistDescription(prompt)
	pl.Prompt = prompt
	pl.Arc = res.Arc
	pl.CreatedAt = o.now().UTC()
	for _, t := range res.Tracks {
		if err := pl.AddTrack(t); err != nil {
			return domain.Playlist{}, res, fmt.Errorf("service: track %s: %w", t.ID, err)
		}
	}

	if o.publisher != nil {
		remote, err := o.publisher.CreatePlaylist(ctx, pl.Name, pl.Description, o.settings.PublicPlaylists)
		if err != nil {
			return domain.Playlist{}, res, fmt.Errorf("service: failed to create remote playlist: %w", err)
		}
		if err := o.publisher.AddTracks(ctx, remote.ID, pl.TrackIDs()); err != nil {
			return domain.Playlist{}, res, fmt.Errorf("service: failed to add tracks to remote playlist: %w", err)
		}
		pl.RemoteID = remote.ID
		pl.RemoteURL = remote.URL
	}

	if err := o.repo.Save(ctx, pl); err != nil {
		return domain.Playlist{}, res, fmt.Errorf("service: failed to save playlist: %w", err)
	}

	o.queueAnalysis(pl.Tracks)
	return pl, res, nil
}

// GetPlaylist loads a stored playlist.
func (o *Orchestrator) GetPlaylist(ctx context.Context, id string) (domain.Playlist, error) {
	pl, err := o.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("service: failed to load playlist: %w", err)
	}
	return pl, nil
}

// GetPlaylistAnalysis returns the average audio features of a stored playlist.
func (o *Orchestrator) GetPlaylistAnalysis(ctx context.Context, id string) (domain.AudioFeatures, error) {
	features, err := o.repo.GetPlaylistAudioFeatures(ctx, id)
	if err != nil {
		return domain.AudioFeatures{}, fmt.Errorf("service: failed to analyze playlist: %w", err)
	}
	return features, nil
}

// search runs every query concurrently and concatenates results in query
// order. A failing query is logged and skipped; only an all-failed search is an error.
func (o *Orchestrator) search(ctx context.Context, queries []string) ([]domain.Track, error) {
	limit := o.settings.SearchLimit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	results := make([][]domain.Track, len(queries))
	var (
		mu      sync.Mutex
		lastErr error
		failed  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(searchConcurrency)
	for i, q := range queries {
		g.Go(func() error {
			tracks, err := o.runQuery(gctx, q, limit)
			if err != nil {
				log.Printf("WARN service: search %q failed: %v", q, err)
				mu.Lock()
				lastErr = err
				failed++
				mu.Unlock()
				return nil
			}
			results[i] = tracks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(queries) > 0 && failed == len(queries) {
		return nil, lastErr
	}

	var all []domain.Track
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// runQuery resolves artist queries through the artist's top tracks and
// falls back to a plain search when that yields nothing.
func (o *Orchestrator) runQuery(ctx context.Context, query string, limit int) ([]domain.Track, error) {
	if name, ok := strings.CutPrefix(query, curation.ArtistQueryPrefix); ok {
		tracks, err := o.catalog.ArtistTopTracks(ctx, name, limit)
		if err == nil && len(tracks) > 0 {
			return tracks, nil
		}
		if err != nil {
			log.Printf("WARN service: top tracks for %q unavailable: %v", name, err)
		}
	}
	return o.catalog.SearchTracks(ctx, query, limit)
}

func (o *Orchestrator) queueAnalysis(tracks []domain.Track) {
	if o.queue == nil {
		return
	}
	for _, t := range tracks {
		if t.HasFeatures() || t.PreviewURL == "" {
			continue
		}
		if !o.queue.Submit(ports.AnalysisJob{TrackID: t.ID, PreviewURL: t.PreviewURL}) {
			log.Printf("WARN service: analysis queue full, skipped %s", t.ID)
		}
	}
}

// options merges request params over the configured defaults.
func (o *Orchestrator) options(p Params) (curation.Options, error) {
	opts := curation.Options{
		TargetCount:  o.settings.TrackCount,
		Creativity:   o.settings.Creativity,
		DefaultArc:   o.settings.DefaultArc,
		MaxPerArtist: o.settings.MaxPerArtist,

		InterleaveWithoutFeatures: p.Interleave,
		DisableEmotional:          p.DisableEmotional,
	}
	if p.TrackCount != 0 {
		opts.TargetCount = p.TrackCount
	}
	if p.Creativity != nil {
		opts.Creativity = *p.Creativity
	}
	if p.MaxPerArtist != 0 {
		opts.MaxPerArtist = p.MaxPerArtist
	}
	if p.Arc != "" {
		arc, err := domain.ParseArc(p.Arc)
		if err != nil {
			return curation.Options{}, err
		}
		opts.Arc = arc
	}
	if p.Seed != nil {
		opts.Rand = curation.NewSeededRand(*p.Seed)
	}
	return opts, opts.Validate()
}

func trackIDs(tracks []domain.Track) []string {
	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return ids
}
