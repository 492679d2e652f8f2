package curation

import (
	"fmt"
	"math/rand"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
)

// DefaultTargetCount is the playlist length used when none is requested.
const DefaultTargetCount = 25

// discoveryPerCreativity scales the discovery ratio with creativity.
const discoveryPerCreativity = 0.15

// Options configures one Curate call.
type Options struct {
	// TargetCount is the maximum playlist length. Zero means DefaultTargetCount.
	TargetCount int
	// Creativity in [0,1]; zero makes curation deterministic.
	Creativity float64
	// Arc forces a sequencing arc. Empty defers to the prompt's arc hint,
	// then to DefaultArc.
	Arc domain.Arc
	// DefaultArc is used when neither Arc nor a prompt hint applies. Empty means balanced.
	DefaultArc domain.Arc
	// MaxPerArtist caps tracks per primary artist. Zero means DefaultMaxPerArtist.
	MaxPerArtist int
	// DisableEmotional turns off the emotional-closeness bonus.
	DisableEmotional bool
	// InterleaveWithoutFeatures orders by artist round robin instead of the
	// energy arc when no selected track carries audio features.
	InterleaveWithoutFeatures bool
	// Rand drives creativity randomness.
	Rand *rand.Rand
}

// Stats counts tracks surviving each stage.
type Stats struct {
	Input    int `json:"input"`
	Unique   int `json:"unique"`
	Deduped  int `json:"deduped"`
	Selected int `json:"selected"`
}

// Result is the outcome of a Curate call.
type Result struct {
	Tracks    []domain.Track       `json:"tracks"`
	Signals   domain.PromptSignals `json:"analysis"`
	Arc       domain.Arc           `json:"arc"`
	Discovery []ScoredTrack        `json:"discovery"`
	Stats     Stats                `json:"stats"`
}

// Validate checks options a caller may have taken from configuration.
func (o Options) Validate() error {
	if o.Creativity < 0 || o.Creativity > 1 {
		return fmt.Errorf("%w: creativity %v outside [0,1]", domain.ErrInvalidOptions, o.Creativity)
	}
	if o.TargetCount < 0 {
		return fmt.Errorf("%w: negative target count %d", domain.ErrInvalidOptions, o.TargetCount)
	}
	if o.MaxPerArtist < 0 {
		return fmt.Errorf("%w: negative per-artist cap %d", domain.ErrInvalidOptions, o.MaxPerArtist)
	}
	if o.Arc != "" && !o.Arc.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownArc, o.Arc)
	}
	if o.DefaultArc != "" && !o.DefaultArc.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownArc, o.DefaultArc)
	}
	return nil
}

// Curate analyzes the prompt, deduplicates, scores, selects and sequences
// tracks. features may be nil; entries override features already on a track.
// An empty pool yields an empty playlist, not an error.
func Curate(tracks []domain.Track, features map[string]domain.AudioFeatures, prompt string, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	signals := AnalyzePrompt(prompt)
	arc := resolveArc(opts, signals)
	res := Result{
		Tracks:    []domain.Track{},
		Signals:   signals,
		Arc:       arc,
		Discovery: []ScoredTrack{},
		Stats:     Stats{Input: len(tracks)},
	}

	pool := AttachFeatures(UniqueByID(tracks), features)
	res.Stats.Unique = len(pool)
	if len(pool) == 0 {
		return res, nil
	}

	deduped := Dedupe(pool)
	res.Stats.Deduped = len(deduped)

	scored := Score(deduped, signals, ScoreOptions{
		Creativity:     opts.Creativity,
		DiscoveryRatio: discoveryPerCreativity * opts.Creativity,
		Emotional:      !opts.DisableEmotional,
		Rand:           opts.Rand,
	})
	res.Discovery = scored.Discovery

	target := opts.TargetCount
	if target == 0 {
		target = DefaultTargetCount
	}
	selected := SelectDiverse(scored.Tracks, target, opts.MaxPerArtist)
	res.Stats.Selected = len(selected)

	if opts.InterleaveWithoutFeatures && !anyFeatures(selected) {
		res.Tracks = Interleave(selected)
		return res, nil
	}
	res.Tracks = Sequence(selected, arc)
	return res, nil
}

// UniqueByID drops tracks with an empty ID and repeats of an ID already seen.
func UniqueByID(tracks []domain.Track) []domain.Track {
	seen := make(map[string]struct{}, len(tracks))
	out := make([]domain.Track, 0, len(tracks))
	for _, t := range tracks {
		if t.ID == "" {
			continue
		}
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}

// AttachFeatures returns copies of tracks carrying features from the map.
func AttachFeatures(tracks []domain.Track, features map[string]domain.AudioFeatures) []domain.Track {
	out := make([]domain.Track, len(tracks))
	for i, t := range tracks {
		if f, ok := features[t.ID]; ok {
			t = t.WithFeatures(f)
		}
		out[i] = t
	}
	return out
}

func resolveArc(opts Options, signals domain.PromptSignals) domain.Arc {
	if opts.Arc != "" {
		return opts.Arc
	}
	if a, ok := ArcForHint(signals.Emotional.ArcHint); ok {
		return a
	}
	if opts.DefaultArc != "" {
		return opts.DefaultArc
	}
	return domain.ArcBalanced
}

func anyFeatures(tracks []domain.Track) bool {
	for _, t := range tracks {
		if t.HasFeatures() {
			return true
		}
	}
	return false
}
