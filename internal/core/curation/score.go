package curation

import (
	"math"
	"math/rand"
	"sort"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
)

const (
	popularityWeight   = 0.3
	energyBonus        = 0.15
	valenceBonus       = 0.15
	tempoBonus         = 0.10
	danceabilityBonus  = 0.10
	emotionalWeight    = 0.25
	jitterScale        = 0.3
	topStratumShare    = 0.3
	middleStratumShare = 0.7 // upper bound of the middle stratum
)

// ScoredTrack pairs a track with its desirability. Higher is better.
type ScoredTrack struct {
	Track domain.Track `json:"track"`
	Score float64      `json:"score"`
}

// ScoreOptions tunes the Scorer.
type ScoreOptions struct {
	// Creativity in [0,1] lowers the popularity weight and drives jitter.
	Creativity float64
	// DiscoveryRatio sizes the discovery subset as a share of all tracks.
	DiscoveryRatio float64
	// Emotional enables the emotional-closeness bonus.
	Emotional bool
	// Rand drives the stratum shuffle and jitter. A nil source means a
	// time-seeded one is created per call.
	Rand *rand.Rand
}

// ScoreResult holds every input track scored exactly once, plus the
// discovery subset drawn from the low-scoring stratum.
type ScoreResult struct {
	Tracks    []ScoredTrack
	Discovery []ScoredTrack
}

// Score rates each track against the prompt signals.
func Score(tracks []domain.Track, signals domain.PromptSignals, opts ScoreOptions) ScoreResult {
	scored := make([]ScoredTrack, 0, len(tracks))
	for _, t := range tracks {
		scored = append(scored, ScoredTrack{Track: t, Score: baseScore(t, signals, opts)})
	}
	if len(scored) == 0 || opts.Creativity <= 0 {
		return ScoreResult{Tracks: scored, Discovery: []ScoredTrack{}}
	}
	return applyCreativity(scored, opts)
}

func baseScore(t domain.Track, signals domain.PromptSignals, opts ScoreOptions) float64 {
	weight := popularityWeight * (1 - opts.Creativity*0.5)
	score := float64(t.Popularity) / 100 * weight

	if t.Features == nil {
		return score
	}
	f := *t.Features
	r := signals.Features
	if r.EnergyOK(f.Energy) {
		score += energyBonus
	}
	if r.ValenceOK(f.Valence) {
		score += valenceBonus
	}
	if r.TempoOK(f.Tempo) {
		score += tempoBonus
	}
	if r.DanceabilityOK(f.Danceability) {
		score += danceabilityBonus
	}

	if opts.Emotional {
		em := signals.Emotional
		closeness := ((1 - math.Abs(f.Valence-em.TargetValence)) + (1 - math.Abs(f.Energy-em.TargetEnergy))) / 2
		score += closeness * emotionalWeight * em.Intensity
	}
	return score
}

// applyCreativity splits tracks into top 30%, middle 40% and bottom 30% by
// score, shuffles each stratum, then jitters every score by up to ±0.3c.
// The shuffled order only matters as a tie-breaker for later stable sorts.
func applyCreativity(scored []ScoredTrack, opts ScoreOptions) ScoreResult {
	rng := opts.Rand
	if rng == nil {
		rng = newRand()
	}

	ranked := make([]ScoredTrack, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	total := len(ranked)
	topEnd := int(float64(total) * topStratumShare)
	midEnd := int(float64(total) * middleStratumShare)
	strata := [][]ScoredTrack{ranked[:topEnd], ranked[topEnd:midEnd], ranked[midEnd:]}
	for _, s := range strata {
		rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
	}

	spread := opts.Creativity * jitterScale
	jittered := make([]ScoredTrack, total)
	for i, st := range ranked {
		st.Score += spread * (2*rng.Float64() - 1)
		jittered[i] = st
	}

	bottom := jittered[midEnd:]
	n := int(float64(total) * opts.DiscoveryRatio)
	if n > len(bottom) {
		n = len(bottom)
	}
	if n < 0 {
		n = 0
	}
	discovery := make([]ScoredTrack, n)
	copy(discovery, bottom[:n])

	return ScoreResult{Tracks: jittered, Discovery: discovery}
}
