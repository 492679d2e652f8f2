package curation

import (
	"sort"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
)

// DefaultMaxPerArtist caps how many tracks one primary artist may contribute.
const DefaultMaxPerArtist = 3

// SelectDiverse returns up to targetCount tracks in descending score order,
// admitting at most maxPerArtist tracks per primary artist. Tracks without
// artists are never capped. A maxPerArtist below 1 uses DefaultMaxPerArtist.
// The result may be shorter than targetCount when caps exhaust the list.
func SelectDiverse(scored []ScoredTrack, targetCount, maxPerArtist int) []domain.Track {
	if targetCount <= 0 || len(scored) == 0 {
		return []domain.Track{}
	}
	if maxPerArtist < 1 {
		maxPerArtist = DefaultMaxPerArtist
	}

	ranked := make([]ScoredTrack, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	picked := make([]domain.Track, 0, min(targetCount, len(ranked)))
	perArtist := make(map[string]int)
	for _, st := range ranked {
		if len(picked) >= targetCount {
			break
		}
		if artistID := st.Track.PrimaryArtist().ID; artistID != "" {
			if perArtist[artistID] >= maxPerArtist {
				continue
			}
			perArtist[artistID]++
		}
		picked = append(picked, st.Track)
	}
	return picked
}
