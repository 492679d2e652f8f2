package curation

import (
	"math"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
)

// minSequenceLength is the smallest playlist the Sequencer reorders.
const minSequenceLength = 3

// Sequence orders tracks to follow the arc's energy curve, then spaces out
// adjacent tracks by the same primary artist. Fewer than three tracks are
// returned unchanged. Missing features count as energy 0.5.
func Sequence(tracks []domain.Track, arc domain.Arc) []domain.Track {
	if len(tracks) < minSequenceLength {
		return cloneTracks(tracks)
	}
	return SpaceArtists(fitCurve(tracks, arc.Curve(len(tracks))))
}

// fitCurve greedily places, for each target in turn, the remaining track
// whose energy is closest. Ties go to the earlier track.
func fitCurve(tracks []domain.Track, curve []float64) []domain.Track {
	remaining := cloneTracks(tracks)
	out := make([]domain.Track, 0, len(tracks))

	for _, target := range curve {
		if len(remaining) == 0 {
			break
		}
		best := 0
		bestDist := math.Inf(1)
		for i, t := range remaining {
			if d := math.Abs(t.FeaturesOrNeutral().Energy - target); d < bestDist {
				best, bestDist = i, d
			}
		}
		out = append(out, remaining[best])
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return append(out, remaining...)
}

// SpaceArtists rebuilds the order in one forward pass, always taking the next
// remaining track whose primary artist differs from the last placed one. When
// every remaining track shares that artist the first one is taken anyway, so
// the pass always terminates.
func SpaceArtists(tracks []domain.Track) []domain.Track {
	if len(tracks) < minSequenceLength {
		return cloneTracks(tracks)
	}

	remaining := cloneTracks(tracks[1:])
	out := make([]domain.Track, 1, len(tracks))
	out[0] = tracks[0]

	for len(remaining) > 0 {
		last := out[len(out)-1].PrimaryArtist().ID
		next := 0
		for i, t := range remaining {
			if t.PrimaryArtist().ID != last {
				next = i
				break
			}
		}
		out = append(out, remaining[next])
		remaining = append(remaining[:next], remaining[next+1:]...)
	}
	return out
}

// Interleave distributes tracks round-robin across primary artists, in order
// of each artist's first appearance. Tracks without an artist share one group.
func Interleave(tracks []domain.Track) []domain.Track {
	if len(tracks) < minSequenceLength {
		return cloneTracks(tracks)
	}

	order := []string{}
	groups := map[string][]domain.Track{}
	for _, t := range tracks {
		id := t.PrimaryArtist().ID
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], t)
	}

	out := make([]domain.Track, 0, len(tracks))
	for round := 0; len(out) < len(tracks); round++ {
		for _, id := range order {
			if round < len(groups[id]) {
				out = append(out, groups[id][round])
			}
		}
	}
	return out
}

func cloneTracks(tracks []domain.Track) []domain.Track {
	out := make([]domain.Track, len(tracks))
	copy(out, tracks)
	return out
}
