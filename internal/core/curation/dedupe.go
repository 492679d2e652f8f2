package curation

import (
	"regexp"
	"strings"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
	"github.com/pmezard/go-difflib/difflib"
)

// DuplicateThreshold is the minimum similarity ratio between two normalized
// titles for them to count as the same song.
const DuplicateThreshold = 0.85

// versionMarkers strip release-variant annotations from a lowercased title.
// They are applied in order.
var versionMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*[\(\[].*?radio.*?edit.*?[\)\]]`),
	regexp.MustCompile(`(?i)\s*[\(\[].*?album.*?version.*?[\)\]]`),
	regexp.MustCompile(`(?i)\s*[\(\[].*?single.*?version.*?[\)\]]`),
	regexp.MustCompile(`(?i)\s*[\(\[].*?edit.*?[\)\]]`),
	regexp.MustCompile(`(?i)\s*[\(\[].*?mix.*?[\)\]]`),
	regexp.MustCompile(`(?i)\s*[\(\[].*?remix.*?[\)\]]`),
	regexp.MustCompile(`(?i)\s*[\(\[].*?remaster.*?[\)\]]`),
	regexp.MustCompile(`(?i)\s*[\(\[].*?remastered.*?[\)\]]`),
	regexp.MustCompile(`(?i)\s*[\(\[].*?\d{4}.*?[\)\]]`),
	regexp.MustCompile(`(?i)\s*[\(\[].*?feat\..*?[\)\]]`),
	regexp.MustCompile(`(?i)\s*-\s*radio.*?edit`),
	regexp.MustCompile(`(?i)\s*-\s*.*?mix`),
	regexp.MustCompile(`(?i)\s*-\s*.*?remix`),
	regexp.MustCompile(`(?i)\s*-\s*remaster.*`),
}

// DuplicateGroup is a set of recordings of one song, in input order.
type DuplicateGroup struct {
	Key    string
	Tracks []domain.Track
}

// NormalizeTitle lowercases a title, strips version markers and collapses whitespace.
func NormalizeTitle(title string) string {
	normalized := strings.ToLower(title)
	for _, re := range versionMarkers {
		normalized = re.ReplaceAllString(normalized, "")
	}
	return strings.Join(strings.Fields(normalized), " ")
}

// TitleSimilarity is the sequence-matcher ratio of two strings, compared rune by rune.
func TitleSimilarity(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

// IsDuplicate reports whether two titles name the same song once normalized.
func IsDuplicate(a, b string) bool {
	na, nb := NormalizeTitle(a), NormalizeTitle(b)
	if na == nb {
		return true
	}
	return TitleSimilarity(na, nb) >= DuplicateThreshold
}

// GroupDuplicates assigns every track to the first group whose key it
// duplicates, opening a new group otherwise. Groups keep creation order and
// are compared by key only, so unrelated groups never merge transitively.
func GroupDuplicates(tracks []domain.Track) []DuplicateGroup {
	groups := []DuplicateGroup{}
	for _, t := range tracks {
		joined := false
		for i := range groups {
			if IsDuplicate(t.Title, groups[i].Key) {
				groups[i].Tracks = append(groups[i].Tracks, t)
				joined = true
				break
			}
		}
		if !joined {
			groups = append(groups, DuplicateGroup{
				Key:    NormalizeTitle(t.Title),
				Tracks: []domain.Track{t},
			})
		}
	}
	return groups
}

// Dedupe keeps the best recording of each song, in group creation order.
func Dedupe(tracks []domain.Track) []domain.Track {
	if len(tracks) == 0 {
		return []domain.Track{}
	}
	groups := GroupDuplicates(tracks)
	out := make([]domain.Track, 0, len(groups))
	for _, g := range groups {
		out = append(out, BestVersion(g.Tracks))
	}
	return out
}

// BestVersion picks the preferred recording from a duplicate group: originals
// over remixes and edits, then longer and more popular. Ties keep the earlier track.
func BestVersion(group []domain.Track) domain.Track {
	if len(group) == 0 {
		return domain.Track{}
	}
	best := group[0]
	bestScore := versionScore(best)
	for _, t := range group[1:] {
		if s := versionScore(t); s > bestScore {
			best, bestScore = t, s
		}
	}
	return best
}

func versionScore(t domain.Track) float64 {
	name := strings.ToLower(t.Title)
	score := 0.0
	switch {
	case strings.Contains(name, "remix"):
		score -= 20
	case strings.Contains(name, "mix"):
		score -= 15
	case strings.Contains(name, "edit"):
		score -= 10
	case strings.Contains(name, "remaster"):
		score -= 5
	}
	score += float64(t.DurationMs) / 10000
	score += float64(t.Popularity) * 0.5
	return score
}
