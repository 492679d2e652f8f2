package curation

import (
	"regexp"
	"strings"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
)

var (
	likeButPattern   = regexp.MustCompile(`like\s+([^,]+?)\s+but\s+(\w+)`)
	similarToPattern = regexp.MustCompile(`similar to\s+([^,\.]+)`)

	exclusionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`but not\s+([^,\.]+)`),
		regexp.MustCompile(`without\s+([^,\.]+)`),
		regexp.MustCompile(`no\s+(cheesy|generic|mainstream|overplayed|popular)`),
	}

	temporalPatterns = []struct {
		name    string
		pattern *regexp.Regexp
	}{
		{"vintage_modern", regexp.MustCompile(`(vintage|classic|old).*(modern|new|contemporary|remixed)`)},
		{"nostalgic", regexp.MustCompile(`nostalgi`)},
		{"timeless", regexp.MustCompile(`timeless`)},
		{"fresh", regexp.MustCompile(`(fresh|new|current|latest)`)},
	}
)

// EnrichPrompt extracts comparisons, reference artists, exclusions and
// temporal modifiers. The result is descriptive and does not affect scoring.
func EnrichPrompt(prompt string) domain.PromptEnrichment {
	lower := strings.ToLower(prompt)
	out := domain.PromptEnrichment{
		Comparisons:       []domain.Comparison{},
		Exclusions:        []string{},
		TemporalModifiers: []string{},
		ReferenceArtists:  []string{},
	}

	for _, m := range likeButPattern.FindAllStringSubmatch(lower, -1) {
		out.Comparisons = append(out.Comparisons, domain.Comparison{
			Reference: strings.TrimSpace(m[1]),
			Modifier:  strings.TrimSpace(m[2]),
		})
	}

	for _, m := range similarToPattern.FindAllStringSubmatch(lower, -1) {
		out.ReferenceArtists = append(out.ReferenceArtists, strings.TrimSpace(m[1]))
	}

	for _, re := range exclusionPatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			out.Exclusions = append(out.Exclusions, strings.TrimSpace(m[1]))
		}
	}

	for _, tp := range temporalPatterns {
		if tp.pattern.MatchString(lower) {
			out.TemporalModifiers = append(out.TemporalModifiers, tp.name)
		}
	}

	return out
}
