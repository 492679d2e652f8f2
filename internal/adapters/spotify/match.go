package spotify

// minArtistSimilarity is the normalized-name similarity a non-exact artist
// candidate needs to beat the first search result.
const minArtistSimilarity = 0.8

// bestArtistMatch prefers an exact normalized name match, then the most
// similar candidate above minArtistSimilarity, then the first candidate.
func bestArtistMatch(name string, candidates []spotifyArtist) (spotifyArtist, bool) {
	if len(candidates) == 0 {
		return spotifyArtist{}, false
	}

	target := normalizeSearchInput(name)
	bestIndex := -1
	bestScore := 0.0
	for i, candidate := range candidates {
		if candidate.ID == "" {
			continue
		}
		normalized := normalizeSearchInput(candidate.Name)
		if normalized == target {
			return candidate, true
		}
		score := similarity(target, normalized)
		if score >= minArtistSimilarity && score > bestScore {
			bestScore = score
			bestIndex = i
		}
	}

	if bestIndex >= 0 {
		return candidates[bestIndex], true
	}
	for _, candidate := range candidates {
		if candidate.ID != "" {
			return candidate, true
		}
	}
	return spotifyArtist{}, false
}

func similarity(a string, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}

	distance := levenshteinDistance(a, b)
	return 1.0 - float64(distance)/float64(maxLen)
}

func levenshteinDistance(a string, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,
				curr[j-1]+1,
				prev[j-1]+cost,
			)
		}
		copy(prev, curr)
	}

	return prev[len(rb)]
}
