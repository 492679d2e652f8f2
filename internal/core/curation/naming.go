package curation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultGenre stands in when a prompt names no genre.
const DefaultGenre = "pop"

// ArtistQueryPrefix marks a search query naming a referenced artist.
const ArtistQueryPrefix = "artist:"

var contextDisplayNames = map[string]string{
	"workout":     "Workout",
	"study":       "Study Session",
	"sleep":       "Sleep",
	"party":       "Party",
	"road_trip":   "Road Trip",
	"dinner":      "Dinner",
	"coffee_shop": "Coffee Shop",
	"morning":     "Morning",
}

var contextSearchTerms = map[string]string{
	"workout":     "workout energy",
	"study":       "focus instrumental",
	"sleep":       "sleep ambient",
	"party":       "party dance hits",
	"road_trip":   "road trip classics",
	"dinner":      "dinner jazz",
	"coffee_shop": "acoustic chill",
	"morning":     "morning feel good",
}

var titleCaser = cases.Title(language.English)

// PlaylistName builds a short descriptive name such as "Energetic Rock Workout Mix".
func PlaylistName(signals domain.PromptSignals) string {
	parts := []string{}
	if len(signals.Moods) > 0 {
		parts = append(parts, titleCaser.String(signals.Moods[0]))
	}
	parts = append(parts, titleCaser.String(genresOrDefault(signals)[0]))
	if len(signals.Contexts) > 0 {
		c := signals.Contexts[0]
		name, ok := contextDisplayNames[c]
		if !ok {
			name = titleCaser.String(c)
		}
		parts = append(parts, name)
	}
	if len(signals.Decades) > 0 {
		parts = append(parts, signals.Decades[0])
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, " ") + " Mix"
}

// PlaylistDescription is the description attached to a published playlist.
func PlaylistDescription(prompt string) string {
	return fmt.Sprintf("Curated playlist from: %q", prompt)
}

// SearchQueries turns signals into catalog search queries: up to three genre
// queries (narrowed to the first decade), one per referenced artist, up to two
// moods, and a phrase per context. With no genre detected DefaultGenre is
// searched, so the result is never empty.
func SearchQueries(signals domain.PromptSignals) []string {
	queries := []string{}

	genres := genresOrDefault(signals)
	if len(genres) > 3 {
		genres = genres[:3]
	}
	for _, g := range genres {
		q := "genre:" + g
		if len(signals.Decades) > 0 {
			if start, err := strconv.Atoi(signals.Decades[0][:4]); err == nil {
				q += fmt.Sprintf(" year:%d-%d", start, start+9)
			}
		}
		queries = append(queries, q)
	}

	for _, a := range signals.Artists {
		queries = append(queries, ArtistQueryPrefix+a)
	}

	moods := signals.Moods
	if len(moods) > 2 {
		moods = moods[:2]
	}
	queries = append(queries, moods...)

	for _, c := range signals.Contexts {
		if term, ok := contextSearchTerms[c]; ok {
			queries = append(queries, term)
		}
	}
	return queries
}

func genresOrDefault(signals domain.PromptSignals) []string {
	if len(signals.Genres) == 0 {
		return []string{DefaultGenre}
	}
	return signals.Genres
}
