package curation

import (
	"regexp"
	"strings"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
)

type keywordSet struct {
	name     string
	patterns []*regexp.Regexp
}

func newKeywordSet(name string, keywords ...string) keywordSet {
	return keywordSet{name: name, patterns: compileWords(keywords)}
}

// wordPattern matches kw as a whole word or phrase, allowing a plural suffix,
// so "work" does not fire inside "workout" while "1960" still matches "1960s".
func wordPattern(kw string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `(?:s|es)?\b`)
}

func compileWords(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		out[i] = wordPattern(w)
	}
	return out
}

var genreKeywords = []keywordSet{
	newKeywordSet("rock", "rock", "alternative", "grunge", "punk"),
	newKeywordSet("pop", "pop", "top 40", "mainstream"),
	newKeywordSet("jazz", "jazz", "bebop", "swing"),
	newKeywordSet("classical", "classical", "orchestra", "symphony", "piano"),
	newKeywordSet("electronic", "electronic", "edm", "techno", "house", "trance", "dubstep"),
	newKeywordSet("hip-hop", "hip hop", "hip-hop", "rap", "trap"),
	newKeywordSet("r-n-b", "r&b", "rnb", "soul", "neo-soul"),
	newKeywordSet("country", "country", "bluegrass", "folk"),
	newKeywordSet("indie", "indie", "independent", "alt"),
	newKeywordSet("metal", "metal", "heavy metal", "death metal", "black metal"),
	newKeywordSet("blues", "blues", "delta blues"),
	newKeywordSet("reggae", "reggae", "ska", "dub"),
	newKeywordSet("latin", "latin", "salsa", "bachata", "reggaeton"),
	newKeywordSet("ambient", "ambient", "atmospheric", "drone"),
	newKeywordSet("funk", "funk", "funky", "groove"),
}

var moodKeywords = []keywordSet{
	newKeywordSet("happy", "happy", "upbeat", "cheerful", "joyful", "fun"),
	newKeywordSet("sad", "sad", "melancholic", "depressing", "heartbreak", "emotional"),
	newKeywordSet("energetic", "energetic", "intense", "powerful", "pumped", "hype"),
	newKeywordSet("chill", "chill", "relaxing", "calm", "mellow", "peaceful", "laid back"),
	newKeywordSet("romantic", "romantic", "love", "sensual", "intimate"),
	newKeywordSet("angry", "angry", "aggressive", "rage", "intense"),
	newKeywordSet("focus", "focus", "concentration", "study", "work", "productive"),
	newKeywordSet("party", "party", "dance", "club", "celebration"),
}

var decadeKeywords = []keywordSet{
	newKeywordSet("1960s", "60s", "1960", "sixties"),
	newKeywordSet("1970s", "70s", "1970", "seventies"),
	newKeywordSet("1980s", "80s", "1980", "eighties"),
	newKeywordSet("1990s", "90s", "1990", "nineties"),
	newKeywordSet("2000s", "2000s", "2000", "y2k"),
	newKeywordSet("2010s", "2010s", "2010"),
	newKeywordSet("2020s", "2020s", "2020", "recent", "new", "modern", "current"),
}

var contextKeywords = []keywordSet{
	newKeywordSet("workout", "workout", "exercise", "gym", "running", "training"),
	newKeywordSet("study", "study", "studying", "homework", "reading", "concentration"),
	newKeywordSet("sleep", "sleep", "sleeping", "bedtime", "lullaby"),
	newKeywordSet("party", "party", "parties", "celebration", "dance"),
	newKeywordSet("road_trip", "road trip", "driving", "car", "travel"),
	newKeywordSet("dinner", "dinner", "dining", "restaurant", "cooking"),
	newKeywordSet("coffee_shop", "coffee", "cafe", "coffeehouse"),
	newKeywordSet("morning", "morning", "wake up", "sunrise"),
}

var artistIndicators = []string{"by ", "like ", "similar to ", "artist:", "artists:"}

// featureRule narrows a FeatureRange when its predicate holds. Rules run in
// table order and later rules overwrite bounds set by earlier ones.
type featureRule struct {
	when  func(moods, contexts []string) bool
	apply func(r *domain.FeatureRange)
}

var featureRules = []featureRule{
	{
		when:  hasMood("happy"),
		apply: func(r *domain.FeatureRange) { r.MinValence = 0.5 },
	},
	{
		when:  hasMood("sad"),
		apply: func(r *domain.FeatureRange) { r.MaxValence = 0.4 },
	},
	{
		when: hasMood("energetic"),
		apply: func(r *domain.FeatureRange) {
			r.MinEnergy = 0.7
			r.MinTempo = 120
		},
	},
	{
		when: hasMood("chill"),
		apply: func(r *domain.FeatureRange) {
			r.MaxEnergy = 0.5
			r.MaxTempo = 110
		},
	},
	{
		when: hasMood("party"),
		apply: func(r *domain.FeatureRange) {
			r.MinDanceability = 0.6
			r.MinEnergy = 0.6
		},
	},
	{
		when: hasContext("workout"),
		apply: func(r *domain.FeatureRange) {
			r.MinEnergy = 0.7
			r.MinTempo = 120
		},
	},
	{
		when: func(moods, contexts []string) bool {
			return containsString(contexts, "study") || containsString(moods, "focus")
		},
		apply: func(r *domain.FeatureRange) {
			r.MaxEnergy = 0.5
			r.MinTempo = 60
			r.MaxTempo = 120
		},
	},
	{
		when: hasContext("sleep"),
		apply: func(r *domain.FeatureRange) {
			r.MaxEnergy = 0.3
			r.MaxTempo = 80
		},
	},
	{
		when: hasContext("coffee_shop"),
		apply: func(r *domain.FeatureRange) {
			r.MaxEnergy = 0.6
			r.MinValence = 0.3
		},
	},
}

// AnalyzePrompt derives musical intent signals from free text.
func AnalyzePrompt(prompt string) domain.PromptSignals {
	lower := strings.ToLower(prompt)

	moods := matchKeywords(lower, moodKeywords)
	contexts := matchKeywords(lower, contextKeywords)

	return domain.PromptSignals{
		Prompt:     prompt,
		Genres:     matchKeywords(lower, genreKeywords),
		Moods:      moods,
		Decades:    matchKeywords(lower, decadeKeywords),
		Contexts:   contexts,
		Artists:    extractArtists(prompt, lower),
		Features:   TargetFeatures(moods, contexts),
		Emotional:  AnalyzeEmotions(prompt),
		Enrichment: EnrichPrompt(prompt),
	}
}

// TargetFeatures narrows the full feature range using detected moods and contexts.
func TargetFeatures(moods, contexts []string) domain.FeatureRange {
	r := domain.FullFeatureRange()
	for _, rule := range featureRules {
		if rule.when(moods, contexts) {
			rule.apply(&r)
		}
	}
	return r
}

func matchKeywords(lower string, table []keywordSet) []string {
	matched := []string{}
	for _, set := range table {
		for _, re := range set.patterns {
			if re.MatchString(lower) {
				matched = append(matched, set.name)
				break
			}
		}
	}
	return matched
}

// extractArtists takes up to three words after each artist indicator.
func extractArtists(prompt, lower string) []string {
	source := prompt
	if len(source) != len(lower) {
		// lowercasing changed byte offsets; indices into prompt would be wrong
		source = lower
	}

	artists := []string{}
	for _, indicator := range artistIndicators {
		idx := strings.Index(lower, indicator)
		if idx < 0 {
			continue
		}
		words := strings.Fields(source[idx+len(indicator):])
		if len(words) == 0 {
			continue
		}
		if len(words) > 3 {
			words = words[:3]
		}
		name := strings.TrimRight(strings.Join(words, " "), ",")
		name = strings.TrimRight(name, ".")
		artists = append(artists, name)
	}
	return artists
}

func hasMood(mood string) func(moods, contexts []string) bool {
	return func(moods, _ []string) bool { return containsString(moods, mood) }
}

func hasContext(context string) func(moods, contexts []string) bool {
	return func(_, contexts []string) bool { return containsString(contexts, context) }
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
