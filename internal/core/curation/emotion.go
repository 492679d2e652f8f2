package curation

import (
	"regexp"
	"strings"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
)

const (
	baselineIntensity = 0.5
	intensityStep     = 0.2
)

var highIntensityWords = compileWords([]string{
	"extremely", "deeply", "intensely", "very", "incredibly",
	"overwhelmingly", "devastated", "ecstatic", "furious",
	"heartbroken", "euphoric", "desperate",
})

var lowIntensityWords = compileWords([]string{
	"slightly", "a bit", "somewhat", "gently", "mildly",
	"quietly", "softly", "subtly", "hint of",
})

type emotionEntry struct {
	label    string
	valence  float64
	energy   float64
	category string
}

var emotionVocabulary = []emotionEntry{
	{"joy", 0.9, 0.7, "positive"},
	{"happy", 0.8, 0.6, "positive"},
	{"ecstatic", 1.0, 0.9, "positive"},
	{"content", 0.7, 0.4, "positive"},
	{"peaceful", 0.6, 0.2, "positive"},
	{"hopeful", 0.7, 0.5, "positive"},
	{"triumphant", 0.9, 0.9, "positive"},

	{"sad", 0.2, 0.3, "negative"},
	{"melancholy", 0.3, 0.3, "negative"},
	{"melancholic", 0.3, 0.3, "negative"},
	{"heartbroken", 0.1, 0.4, "negative"},
	{"devastated", 0.0, 0.5, "negative"},
	{"lonely", 0.2, 0.2, "negative"},
	{"nostalgic", 0.4, 0.3, "mixed"},
	{"bittersweet", 0.4, 0.4, "mixed"},
	{"wistful", 0.4, 0.3, "mixed"},

	{"angry", 0.2, 0.9, "negative"},
	{"furious", 0.1, 1.0, "negative"},
	{"frustrated", 0.3, 0.7, "negative"},
	{"rage", 0.1, 1.0, "negative"},

	{"anxious", 0.3, 0.6, "negative"},
	{"tense", 0.3, 0.7, "negative"},
	{"restless", 0.4, 0.7, "mixed"},

	{"calm", 0.6, 0.2, "positive"},
	{"relaxed", 0.6, 0.2, "positive"},
	{"serene", 0.7, 0.1, "positive"},
	{"dreamy", 0.6, 0.3, "positive"},

	{"romantic", 0.7, 0.4, "positive"},
	{"sensual", 0.6, 0.5, "positive"},
	{"passionate", 0.7, 0.7, "positive"},
	{"longing", 0.4, 0.4, "mixed"},

	{"empowered", 0.8, 0.8, "positive"},
	{"confident", 0.8, 0.7, "positive"},
	{"rebellious", 0.5, 0.8, "mixed"},
	{"defiant", 0.5, 0.8, "mixed"},

	{"reflective", 0.5, 0.3, "neutral"},
	{"introspective", 0.5, 0.2, "neutral"},
	{"contemplative", 0.5, 0.2, "neutral"},
	{"thoughtful", 0.5, 0.3, "neutral"},
}

var emotionPatterns = func() []*regexp.Regexp {
	labels := make([]string, len(emotionVocabulary))
	for i, e := range emotionVocabulary {
		labels[i] = e.label
	}
	return compileWords(labels)
}()

var negationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bnot\s+(\w+)`),
	regexp.MustCompile(`\bwithout\s+(\w+)`),
	regexp.MustCompile(`\bno\s+(\w+)`),
	regexp.MustCompile(`\bnever\s+(\w+)`),
	regexp.MustCompile(`\banything but\s+(\w+)`),
}

// Arc hints. When several match, the last one in this table wins.
var arcHintPatterns = []struct {
	hint    string
	pattern *regexp.Regexp
}{
	{"build", regexp.MustCompile(`(build|crescendo|rise|grow|escalate)`)},
	{"fade", regexp.MustCompile(`(fade|wind down|slow down|decrease|calm)`)},
	{"peak", regexp.MustCompile(`(peak|climax|apex|high point)`)},
	{"journey", regexp.MustCompile(`(journey|arc|progression|evolve)`)},
}

// arcForHint maps an emotional arc hint onto a sequencing arc.
var arcForHint = map[string]domain.Arc{
	"build":   domain.ArcBuild,
	"fade":    domain.ArcWindDown,
	"peak":    domain.ArcJourney,
	"journey": domain.ArcJourney,
}

// ArcForHint returns the sequencing arc an emotional arc hint asks for.
func ArcForHint(hint string) (domain.Arc, bool) {
	a, ok := arcForHint[hint]
	return a, ok
}

// AnalyzeEmotions reads emotion words, intensity adverbs, negations and arc
// hints out of a prompt.
func AnalyzeEmotions(prompt string) domain.EmotionalProfile {
	lower := strings.ToLower(prompt)

	intensity := baselineIntensity
	for _, re := range highIntensityWords {
		if re.MatchString(lower) {
			intensity = min(1.0, intensity+intensityStep)
		}
	}
	for _, re := range lowIntensityWords {
		if re.MatchString(lower) {
			intensity = max(0.0, intensity-intensityStep)
		}
	}

	emotions := []domain.Emotion{}
	for i, e := range emotionVocabulary {
		if emotionPatterns[i].MatchString(lower) {
			emotions = append(emotions, domain.Emotion{
				Label:     e.label,
				Valence:   e.valence,
				Energy:    e.energy,
				Category:  e.category,
				Intensity: intensity,
			})
		}
	}

	excluded := []string{}
	for _, re := range negationPatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			excluded = append(excluded, m[1])
		}
	}

	hint := ""
	for _, ap := range arcHintPatterns {
		if ap.pattern.MatchString(lower) {
			hint = ap.hint
		}
	}

	targetValence, targetEnergy := 0.5, 0.5
	if len(emotions) > 0 {
		var v, e float64
		for _, em := range emotions {
			v += em.Valence * em.Intensity
			e += em.Energy * em.Intensity
		}
		n := float64(len(emotions))
		targetValence, targetEnergy = v/n, e/n
	}

	return domain.EmotionalProfile{
		Emotions:      emotions,
		Intensity:     intensity,
		Excluded:      excluded,
		ArcHint:       hint,
		TargetValence: targetValence,
		TargetEnergy:  targetEnergy,
	}
}
