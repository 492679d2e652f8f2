package domain

// FeatureRange bounds the audio features a prompt asks for.
type FeatureRange struct {
	MinEnergy       float64 `json:"min_energy"`
	MaxEnergy       float64 `json:"max_energy"`
	MinValence      float64 `json:"min_valence"`
	MaxValence      float64 `json:"max_valence"`
	MinTempo        float64 `json:"min_tempo"`
	MaxTempo        float64 `json:"max_tempo"`
	MinDanceability float64 `json:"min_danceability"`
	MaxDanceability float64 `json:"max_danceability"`
}

// FullFeatureRange accepts every track.
func FullFeatureRange() FeatureRange {
	return FeatureRange{
		MaxEnergy:       1,
		MaxValence:      1,
		MaxTempo:        250,
		MaxDanceability: 1,
	}
}

func (r FeatureRange) EnergyOK(v float64) bool  { return r.MinEnergy <= v && v <= r.MaxEnergy }
func (r FeatureRange) ValenceOK(v float64) bool { return r.MinValence <= v && v <= r.MaxValence }
func (r FeatureRange) TempoOK(v float64) bool   { return r.MinTempo <= v && v <= r.MaxTempo }
func (r FeatureRange) DanceabilityOK(v float64) bool {
	return r.MinDanceability <= v && v <= r.MaxDanceability
}

// Emotion is one detected emotion word.
type Emotion struct {
	Label     string  `json:"emotion"`
	Valence   float64 `json:"valence"`
	Energy    float64 `json:"energy"`
	Category  string  `json:"category"`
	Intensity float64 `json:"intensity"`
}

// EmotionalProfile is the richer valence/energy reading of a prompt.
type EmotionalProfile struct {
	Emotions  []Emotion `json:"emotions"`
	Intensity float64   `json:"intensity"`
	// Excluded holds words following a negation. Informational only.
	Excluded      []string `json:"excluded_emotions"`
	ArcHint       string   `json:"emotional_arc,omitempty"`
	TargetValence float64  `json:"target_valence"`
	TargetEnergy  float64  `json:"target_energy"`
}

// Comparison is a "like X but Y" request.
type Comparison struct {
	Reference string `json:"reference"`
	Modifier  string `json:"modifier"`
}

// PromptEnrichment holds secondary phrasing cues. Informational only.
type PromptEnrichment struct {
	Comparisons       []Comparison `json:"comparisons"`
	Exclusions        []string     `json:"exclusions"`
	TemporalModifiers []string     `json:"temporal_modifiers"`
	ReferenceArtists  []string     `json:"reference_artists"`
}

// PromptSignals is the structured intent derived from a free-text prompt.
type PromptSignals struct {
	Prompt     string           `json:"original_prompt"`
	Genres     []string         `json:"genres"`
	Moods      []string         `json:"moods"`
	Decades    []string         `json:"decades"`
	Contexts   []string         `json:"contexts"`
	Artists    []string         `json:"artists"`
	Features   FeatureRange     `json:"audio_features"`
	Emotional  EmotionalProfile `json:"emotional_analysis"`
	Enrichment PromptEnrichment `json:"enriched_prompt"`
}
