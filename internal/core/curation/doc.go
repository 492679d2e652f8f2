// Package curation turns a pool of candidate tracks and a free-text prompt into
// an ordered playlist.
//
// The engine runs in five steps:
//
//	signals := AnalyzePrompt(prompt)          // genres, moods, feature ranges, emotions
//	unique := Dedupe(tracks)                  // one recording per song
//	scored := Score(unique, signals, opts)    // popularity + feature fit + emotional fit
//	picked := SelectDiverse(scored.Tracks, n) // per-artist cap
//	ordered := Sequence(picked, arc)          // energy arc + artist spacing
//
// Curate wires the steps together. Every function is a pure transformation
// over caller-owned slices; randomness comes only from the *rand.Rand passed
// in ScoreOptions.
package curation
