package curation

import (
	"math/rand"
	"time"
)

func newRand() *rand.Rand {
	// #nosec G404 -- playlist shuffling, not security-sensitive
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// NewSeededRand returns a deterministic source for reproducible curation.
func NewSeededRand(seed int64) *rand.Rand {
	// #nosec G404 -- deterministic RNG for reproducible ordering
	return rand.New(rand.NewSource(seed))
}
