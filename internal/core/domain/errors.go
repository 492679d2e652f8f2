package domain

import "errors"

var (
	ErrNotFound       = errors.New("domain: not found")
	ErrDuplicateTrack = errors.New("domain: duplicate track")
	ErrUnknownArc     = errors.New("domain: unknown arc")
	ErrInvalidOptions = errors.New("domain: invalid curation options")

	// ErrNoTracks means curation produced nothing usable.
	ErrNoTracks = errors.New("domain: no suitable tracks")
)
