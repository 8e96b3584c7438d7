package domain

import "errors"

// Sentinel errors shared across the core and its adapters. Adapters wrap them
// with fmt.Errorf and %w so callers branch with errors.Is.
var (
	// ErrNotFound is returned when no persisted record exists for a user.
	ErrNotFound = errors.New("record not found")

	// ErrFeedUnavailable covers any failure to fetch or decode the feed.
	// Callers with persisted state fall back to it.
	ErrFeedUnavailable = errors.New("feed unavailable")

	// ErrInvalidSelection is returned when a spoken episode number does not
	// resolve to a track.
	ErrInvalidSelection = errors.New("invalid episode selection")

	// ErrStoreUnavailable covers session store failures. It is the only error
	// that aborts a turn.
	ErrStoreUnavailable = errors.New("session store unavailable")

	// ErrEndOfPlaylist signals an advance past the last track without loop.
	ErrEndOfPlaylist = errors.New("end of playlist")

	// ErrStartOfPlaylist signals a step back past the first track without loop.
	ErrStartOfPlaylist = errors.New("start of playlist")
)
