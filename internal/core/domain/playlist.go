package domain

import (
	"fmt"
	"math/rand/v2"
	"strconv"
)

// Playlist is the ordered episode sequence for one user. The slice order is
// the current play order, which may be a shuffled permutation of natural
// order. Playlists only ever grow (sync appends at the end) or get reordered
// (shuffle); they are never truncated, so a lost save race cannot shorten one.
type Playlist []Track

// TrackAtOrdinal resolves a 1-based episode number in natural chronological
// numbering. Spoken episode numbers always refer to publication order, never
// to the current (possibly shuffled) play order, so the lookup goes by token.
func (p Playlist) TrackAtOrdinal(ordinal int) (Track, error) {
	if ordinal < 1 || ordinal > len(p) {
		return Track{}, fmt.Errorf("episode %d of %d: %w", ordinal, len(p), ErrInvalidSelection)
	}
	want := strconv.Itoa(ordinal)
	for _, t := range p {
		if t.Token == want {
			return t, nil
		}
	}
	return Track{}, fmt.Errorf("episode %d of %d: %w", ordinal, len(p), ErrInvalidSelection)
}

// IndexOfToken returns the current play-order position of the track with the
// given token. An unknown token resolves to position 0 rather than an error,
// matching the behavior playback reconciliation has always relied on.
func (p Playlist) IndexOfToken(token string) int {
	for i, t := range p {
		if t.Token == token {
			return i
		}
	}
	return 0
}

// Shuffle returns a new play order with the track at index moved to the front
// and the remaining tracks randomly permuted. Keeping the current track first
// means an active stream is never interrupted by the reshuffle. Tokens are
// untouched.
func (p Playlist) Shuffle(index int) Playlist {
	if len(p) == 0 {
		return p
	}
	if index < 0 || index >= len(p) {
		index = 0
	}
	current := p[index]
	rest := make(Playlist, 0, len(p)-1)
	rest = append(rest, p[:index]...)
	rest = append(rest, p[index+1:]...)
	rand.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})
	out := make(Playlist, 0, len(p))
	out = append(out, current)
	return append(out, rest...)
}

// Next returns the session advanced one position in play order, positioned at
// the start of the new track. At the last position it wraps to the front when
// looping, otherwise it returns ErrEndOfPlaylist and the session unchanged.
func Next(p Playlist, s PlaybackSession) (PlaybackSession, error) {
	switch {
	case s.Index < len(p)-1:
		s.Index++
	case s.Loop && len(p) > 0:
		s.Index = 0
	default:
		return s, ErrEndOfPlaylist
	}
	return s.moveTo(p, s.Index), nil
}

// Previous is the mirror of Next: decrement, wrap to the last position when
// looping, or signal ErrStartOfPlaylist without mutation.
func Previous(p Playlist, s PlaybackSession) (PlaybackSession, error) {
	switch {
	case s.Index > 0:
		s.Index--
	case s.Loop && len(p) > 0:
		s.Index = len(p) - 1
	default:
		return s, ErrStartOfPlaylist
	}
	return s.moveTo(p, s.Index), nil
}
