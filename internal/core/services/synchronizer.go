package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/earshot-labs/earshot/internal/core/domain"
	"github.com/earshot-labs/earshot/internal/core/ports"
)

// Synchronizer turns the feed into the canonical oldest-first playlist. It
// owns no persistent state; both operations are pure transforms over a fetch.
// Sync trusts the feed to only grow at the newest end: reordered or deleted
// historical entries are not detected.
type Synchronizer struct {
	source ports.FeedSource
	prober ports.MediaProber
	logger *log.Logger
}

// NewSynchronizer constructs a Synchronizer. prober may be nil.
func NewSynchronizer(source ports.FeedSource, prober ports.MediaProber, logger *log.Logger) *Synchronizer {
	return &Synchronizer{source: source, prober: prober, logger: logger}
}

// FetchFull builds the full playlist from the feed. Feeds arrive newest
// first, so entries are reversed into natural order and each track gets
// token = 1-based position.
func (s *Synchronizer) FetchFull(ctx context.Context, feedURL string) (domain.Playlist, error) {
	entries, err := s.source.Fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("sync: fetch feed: %w", err)
	}

	playlist := make(domain.Playlist, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		playlist = append(playlist, domain.Track{
			Token: strconv.Itoa(len(playlist) + 1),
			URL:   entries[i].URL,
			Title: entries[i].Title,
		})
	}
	return playlist, nil
}

// Extend refetches the feed and appends entries published since the stored
// playlist was built, continuing token assignment from the prior length.
// When the feed has not grown it returns the existing playlist unchanged.
// Newly appended tracks are handed to the prober for background inspection.
func (s *Synchronizer) Extend(ctx context.Context, feedURL string, existing domain.Playlist) (domain.Playlist, error) {
	entries, err := s.source.Fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("sync: refetch feed: %w", err)
	}
	if len(entries) <= len(existing) {
		return existing, nil
	}

	// Natural order: entries[len-1] is the oldest episode.
	natural := make([]ports.Entry, len(entries))
	for i, e := range entries {
		natural[len(entries)-1-i] = e
	}

	out := make(domain.Playlist, 0, len(natural))
	out = append(out, existing...)
	for i := len(existing); i < len(natural); i++ {
		t := domain.Track{
			Token: strconv.Itoa(i + 1),
			URL:   natural[i].URL,
			Title: natural[i].Title,
		}
		out = append(out, t)
		s.logger.Info("feed grew", "token", t.Token, "title", t.Title)
		if s.prober != nil {
			s.prober.Submit(t)
		}
	}
	return out, nil
}
