package ports

import "context"

// Entry is one feed item as published, newest first. Entries without a
// resolvable media URL are dropped by the adapter before they get here.
type Entry struct {
	URL   string
	Title string
}

// FeedSource fetches the raw entry list for a feed URL. Implementations
// return errors wrapping domain.ErrFeedUnavailable for network and parse
// failures so callers can fall back to persisted state.
type FeedSource interface {
	Fetch(ctx context.Context, feedURL string) ([]Entry, error)
}
