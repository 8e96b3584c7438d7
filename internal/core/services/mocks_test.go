package services

import (
	"context"
	"io"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/earshot-labs/earshot/internal/core/domain"
	"github.com/earshot-labs/earshot/internal/core/ports"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

type mockFeed struct {
	entries []ports.Entry
	err     error
	calls   int
}

func (m *mockFeed) Fetch(ctx context.Context, feedURL string) ([]ports.Entry, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

// feedOf builds n entries in published order (newest first), so entry 0 is
// episode n.
func feedOf(n int) []ports.Entry {
	entries := make([]ports.Entry, 0, n)
	for i := n; i >= 1; i-- {
		tok := strconv.Itoa(i)
		entries = append(entries, ports.Entry{
			URL:   "https://cdn.test/ep" + tok + ".mp3",
			Title: "Episode " + tok,
		})
	}
	return entries
}

type mockStore struct {
	state   domain.UserState
	found   bool
	loadErr error
	saveErr error
	saves   int
}

func (m *mockStore) Load(ctx context.Context, userID string) (domain.UserState, error) {
	if m.loadErr != nil {
		return domain.UserState{}, m.loadErr
	}
	if !m.found {
		return domain.UserState{}, domain.ErrNotFound
	}
	return m.state, nil
}

func (m *mockStore) Save(ctx context.Context, userID string, state domain.UserState) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.state = state
	m.found = true
	return nil
}

type mockSigner struct {
	url string
	err error
}

func (m *mockSigner) Sign(objectKey string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.url, nil
}

type mockProber struct {
	submitted []domain.Track
}

func (m *mockProber) Submit(track domain.Track) {
	m.submitted = append(m.submitted, track)
}
