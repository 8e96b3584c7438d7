package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/earshot-labs/earshot/internal/core/domain"
	"github.com/earshot-labs/earshot/internal/core/ports"
	"github.com/earshot-labs/earshot/internal/core/services"
)

type stubFeed struct {
	entries []ports.Entry
	err     error
}

func (f *stubFeed) Fetch(ctx context.Context, feedURL string) ([]ports.Entry, error) {
	return f.entries, f.err
}

// memoryStore is a map-backed session store for exercising the full handler
// path without a database.
type memoryStore struct {
	mu      sync.Mutex
	states  map[string]domain.UserState
	saveErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{states: make(map[string]domain.UserState)}
}

func (m *memoryStore) Load(ctx context.Context, userID string) (domain.UserState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[userID]
	if !ok {
		return domain.UserState{}, domain.ErrNotFound
	}
	return st, nil
}

func (m *memoryStore) Save(ctx context.Context, userID string, state domain.UserState) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = state
	return nil
}

func newTestHandler(t *testing.T, store ports.SessionStore) *Handler {
	t.Helper()
	logger := log.New(io.Discard)
	feed := &stubFeed{entries: []ports.Entry{
		{URL: "https://cdn.test/ep3.mp3", Title: "Episode 3"},
		{URL: "https://cdn.test/ep2.mp3", Title: "Episode 2"},
		{URL: "https://cdn.test/ep1.mp3", Title: "Episode 1"},
	}}
	synchronizer := services.NewSynchronizer(feed, nil, logger)
	player := services.NewPlayer(
		services.Config{FeedURL: "https://feeds.test/rss", SkillName: "Test Cast"},
		store, synchronizer, nil, services.DefaultPrompts(), logger,
	)
	return NewHandler(player, logger)
}

func postEvent(h *Handler, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/users/"+userID+"/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_HealthCheck(t *testing.T) {
	h := newTestHandler(t, newMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected a request ID header")
	}
}

func TestHandler_HandleEvent(t *testing.T) {
	store := newMemoryStore()
	h := newTestHandler(t, store)

	rec := postEvent(h, "user-1", `{"kind":"play-newest"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp domain.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.Command.Action != domain.ActionReplace || resp.Command.Token != "3" {
		t.Fatalf("unexpected command: %+v", resp.Command)
	}
	if _, err := store.Load(context.Background(), "user-1"); err != nil {
		t.Fatalf("expected state persisted for user-1: %v", err)
	}
}

func TestHandler_HandleEventParameters(t *testing.T) {
	h := newTestHandler(t, newMemoryStore())

	rec := postEvent(h, "user-1", `{"kind":"choose","parameters":{"episode":"2"}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp domain.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.Command.Token != "2" {
		t.Fatalf("unexpected command: %+v", resp.Command)
	}
}

func TestHandler_HandleEventRejectsBadInput(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		wantStatus  int
	}{
		{
			name:        "malformed json",
			body:        `{"kind":`,
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "missing kind",
			body:        `{"parameters":{"episode":"2"}}`,
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "wrong content type",
			body:        `{"kind":"launch"}`,
			contentType: "text/plain",
			wantStatus:  http.StatusUnsupportedMediaType,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(t, newMemoryStore())

			req := httptest.NewRequest(http.MethodPost, "/v1/users/user-1/events", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.contentType)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON body: %v", err)
			}
			if body["error"] == "" {
				t.Fatalf("expected an error message, got %v", body)
			}
		})
	}
}

func TestHandler_StoreFailureReturns500WithApology(t *testing.T) {
	store := newMemoryStore()
	store.saveErr = fmt.Errorf("%w: disk gone", domain.ErrStoreUnavailable)
	h := newTestHandler(t, store)

	rec := postEvent(h, "user-1", `{"kind":"play-newest"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var resp domain.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.Speech == "" {
		t.Fatal("aborted turns must still carry speech")
	}
}

func TestHandler_UnknownRoute(t *testing.T) {
	h := newTestHandler(t, newMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/v1/nope", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
