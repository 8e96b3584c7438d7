package worker

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/earshot-labs/earshot/internal/core/domain"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestPool_SubmitDropsWhenFull(t *testing.T) {
	// No workers started, so the queue never drains.
	p := NewPool(2, testLogger())

	for i := 0; i < 5; i++ {
		p.Submit(domain.Track{Token: "1"})
	}
	if got := len(p.jobs); got != 2 {
		t.Fatalf("expected 2 queued jobs, got %d", got)
	}
}

func TestPool_StartStopDrainsQueue(t *testing.T) {
	p := NewPool(8, testLogger())

	// Tracks without a URL are skipped inside process, so no network happens.
	for i := 0; i < 8; i++ {
		p.Submit(domain.Track{Token: "1"})
	}
	p.Start(3)
	p.Stop()

	if got := len(p.jobs); got != 0 {
		t.Fatalf("expected drained queue, got %d jobs", got)
	}
}

func TestPool_ClampsDegenerateSizes(t *testing.T) {
	p := NewPool(0, testLogger())
	if cap(p.jobs) != 1 {
		t.Fatalf("expected queue capacity 1, got %d", cap(p.jobs))
	}
	p.Start(0)
	p.Submit(domain.Track{Token: "1"})
	p.Stop()
}

func TestProbeEnclosure_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
		{
			name: "not mp3 data",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.Copy(w, strings.NewReader("definitely not audio"))
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			if _, err := probeEnclosure(srv.URL); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestProbeEnclosure_UnreachableHost(t *testing.T) {
	if _, err := probeEnclosure("http://127.0.0.1:1/nope.mp3"); err == nil {
		t.Fatal("expected a transport error")
	}
}
