// Package worker provides background inspection of newly published episodes.
package worker

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/earshot-labs/earshot/internal/core/domain"
	"github.com/earshot-labs/earshot/internal/core/ports"
)

// Pool runs enclosure probes off the request path. Probe results are
// diagnostic only: a track that fails its probe still plays if the engine can
// stream it.
type Pool struct {
	jobs   chan domain.Track
	wg     sync.WaitGroup
	logger *log.Logger
}

var _ ports.MediaProber = (*Pool)(nil)

// NewPool creates a pool with the given queue size.
func NewPool(queueSize int, logger *log.Logger) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		jobs:   make(chan domain.Track, queueSize),
		logger: logger,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for track := range p.jobs {
				p.process(track)
			}
		}()
	}
}

// Stop waits for workers to finish after closing the queue.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

// Submit queues a probe without blocking; when the queue is full the job is
// dropped.
func (p *Pool) Submit(track domain.Track) {
	select {
	case p.jobs <- track:
	default:
		p.logger.Warn("probe queue full, dropping job", "token", track.Token)
	}
}

func (p *Pool) process(track domain.Track) {
	if track.URL == "" {
		p.logger.Warn("no enclosure url, skipping probe", "token", track.Token)
		return
	}

	result, err := probeEnclosure(track.URL)
	if err != nil {
		p.logger.Warn("enclosure probe failed", "token", track.Token, "url", track.URL, "err", err)
		return
	}
	p.logger.Info("enclosure probed",
		"token", track.Token,
		"title", track.Title,
		"sample_rate", result.SampleRate,
		"probed_audio", result.Decoded,
	)
}
