package worker

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// probeLimit caps how much of an enclosure is downloaded per probe. Decoding
// the head is enough to confirm the media is playable.
const probeLimit = 256 * 1024

var probeClient = &http.Client{Timeout: 30 * time.Second}

// probeResult summarizes one decoded enclosure head.
type probeResult struct {
	SampleRate int
	// Decoded is the duration of audio recovered from the probed bytes.
	Decoded time.Duration
}

func probeEnclosure(url string) (probeResult, error) {
	resp, err := probeClient.Get(url)
	if err != nil {
		return probeResult{}, fmt.Errorf("enclosure fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return probeResult{}, fmt.Errorf("enclosure fetch status %d", resp.StatusCode)
	}

	decoder, err := mp3.NewDecoder(io.LimitReader(resp.Body, probeLimit))
	if err != nil {
		return probeResult{}, fmt.Errorf("enclosure decode failed: %w", err)
	}

	buf := make([]byte, 4096)
	var decodedBytes int64
	for {
		n, err := decoder.Read(buf)
		decodedBytes += int64(n)
		if err == io.EOF {
			break
		}
		if err != nil {
			return probeResult{}, fmt.Errorf("enclosure decode failed: %w", err)
		}
	}

	// Decoded stream is 16-bit stereo: 4 bytes per sample.
	sampleRate := decoder.SampleRate()
	samples := decodedBytes / 4
	return probeResult{
		SampleRate: sampleRate,
		Decoded:    time.Duration(samples) * time.Second / time.Duration(sampleRate),
	}, nil
}
