package ports

import "github.com/earshot-labs/earshot/internal/core/domain"

// MediaProber accepts newly published tracks for background inspection.
// Submit must not block the caller.
type MediaProber interface {
	Submit(track domain.Track)
}
