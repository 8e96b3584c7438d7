package ports

import (
	"context"

	"github.com/earshot-labs/earshot/internal/core/domain"
)

// SessionStore persists the per-user {playlist, session} aggregate. Load
// returns domain.ErrNotFound when no record exists. Saves are last-write-wins:
// the store provides no locking, and overlapping requests for the same user
// are possible. Other failures wrap domain.ErrStoreUnavailable.
type SessionStore interface {
	Load(ctx context.Context, userID string) (domain.UserState, error)
	Save(ctx context.Context, userID string, state domain.UserState) error
}
