package repository

import (
	"context"

	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/domain"
)

// SessionRepository persists session snapshots. Implementations must ignore
// a Save whose Version is lower than the stored one, so a delayed write can
// never roll a session back.
type SessionRepository interface {
	// Get retrieves a snapshot by session ID. Missing or expired sessions
	// yield an error matching apperrors.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Save stores a snapshot, refreshing its expiry.
	Save(ctx context.Context, session *domain.Session) error

	// Delete removes a snapshot. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
}
