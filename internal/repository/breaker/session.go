// Package breaker guards a SessionRepository with a circuit breaker so that a
// failing backend is skipped instead of being waited on.
package breaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"

	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/domain"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/repository"
	apperrors "github.com/akshansh2332/driftclic-aesthetic-studio/pkg/errors"
)

// Config holds configuration for the circuit breaker.
type Config struct {
	// Name identifies this breaker in metrics and logs.
	Name string

	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts. 0 never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open before moving to half-open.
	Timeout time.Duration

	// FailureRatio trips the breaker once this share of calls has failed.
	FailureRatio float64

	// MinRequests is the number of calls needed before FailureRatio is evaluated.
	MinRequests uint32
}

// DefaultConfig returns the settings used for the session backend.
func DefaultConfig(name string) Config {
	return Config{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      15 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// ErrOpen is returned by the wrapped backend while the circuit is open.
var ErrOpen = gobreaker.ErrOpenState

var breakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "storefront_circuit_breaker_state",
		Help: "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
	},
	[]string{"name"},
)

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// SessionRepository decorates another repository.SessionRepository.
type SessionRepository struct {
	next    repository.SessionRepository
	breaker *gobreaker.CircuitBreaker[*domain.Session]
	name    string
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository wraps next with a circuit breaker.
func NewSessionRepository(next repository.SessionRepository, cfg Config, logger *slog.Logger) *SessionRepository {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
		// A missing session is an answer, not a backend failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, apperrors.ErrNotFound)
		},
	}

	breakerState.WithLabelValues(cfg.Name).Set(0)

	return &SessionRepository{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[*domain.Session](settings),
		name:    cfg.Name,
	}
}

// Get reads through the breaker.
func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	s, err := r.breaker.Execute(func() (*domain.Session, error) {
		return r.next.Get(ctx, id)
	})
	return s, r.translate(err)
}

// Save writes through the breaker.
func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	_, err := r.breaker.Execute(func() (*domain.Session, error) {
		return nil, r.next.Save(ctx, session)
	})
	return r.translate(err)
}

// Delete removes through the breaker.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.breaker.Execute(func() (*domain.Session, error) {
		return nil, r.next.Delete(ctx, id)
	})
	return r.translate(err)
}

// State returns the current state of the circuit breaker.
func (r *SessionRepository) State() gobreaker.State {
	return r.breaker.State()
}

func (r *SessionRepository) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.Unavailable(r.name, err)
	}
	return err
}
