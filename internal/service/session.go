// Package service hosts the storefront use cases. It owns one store per
// shopper session and wires each store to persistence, events and metrics.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/domain"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/repository"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/store"
	apperrors "github.com/akshansh2332/driftclic-aesthetic-studio/pkg/errors"
	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/tracing"
)

// Catalog is the read side of the product catalog the service validates against.
type Catalog interface {
	Get(id string) (domain.Product, error)
	Exists(id string) bool
	Resolve(ids []string) []domain.Product
}

// ChangeHandler receives every effective store change. The event producer
// implements it.
type ChangeHandler interface {
	HandleChange(ctx context.Context, c store.Change) error
}

// Options configures a SessionService.
type Options struct {
	// TTL is how long a session may stay idle before the janitor evicts it.
	TTL time.Duration
	// Events receives store changes for publishing. Nil disables publishing.
	Events ChangeHandler
	// Now overrides the clock.
	Now func() time.Time
}

type liveSession struct {
	store    *store.Store
	lastSeen time.Time
	watchers int
	unsubs   []func()
}

// SessionService maps session ids to live stores.
type SessionService struct {
	catalog   Catalog
	repo      repository.SessionRepository
	persister *persister
	events    ChangeHandler
	logger    *slog.Logger
	tracer    trace.Tracer
	ttl       time.Duration
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*liveSession
}

// NewSessionService creates a new session service.
func NewSessionService(catalog Catalog, repo repository.SessionRepository, logger *slog.Logger, opts Options) *SessionService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SessionService{
		catalog:   catalog,
		repo:      repo,
		persister: newPersister(repo, logger),
		events:    opts.Events,
		logger:    logger,
		tracer:    tracing.Tracer("storefront/service"),
		ttl:       opts.TTL,
		now:       opts.Now,
		sessions:  make(map[string]*liveSession),
	}
}

// Run drives snapshot persistence until ctx is cancelled, then writes
// whatever is still pending.
func (s *SessionService) Run(ctx context.Context) {
	s.persister.run(ctx)
}

// Flush writes pending snapshots synchronously. It returns the number of
// snapshots that could not be written.
func (s *SessionService) Flush(ctx context.Context) int {
	return s.persister.flush(ctx)
}

// CreateSession starts a new session with an empty cart and wishlist.
func (s *SessionService) CreateSession(ctx context.Context) (domain.Session, error) {
	ctx, span := s.tracer.Start(ctx, "SessionService.CreateSession")
	defer span.End()

	id := uuid.NewString()
	st := store.New(id, store.WithClock(s.now))

	s.mu.Lock()
	s.attach(id, st)
	s.mu.Unlock()

	snap := st.Snapshot()
	s.persister.enqueue(snap)
	SessionsTotal.WithLabelValues("created").Inc()

	span.SetAttributes(attribute.String("session.id", id))
	s.logger.InfoContext(ctx, "session created", slog.String("session_id", id))
	return snap, nil
}

// EndSession discards the live store and the stored snapshot.
func (s *SessionService) EndSession(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "SessionService.EndSession",
		trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	if id == "" {
		return errMissingSession
	}

	s.mu.Lock()
	ls, live := s.sessions[id]
	if live {
		s.detach(id, ls)
	}
	s.mu.Unlock()

	if !live {
		if _, err := s.repo.Get(ctx, id); err != nil {
			return err
		}
	}

	if err := s.persister.drop(ctx, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}

	SessionsTotal.WithLabelValues("ended").Inc()
	s.logger.InfoContext(ctx, "session ended", slog.String("session_id", id))
	return nil
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were evicted. Sessions with an open change stream are kept. Evicted
// sessions can still be restored from the repository until it expires them.
//
// A session whose latest state is not stored yet is written first. If that
// write fails the session stays in memory and the next sweep tries again.
func (s *SessionService) Sweep(ctx context.Context) int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)
	idle := func(ls *liveSession) bool {
		return ls.watchers == 0 && !ls.lastSeen.After(cutoff)
	}

	s.mu.Lock()
	candidates := make(map[string]*store.Store)
	for id, ls := range s.sessions {
		if idle(ls) {
			candidates[id] = ls.store
		}
	}
	s.mu.Unlock()

	var evicted int
	for id, st := range candidates {
		if err := s.persister.saveDirty(ctx, st.Snapshot()); err != nil {
			SessionsTotal.WithLabelValues("eviction_deferred").Inc()
			s.logger.WarnContext(ctx, "keeping idle session with unsaved changes",
				slog.String("session_id", id),
				slog.String("error", err.Error()),
			)
			continue
		}

		s.mu.Lock()
		ls, ok := s.sessions[id]
		ok = ok && ls.store == st && idle(ls)
		if ok {
			s.detach(id, ls)
		}
		s.mu.Unlock()
		if !ok {
			continue
		}

		evicted++
		SessionsTotal.WithLabelValues("expired").Inc()
		s.logger.DebugContext(ctx, "session expired", slog.String("session_id", id))
	}
	return evicted
}

// RunJanitor calls Sweep every interval until ctx is cancelled. Extra
// sweepers, such as a repository's own expiry, run on the same tick.
func (s *SessionService) RunJanitor(ctx context.Context, interval time.Duration, extra ...func(context.Context) int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := s.Sweep(ctx)
			for _, fn := range extra {
				n += fn(ctx)
			}
			if n > 0 {
				s.logger.InfoContext(ctx, "janitor evicted sessions", slog.Int("count", n))
			}
		}
	}
}

// Watch subscribes fn to the session's changes and returns the current
// snapshot. fn runs while the store is locked and must not block. The
// session is not evicted while watched.
func (s *SessionService) Watch(ctx context.Context, id string, fn store.Listener) (domain.Session, func(), error) {
	st, err := s.session(ctx, id)
	if err != nil {
		return domain.Session{}, nil, err
	}

	unsubscribe := st.Subscribe(fn)

	s.mu.Lock()
	if ls, ok := s.sessions[id]; ok && ls.store == st {
		ls.watchers++
	}
	s.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			unsubscribe()
			s.mu.Lock()
			if ls, ok := s.sessions[id]; ok && ls.store == st && ls.watchers > 0 {
				ls.watchers--
				ls.lastSeen = s.now()
			}
			s.mu.Unlock()
		})
	}
	return st.Snapshot(), stop, nil
}

// ActiveSessions returns the number of live sessions.
func (s *SessionService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

var errMissingSession = apperrors.Unauthorized("session id is required")

// session returns the live store for id, restoring it from the repository
// when it is not in memory.
func (s *SessionService) session(ctx context.Context, id string) (*store.Store, error) {
	if id == "" {
		return nil, errMissingSession
	}

	s.mu.Lock()
	if ls, ok := s.sessions[id]; ok {
		ls.lastSeen = s.now()
		s.mu.Unlock()
		return ls.store, nil
	}
	s.mu.Unlock()

	snap, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("session", id)
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}
	snap.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	if ls, ok := s.sessions[id]; ok {
		ls.lastSeen = s.now()
		return ls.store, nil
	}
	st := store.Restore(*snap, store.WithClock(s.now))
	s.attach(id, st)
	SessionsTotal.WithLabelValues("restored").Inc()
	s.logger.DebugContext(ctx, "session restored",
		slog.String("session_id", id),
		slog.Int("version", snap.Version),
	)
	return st, nil
}

// attach registers st under id and subscribes the service listeners.
// Callers hold s.mu.
func (s *SessionService) attach(id string, st *store.Store) {
	ls := &liveSession{store: st, lastSeen: s.now()}
	ls.unsubs = append(ls.unsubs, st.Subscribe(s.onChange))
	s.sessions[id] = ls
	SessionsActive.Set(float64(len(s.sessions)))
}

// detach removes id and unsubscribes the service listeners. Callers hold s.mu.
func (s *SessionService) detach(id string, ls *liveSession) {
	for _, unsub := range ls.unsubs {
		unsub()
	}
	delete(s.sessions, id)
	SessionsActive.Set(float64(len(s.sessions)))
}

// onChange runs for every effective change of every live store, while the
// store is locked.
func (s *SessionService) onChange(c store.Change) {
	StoreChanges.WithLabelValues(string(c.Op)).Inc()
	if c.Op.AffectsCart() {
		CartValue.Observe(c.Snapshot.TotalAmount().InexactFloat64())
	}

	s.persister.enqueue(c.Snapshot)
}

// publish hands a change to the event handler under the context of the
// request that caused it.
func (s *SessionService) publish(ctx context.Context, c store.Change) {
	if s.events == nil {
		return
	}
	if err := s.events.HandleChange(ctx, c); err != nil {
		EventPublishErrors.Inc()
		s.logger.WarnContext(ctx, "failed to publish storefront event",
			slog.String("session_id", c.Snapshot.ID),
			slog.String("op", string(c.Op)),
			slog.String("error", err.Error()),
		)
	}
}
