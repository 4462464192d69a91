package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/domain"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/repository"
)

const saveTimeout = 2 * time.Second

// persister writes session snapshots in the background. Only the latest
// pending snapshot per session is kept, so a burst of changes costs one write.
type persister struct {
	repo   repository.SessionRepository
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]domain.Session
	// failed holds the version of the last write that failed per session,
	// until a later write succeeds.
	failed map[string]int

	// io serializes flushes with deletes so an in-flight save cannot
	// resurrect an ended session.
	io   sync.Mutex
	wake chan struct{}
}

func newPersister(repo repository.SessionRepository, logger *slog.Logger) *persister {
	return &persister{
		repo:    repo,
		logger:  logger,
		pending: make(map[string]domain.Session),
		failed:  make(map[string]int),
		wake:    make(chan struct{}, 1),
	}
}

// enqueue schedules a snapshot for writing. It never blocks.
func (p *persister) enqueue(s domain.Session) {
	p.mu.Lock()
	if cur, ok := p.pending[s.ID]; !ok || cur.Version <= s.Version {
		p.pending[s.ID] = s
	}
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// run flushes whenever snapshots are enqueued, until ctx is cancelled. A
// final flush runs on the way out.
func (p *persister) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.flush(context.WithoutCancel(ctx))
			return
		case <-p.wake:
			p.flush(ctx)
		}
	}
}

// flush writes every pending snapshot and returns how many failed.
func (p *persister) flush(ctx context.Context) int {
	p.io.Lock()
	defer p.io.Unlock()

	p.mu.Lock()
	batch := p.pending
	p.pending = make(map[string]domain.Session, len(batch))
	p.mu.Unlock()

	var failed int
	for id, s := range batch {
		if err := p.save(ctx, s); err != nil {
			failed++
			p.logger.WarnContext(ctx, "failed to persist session snapshot",
				slog.String("session_id", id),
				slog.Int("version", s.Version),
				slog.String("error", err.Error()),
			)
		}
	}
	return failed
}

// saveDirty writes s when its session has a pending or failed snapshot.
// Clean sessions are left alone.
func (p *persister) saveDirty(ctx context.Context, s domain.Session) error {
	p.io.Lock()
	defer p.io.Unlock()

	p.mu.Lock()
	_, pending := p.pending[s.ID]
	_, failed := p.failed[s.ID]
	if pending && p.pending[s.ID].Version <= s.Version {
		delete(p.pending, s.ID)
	}
	p.mu.Unlock()

	if !pending && !failed {
		return nil
	}
	return p.save(ctx, s)
}

// save writes one snapshot and tracks whether the session is left unsaved.
// Requires p.io.
func (p *persister) save(ctx context.Context, s domain.Session) error {
	saveCtx, cancel := context.WithTimeout(ctx, saveTimeout)
	err := p.repo.Save(saveCtx, &s)
	cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		PersistErrors.Inc()
		if v, ok := p.failed[s.ID]; !ok || v < s.Version {
			p.failed[s.ID] = s.Version
		}
		return err
	}
	if v, ok := p.failed[s.ID]; ok && v <= s.Version {
		delete(p.failed, s.ID)
	}
	return nil
}

// drop discards any pending snapshot for id and deletes the stored one.
func (p *persister) drop(ctx context.Context, id string) error {
	p.io.Lock()
	defer p.io.Unlock()

	p.mu.Lock()
	delete(p.pending, id)
	delete(p.failed, id)
	p.mu.Unlock()

	return p.repo.Delete(ctx, id)
}
