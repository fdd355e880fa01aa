package session

import (
	"context"
	"log/slog"

	"github.com/quickroll/initiative/internal/combat"
)

// Store is the durable storage consumed by the bridge.
type Store interface {
	CombatState(sessionID string) (*combat.State, bool, error)
	SaveCombatState(sessionID string, st *combat.State) error
	AppendRecord(sessionID string, rec *combat.Record) error
}

type flushJob struct {
	sessionID string
	state     *combat.State
	record    *combat.Record
}

// Bridge mirrors in-memory session state to durable storage. Writes are
// best-effort and asynchronous: the in-memory cache and live broadcast
// are the source of truth for connected viewers, so a storage failure
// is logged and otherwise swallowed. The next successful flush or the
// next cache-miss read recovers.
type Bridge struct {
	store Store
	queue chan flushJob
}

func NewBridge(store Store) *Bridge {
	return &Bridge{
		store: store,
		queue: make(chan flushJob, 256),
	}
}

// Start drains the flush queue until the context is cancelled.
func (b *Bridge) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case job := <-b.queue:
			b.run(ctx, job)
		}
	}
}

func (b *Bridge) run(ctx context.Context, job flushJob) {
	if job.state != nil {
		if err := b.store.SaveCombatState(job.sessionID, job.state); err != nil {
			slog.WarnContext(ctx, "flushing session state", "session", job.sessionID, "error", err)
		}
	}
	if job.record != nil {
		if err := b.store.AppendRecord(job.sessionID, job.record); err != nil {
			slog.WarnContext(ctx, "flushing combat record", "session", job.sessionID, "error", err)
		}
	}
}

// FlushState queues a state write. Never blocks: when the queue is full
// the write is dropped and a later flush supersedes it anyway.
func (b *Bridge) FlushState(sessionID string, st *combat.State) {
	b.enqueue(flushJob{sessionID: sessionID, state: st.Clone()})
}

// FlushRecord queues a combat record append.
func (b *Bridge) FlushRecord(sessionID string, rec *combat.Record) {
	b.enqueue(flushJob{sessionID: sessionID, record: rec})
}

func (b *Bridge) enqueue(job flushJob) {
	select {
	case b.queue <- job:
	default:
		slog.Warn("flush queue full, dropping write", "session", job.sessionID)
	}
}

// LoadState reads durable storage on a cache miss. Errors are treated
// as absent; the caller starts the session empty and storage is retried
// on the next access.
func (b *Bridge) LoadState(sessionID string) (*combat.State, bool) {
	st, ok, err := b.store.CombatState(sessionID)
	if err != nil {
		slog.Warn("loading session state", "session", sessionID, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return st, true
}
