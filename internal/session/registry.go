// Package session owns the live side of a game session: the registry
// mapping public session ids to cached state and connected viewers, the
// broadcast fan-out, and the bridge to durable storage.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/quickroll/initiative/internal/combat"
	"github.com/quickroll/initiative/internal/messaging"
)

// DefaultHeartbeat is how often idle viewer connections are pinged so
// intermediary proxies do not close them.
const DefaultHeartbeat = 25 * time.Second

const channelBuffer = 16

// Broker carries published state to every subscriber of a session's
// subject. Implemented by messaging.Broker.
type Broker interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

type entry struct {
	state *combat.State
	subs  map[*Channel]struct{}
}

// Registry maps each public session id to its cached state and the set
// of connected viewer channels. Entries are created lazily on first
// access and never expire while the process runs; the data set is small
// and per-account, and a session with zero subscribers keeps its cache
// so a future viewer still gets immediate state.
type Registry struct {
	broker    Broker
	bridge    *Bridge
	heartbeat time.Duration

	mu      sync.Mutex
	entries map[string]*entry
}

// RegistryOpt configures a Registry.
type RegistryOpt func(*Registry)

// WithHeartbeat overrides the keep-alive interval.
func WithHeartbeat(d time.Duration) RegistryOpt {
	return func(r *Registry) {
		r.heartbeat = d
	}
}

func NewRegistry(broker Broker, bridge *Bridge, opts ...RegistryOpt) *Registry {
	r := &Registry{
		broker:    broker,
		bridge:    bridge,
		heartbeat: DefaultHeartbeat,
		entries:   map[string]*entry{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Publish replaces the session's cached state and fans it out to every
// connected viewer, then queues a durable flush. Broadcast problems are
// logged, never surfaced: the cache stays authoritative and the next
// successful push recovers all viewers.
func (r *Registry) Publish(sessionID string, st *combat.State) {
	data, err := json.Marshal(st)
	if err != nil {
		slog.Warn("marshalling session state", "session", sessionID, "error", err)
		return
	}

	r.mu.Lock()
	ent := r.ensureLocked(sessionID)
	ent.state = st.Clone()
	r.mu.Unlock()

	if err := r.broker.Publish(messaging.SessionSubject(sessionID), data); err != nil {
		slog.Warn("broadcasting session state", "session", sessionID, "error", err)
	}

	r.bridge.FlushState(sessionID, st)
}

// Subscribe registers a new viewer channel for the session and
// immediately enqueues the current state so the viewer is never blank.
// On a cold cache the state is rehydrated from durable storage first.
// The snapshot is captured and sent under the lock, after the broker
// subscription is live: a state published before the capture is in the
// snapshot, and one published after it lands behind the snapshot on the
// channel, so the viewer never ends up a frame behind.
func (r *Registry) Subscribe(sessionID string) (*Channel, error) {
	ch := newChannel(channelBuffer)
	unsub, err := r.broker.Subscribe(messaging.SessionSubject(sessionID), func(data []byte) {
		if !ch.Send(Frame{Data: data}) {
			r.drop(sessionID, ch)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to session %s: %w", sessionID, err)
	}
	ch.unsub = unsub

	r.mu.Lock()
	ent := r.ensureLocked(sessionID)
	data, err := json.Marshal(ent.state)
	if err != nil {
		r.mu.Unlock()
		ch.close()
		return nil, fmt.Errorf("marshalling snapshot: %w", err)
	}
	ent.subs[ch] = struct{}{}
	ch.Send(Frame{Data: data})
	r.mu.Unlock()

	return ch, nil
}

// Unsubscribe removes a viewer channel. Idempotent.
func (r *Registry) Unsubscribe(sessionID string, ch *Channel) {
	r.drop(sessionID, ch)
}

// Read returns the session's current state, populating the cache from
// durable storage on a miss. Used for non-streaming snapshot reads.
func (r *Registry) Read(sessionID string) *combat.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureLocked(sessionID).state.Clone()
}

// Start runs the heartbeat loop: every interval each open channel gets
// a ping, and a failed ping triggers the same cleanup as a failed state
// push. Implements the service worker contract.
func (r *Registry) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return nil
		case <-ticker.C:
			r.pingAll()
		}
	}
}

func (r *Registry) pingAll() {
	type sub struct {
		sessionID string
		ch        *Channel
	}
	var subs []sub

	r.mu.Lock()
	for id, ent := range r.entries {
		for ch := range ent.subs {
			subs = append(subs, sub{id, ch})
		}
	}
	r.mu.Unlock()

	for _, s := range subs {
		if !s.ch.Send(Frame{Ping: true}) {
			r.drop(s.sessionID, s.ch)
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ent := range r.entries {
		for ch := range ent.subs {
			ch.close()
		}
		ent.subs = map[*Channel]struct{}{}
	}
}

// drop removes a channel from the session and closes it. The sole
// cleanup path for dead viewers between explicit unsubscribes.
func (r *Registry) drop(sessionID string, ch *Channel) {
	r.mu.Lock()
	if ent, ok := r.entries[sessionID]; ok {
		delete(ent.subs, ch)
	}
	r.mu.Unlock()
	ch.close()
}

// ensureLocked returns the session entry, creating it (and rehydrating
// state from durable storage) on first access. Callers hold r.mu.
func (r *Registry) ensureLocked(sessionID string) *entry {
	ent, ok := r.entries[sessionID]
	if !ok {
		ent = &entry{subs: map[*Channel]struct{}{}}
		r.entries[sessionID] = ent
	}
	if ent.state == nil {
		if st, ok := r.bridge.LoadState(sessionID); ok {
			ent.state = st
		} else {
			ent.state = combat.NewState()
		}
	}
	return ent
}
