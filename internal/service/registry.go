package service

import (
	"crypto/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/remindly/remindly/internal/domain/entitlement"
	"github.com/remindly/remindly/internal/logger"
)

// StatusListener is invoked with the new raw status after every committed
// change. Invocation is synchronous; listeners re-entering the engine (e.g.
// to re-derive their effective status) observe the post-change value.
type StatusListener func(status *entitlement.SubscriptionStatus)

// Subscription is the handle returned on registration. Unsubscribe is
// idempotent and safe to call from within a listener callback.
type Subscription struct {
	id       string
	registry *ListenerRegistry
}

func (s *Subscription) Unsubscribe() {
	s.registry.remove(s.id)
}

type listenerEntry struct {
	id       string
	callback StatusListener
	removed  atomic.Bool
}

// ListenerRegistry fans out status changes to registered listeners, in
// registration order, one process-wide instance.
type ListenerRegistry struct {
	mu      sync.Mutex
	entries []*listenerEntry
	logger  *logger.Logger
}

func NewListenerRegistry(log *logger.Logger) *ListenerRegistry {
	return &ListenerRegistry{logger: log}
}

// AddListener registers a callback and returns its subscription handle.
func (r *ListenerRegistry) AddListener(callback StatusListener) *Subscription {
	entry := &listenerEntry{
		id:       ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String(),
		callback: callback,
	}

	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()

	return &Subscription{id: entry.id, registry: r}
}

func (r *ListenerRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.entries[:0]
	for _, entry := range r.entries {
		if entry.id == id {
			// The removed flag suppresses a callback that an in-progress
			// Notify has snapshotted but not yet invoked.
			entry.removed.Store(true)
			continue
		}
		kept = append(kept, entry)
	}
	r.entries = kept
}

// Len returns the number of registered listeners.
func (r *ListenerRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Notify invokes every registered listener synchronously, in registration
// order. A listener that unsubscribed after the snapshot but before its turn
// is skipped. Panics are isolated per listener and logged.
func (r *ListenerRegistry) Notify(status *entitlement.SubscriptionStatus) {
	r.mu.Lock()
	snapshot := make([]*listenerEntry, len(r.entries))
	copy(snapshot, r.entries)
	r.mu.Unlock()

	for _, entry := range snapshot {
		if entry.removed.Load() {
			continue
		}
		r.invoke(entry, status)
	}
}

func (r *ListenerRegistry) invoke(entry *listenerEntry, status *entitlement.SubscriptionStatus) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Errorw("status listener panicked",
				"listener_id", entry.id,
				"panic", rec)
		}
	}()
	entry.callback(status.Clone())
}
