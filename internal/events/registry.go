package events

import "sync"

// registry is the listener bookkeeping shared by ChannelEvent and CallbackEvent.
// L is the listener handle (a channel or a callback), T the event payload.
type registry[L any, T any] struct {
	mu        sync.RWMutex
	listeners map[uint64]L
	nextID    uint64
	replay    bool
	last      T
	hasLast   bool
}

func newRegistry[L any, T any](replay bool) registry[L, T] {
	return registry[L, T]{
		listeners: make(map[uint64]L),
		replay:    replay,
	}
}

// add stores the listener and returns its deregistration func together with
// the value that should be replayed to it, if any
func (r *registry[L, T]) add(l L) (func(), T, bool) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = l
	last, ok := r.last, r.replay && r.hasLast
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners, id)
			r.mu.Unlock()
		})
	}, last, ok
}

// snapshot records value as the latest event and returns the listeners to deliver it to.
// Delivery always happens outside the lock so a listener may deregister from within.
func (r *registry[L, T]) snapshot(value T) []L {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replay {
		r.last = value
		r.hasLast = true
	}
	out := make([]L, 0, len(r.listeners))
	for _, l := range r.listeners {
		out = append(out, l)
	}
	return out
}

func (r *registry[L, T]) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}

// latest returns the last notified value when replay is enabled
func (r *registry[L, T]) latest() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.hasLast
}
