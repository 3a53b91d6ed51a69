// Package timer provides the one-shot, per-user timer facility the game
// engine schedules question deadlines on.
package timer

import (
	"sync"
	"time"
)

// ExpireFunc is invoked when a scheduled timer fires without being cancelled.
type ExpireFunc func(userID string, questionID int)

// Registry keys at most one outstanding timer per user. Scheduling while a
// timer exists cancels the old one first, so a replaced timer can never fire.
// A callback racing a cancellation is swallowed: expiry only proceeds if the
// entry is still the registered one.
type Registry struct {
	mu       sync.Mutex
	onExpire ExpireFunc
	entries  map[string]*entry
}

type entry struct {
	questionID int
	deadline   time.Time
	t          *time.Timer
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// OnExpire sets the expiry callback. Must be called before Schedule.
func (r *Registry) OnExpire(fn ExpireFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onExpire = fn
}

// Schedule arms a timer for userID that fires after d, replacing any
// outstanding timer for the same user.
func (r *Registry) Schedule(userID string, questionID int, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.entries[userID]; ok {
		old.t.Stop()
		delete(r.entries, userID)
	}
	e := &entry{questionID: questionID, deadline: time.Now().Add(d)}
	e.t = time.AfterFunc(d, func() { r.expire(userID, e) })
	r.entries[userID] = e
}

// Cancel stops the user's timer and returns the time that remained at the
// moment of cancellation. It reports false when no timer is registered,
// which includes the window where expiry has already claimed the entry.
func (r *Registry) Cancel(userID string) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[userID]
	if !ok {
		return 0, false
	}
	remaining := time.Until(e.deadline)
	e.t.Stop()
	delete(r.entries, userID)
	return remaining, true
}

// Remaining reports the time left on the user's timer without touching it.
func (r *Registry) Remaining(userID string) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[userID]
	if !ok {
		return 0, false
	}
	return time.Until(e.deadline), true
}

func (r *Registry) expire(userID string, e *entry) {
	r.mu.Lock()
	cur, ok := r.entries[userID]
	if !ok || cur != e {
		// Cancelled or replaced between firing and acquiring the lock.
		r.mu.Unlock()
		return
	}
	delete(r.entries, userID)
	fn := r.onExpire
	r.mu.Unlock()
	if fn != nil {
		fn(userID, e.questionID)
	}
}
