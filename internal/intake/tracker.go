package intake

import (
	"sync"
)

// Tracker holds the ephemeral "awaiting email" state for users mid-intake.
// The flag only matters for the duration of one DM round-trip; losing it on
// restart costs a user a second reaction, nothing more. Events for distinct
// users may race, so the check-then-set is done under one mutex.
type Tracker struct {
	mu      sync.Mutex
	pending map[int64]struct{}
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{pending: make(map[int64]struct{})}
}

// Begin marks a user as awaiting an email. It returns false when the user
// was already mid-intake, so concurrent reactions collapse into one prompt.
func (t *Tracker) Begin(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.pending[userID]; ok {
		return false
	}
	t.pending[userID] = struct{}{}
	return true
}

// Pending reports whether a user is awaiting an email
func (t *Tracker) Pending(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.pending[userID]
	return ok
}

// Clear removes a user's pending state
func (t *Tracker) Clear(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, userID)
}
