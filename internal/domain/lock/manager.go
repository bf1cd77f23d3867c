package lock

import (
	"sync"
	"time"
)

// Lock is a time-bounded exclusive claim on a (session, item) pair.
// An expired lock is logically absent and reclaimable by any counter.
type Lock struct {
	SessionID  string    `json:"session_id"`
	ItemID     string    `json:"item_id"`
	CounterID  string    `json:"counter_id"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type lockKey struct {
	sessionID string
	itemID    string
}

// Manager grants and releases short-lived exclusive claims on
// (session, item) pairs. The whole table sits behind one mutex; every
// mutation is a map operation, so the critical section never blocks on
// anything external. Expiry is checked lazily on access, there is no
// background sweep.
type Manager struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	locks map[lockKey]*Lock
}

// NewManager creates a lock manager with the given time-to-live.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:   ttl,
		now:   time.Now,
		locks: make(map[lockKey]*Lock),
	}
}

// NewManagerWithClock creates a manager with an injected clock for tests.
func NewManagerWithClock(ttl time.Duration, now func() time.Time) *Manager {
	m := NewManager(ttl)
	m.now = now
	return m
}

// TTL returns the configured lock time-to-live.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Acquire claims the (session, item) pair for a counter. Re-acquisition
// by the current holder refreshes the expiry. A non-empty allowed set
// restricts which counters may acquire at all.
func (m *Manager) Acquire(sessionID, itemID, counterID string, allowed []string) (*Lock, error) {
	if len(allowed) > 0 && !contains(allowed, counterID) {
		return nil, ErrCounterNotAllowed
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	key := lockKey{sessionID: sessionID, itemID: itemID}
	if existing, ok := m.locks[key]; ok && existing.ExpiresAt.After(now) && existing.CounterID != counterID {
		return nil, ErrLockHeld
	}

	l := &Lock{
		SessionID:  sessionID,
		ItemID:     itemID,
		CounterID:  counterID,
		AcquiredAt: now,
		ExpiresAt:  now.Add(m.ttl),
	}
	m.locks[key] = l

	copied := *l
	return &copied, nil
}

// Release removes the lock if the counter is the current unexpired
// holder; otherwise ErrNotHeld. Submitting a count goes through here so
// that verify-and-release is a single critical section: two counters
// racing a submit for the same item can never both succeed.
func (m *Manager) Release(sessionID, itemID, counterID string) (*Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := lockKey{sessionID: sessionID, itemID: itemID}
	existing, ok := m.locks[key]
	if !ok || !existing.ExpiresAt.After(m.now()) || existing.CounterID != counterID {
		return nil, ErrNotHeld
	}

	delete(m.locks, key)
	copied := *existing
	return &copied, nil
}

// Restore reinstates a previously released lock if the slot is still
// free. Used when a ledger append fails after the lock was consumed.
func (m *Manager) Restore(l *Lock) {
	if l == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := lockKey{sessionID: l.SessionID, itemID: l.ItemID}
	if existing, ok := m.locks[key]; ok && existing.ExpiresAt.After(m.now()) {
		return
	}
	copied := *l
	m.locks[key] = &copied
}

// ReleaseAll removes every lock for a session. Invoked on pause,
// complete and cancel; atomic with respect to concurrent acquisitions.
func (m *Manager) ReleaseAll(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.locks {
		if key.sessionID == sessionID {
			delete(m.locks, key)
		}
	}
}

// ActiveCount returns the number of unexpired locks for a session.
func (m *Manager) ActiveCount(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	count := 0
	for key, l := range m.locks {
		if key.sessionID == sessionID && l.ExpiresAt.After(now) {
			count++
		}
	}
	return count
}

// HeldItems returns item → holding counter for a session's unexpired locks.
func (m *Manager) HeldItems(sessionID string) map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	held := make(map[string]string)
	for key, l := range m.locks {
		if key.sessionID == sessionID && l.ExpiresAt.After(now) {
			held[key.itemID] = l.CounterID
		}
	}
	return held
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
