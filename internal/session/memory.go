package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps sessions in a process-lifetime map. A restart loses all
// sessions; that is the intended durability contract for the default setup.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	order    []string
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Create inserts a new pending session and returns a copy of the stored record.
func (m *MemoryStore) Create(ctx context.Context, employeeName, employeeInfo string) (*Session, error) {
	sess := newSession(employeeName, employeeInfo, time.Now().UTC())

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.order = append(m.order, sess.ID)
	m.mu.Unlock()

	return sess.Clone(), nil
}

// Get returns the current record, or nil when the id is unknown.
func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id].Clone(), nil
}

// Update applies the mutation under the store lock so pollers observe either
// the pre- or post-update record, never a torn one. Returns nil when the id is
// unknown. The mutation runs against a copy; a backward status move rejects
// the whole update without touching the stored record.
func (m *MemoryStore) Update(ctx context.Context, id string, apply func(*Session)) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	next := current.Clone()
	if apply != nil {
		apply(next)
	}
	if next.Status != current.Status && !CanTransition(current.Status, next.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, next.Status)
	}
	next.UpdatedAt = time.Now().UTC()
	m.sessions[id] = next
	return next.Clone(), nil
}

// List returns all sessions in insertion order.
func (m *MemoryStore) List(ctx context.Context) ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(m.order))
	for _, id := range m.order {
		if sess, ok := m.sessions[id]; ok {
			out = append(out, sess.Clone())
		}
	}
	return out, nil
}

// Health reports readiness; the in-memory store is always ready.
func (m *MemoryStore) Health(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
