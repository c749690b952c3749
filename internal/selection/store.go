// Package selection holds per-session booking carts. A cart accumulates
// concrete item and set lines until the session finalizes a booking, which
// snapshots and then clears it.
package selection

import (
	"context"
	"sync"
	"time"

	"equiprent-backend/internal/domain"
)

// Store is the session cart backend. All mutations are safe for concurrent
// use; distinct sessions never observe each other's carts.
type Store interface {
	// Add puts a line into the cart or bumps its quantity. Item lines are
	// capped at quantity 1: a concrete unit cannot be selected twice.
	Add(ctx context.Context, sessionID string, kind domain.SelectionKind, id int64, quantity int32) error

	// SetQuantity pins a line to an exact quantity. Zero or negative removes
	// the line.
	SetQuantity(ctx context.Context, sessionID string, kind domain.SelectionKind, id int64, quantity int32) error

	// Remove drops a line. Removing an absent line is a no-op.
	Remove(ctx context.Context, sessionID string, kind domain.SelectionKind, id int64) error

	// View returns a snapshot of the cart. Mutating the snapshot does not
	// touch the stored cart.
	View(ctx context.Context, sessionID string) (domain.Selection, error)

	// Clear empties the cart.
	Clear(ctx context.Context, sessionID string) error
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	ttl      time.Duration
}

type memorySession struct {
	selection domain.Selection
	touchedAt time.Time
}

// NewMemoryStore returns an in-process Store. Sessions untouched for longer
// than ttl are dropped lazily on the next access.
func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{sessions: map[string]*memorySession{}, ttl: ttl}
}

func (s *memoryStore) session(sessionID string) *memorySession {
	sess, ok := s.sessions[sessionID]
	if ok && s.ttl > 0 && time.Since(sess.touchedAt) > s.ttl {
		delete(s.sessions, sessionID)
		ok = false
	}
	if !ok {
		sess = &memorySession{selection: domain.NewSelection()}
		s.sessions[sessionID] = sess
	}
	sess.touchedAt = time.Now()
	return sess
}

func (s *memoryStore) Add(ctx context.Context, sessionID string, kind domain.SelectionKind, id int64, quantity int32) error {
	if quantity <= 0 {
		return &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(sessionID)
	apply(&sess.selection, kind, id, lineQuantity(sess.selection, kind, id)+quantity)
	return nil
}

func (s *memoryStore) SetQuantity(ctx context.Context, sessionID string, kind domain.SelectionKind, id int64, quantity int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(sessionID)
	apply(&sess.selection, kind, id, quantity)
	return nil
}

func (s *memoryStore) Remove(ctx context.Context, sessionID string, kind domain.SelectionKind, id int64) error {
	return s.SetQuantity(ctx, sessionID, kind, id, 0)
}

func (s *memoryStore) View(ctx context.Context, sessionID string) (domain.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session(sessionID).selection.Clone(), nil
}

func (s *memoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func lineQuantity(sel domain.Selection, kind domain.SelectionKind, id int64) int32 {
	if kind == domain.SelectionKindItem {
		return sel.Items[id]
	}
	return sel.Sets[id]
}

// apply writes a line quantity into a selection, enforcing the item cap and
// dropping lines at zero.
func apply(sel *domain.Selection, kind domain.SelectionKind, id int64, quantity int32) {
	lines := sel.Sets
	if kind == domain.SelectionKindItem {
		lines = sel.Items
		if quantity > 1 {
			quantity = 1
		}
	}
	if quantity <= 0 {
		delete(lines, id)
		return
	}
	lines[id] = quantity
}
