package sheet

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/charsheet/internal/game/character"
)

// SaveFunc persists one changed snapshot together with the intents applied
// to it since the previous save.
type SaveFunc func(ctx context.Context, c *character.Character, intents []string) error

// Manager tracks the open Sessions of a host keyed by character id.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	deps     Deps
	sessions map[string]*tracked
}

// tracked pairs a Session with the last snapshot handed to a SaveFunc.
type tracked struct {
	session *Session

	mu      sync.Mutex
	saved   *character.Character
	intents []string
}

// NewManager creates an empty Manager whose sessions share deps.
func NewManager(deps Deps) *Manager {
	return &Manager{deps: deps, sessions: make(map[string]*tracked)}
}

// Open starts a Session for c.
//
// Precondition: c.ID must be non-empty.
// Postcondition: Returns the new Session, or an error if c.ID is already open.
func (m *Manager) Open(c *character.Character) (*Session, error) {
	if c.ID == "" {
		return nil, fmt.Errorf("character id must not be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[c.ID]; exists {
		return nil, fmt.Errorf("character %q already open", c.ID)
	}
	t := &tracked{session: New(c, m.deps), saved: c}
	t.session.Subscribe(func(ch Change) {
		t.mu.Lock()
		t.intents = append(t.intents, ch.Intent)
		t.mu.Unlock()
	})
	m.sessions[c.ID] = t
	return t.session, nil
}

// Get returns the open Session for id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return t.session, true
}

// Close removes the Session for id and returns its final snapshot. Unflushed
// changes are not saved.
func (m *Manager) Close(id string) (*character.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("character %q not open", id)
	}
	delete(m.sessions, id)
	return t.session.Character(), nil
}

// IDs returns the open character ids in sorted order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dirty reports whether the Session for id changed since it was opened or
// last flushed.
func (m *Manager) Dirty(id string) bool {
	m.mu.RLock()
	t, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session.Character() != t.saved
}

// Flush hands every dirty Session to save, running at most limit saves at a
// time (no bound when limit <= 0). A session whose save fails stays dirty.
//
// Postcondition: Returns the first save error, after all started saves finished.
func (m *Manager) Flush(ctx context.Context, limit int, save SaveFunc) error {
	m.mu.RLock()
	pending := make([]*tracked, 0, len(m.sessions))
	for _, t := range m.sessions {
		pending = append(pending, t)
	}
	m.mu.RUnlock()

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, t := range pending {
		g.Go(func() error { return t.flush(ctx, save) })
	}
	return g.Wait()
}

func (t *tracked) flush(ctx context.Context, save SaveFunc) error {
	t.mu.Lock()
	c := t.session.Character()
	if c == t.saved {
		t.mu.Unlock()
		return nil
	}
	intents := slices.Clone(t.intents)
	t.mu.Unlock()

	if err := save(ctx, c, intents); err != nil {
		return fmt.Errorf("saving character %s: %w", c.ID, err)
	}

	t.mu.Lock()
	t.saved = c
	// Listeners run after the change lands, so intents may trail the snapshot.
	t.intents = t.intents[len(intents):]
	t.mu.Unlock()
	return nil
}
