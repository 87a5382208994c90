// internal/store/memory.go
//
// In-memory registry of live game sessions.
// Sessions are ephemeral: they hold timers and challenge subscriptions, so
// they live in process memory and are rebuilt by the client after a restart.
//
// Characteristics:
//   - Entries keyed by session ID, guarded by an RWMutex.
//   - Get refreshes the entry's last-seen time; Sweep closes idle sessions.
//   - Delete and Sweep close the session they remove.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordheat/internal/game"
)

var ErrSessionNotFound = errors.New("store: session not found")

// Entry is one live session and who owns it.
type Entry struct {
	Session  *game.Session
	Owner    string // profile id
	lastSeen time.Time
}

// Sessions is the persistence interface for live sessions.
type Sessions interface {
	Save(ctx context.Context, e *Entry) error
	Get(ctx context.Context, id string) (*Entry, error)
	Delete(ctx context.Context, id string) error
	Sweep(maxIdle time.Duration) int
}

type memory struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	now     func() time.Time
}

// NewMemoryStore constructs an empty in-memory session registry.
func NewMemoryStore() Sessions {
	return &memory{entries: make(map[string]*Entry), now: time.Now}
}

func (m *memory) Save(_ context.Context, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.lastSeen = m.now()
	m.entries[e.Session.ID] = e
	return nil
}

func (m *memory) Get(_ context.Context, id string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastSeen = m.now()
	return e, nil
}

func (m *memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.entries[id]
	delete(m.entries, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	e.Session.Close()
	return nil
}

// Sweep closes and removes sessions not seen for maxIdle.
func (m *memory) Sweep(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)
	var stale []*Entry
	m.mu.Lock()
	for id, e := range m.entries {
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, e)
			delete(m.entries, id)
		}
	}
	m.mu.Unlock()
	for _, e := range stale {
		e.Session.Close()
	}
	if len(stale) > 0 {
		log.Info().Int("sessions", len(stale)).Msg("swept idle sessions")
	}
	return len(stale)
}
