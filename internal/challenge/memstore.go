// internal/challenge/memstore.go
//
// In-memory challenge store.
// Responsibilities:
//   - Hold records under a mutex and publish every write through a hub.
//   - Share NewRecord with the SQL store so both start from the same columns.
package challenge

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/wordheat/internal/realtime"
)

// MemoryStore is an in-process Store. It backs tests and single-node runs
// without a database.
type MemoryStore struct {
	mu   sync.Mutex
	recs map[string]Record
	hub  *realtime.Hub[Record]
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		recs: make(map[string]Record),
		hub:  realtime.NewHub[Record](0),
		now:  time.Now,
	}
}

// Create stores a new challenge. See NewRecord for the initial columns.
func (m *MemoryStore) Create(_ context.Context, in NewChallenge) (Record, error) {
	r := NewRecord(uuid.NewString(), in, m.now())
	m.mu.Lock()
	m.recs[r.ID] = r
	m.mu.Unlock()
	return r, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (m *MemoryStore) Accept(_ context.Context, id, opponent string) (Record, error) {
	return m.write(id, func(r *Record) bool {
		if r.Status != StatusPending {
			return false
		}
		now := m.now()
		r.Status = StatusAccepted
		if r.Opponent.Name == "" {
			r.Opponent.Name = opponent
		}
		r.Opponent.Status = PartyPlaying
		r.Opponent.StartedAt = &now
		return true
	})
}

func (m *MemoryStore) UpdateProgress(_ context.Context, id string, role Role, p Progress) (Record, error) {
	return m.write(id, func(r *Record) bool {
		side := r.Side(role)
		if side.finished() {
			return false
		}
		side.Status = p.Status
		side.Count = p.Count
		side.FinishedAt = p.FinishedAt
		r.setSide(role, side)
		return true
	})
}

func (m *MemoryStore) SetWinner(_ context.Context, id, winner string) (Record, error) {
	return m.write(id, func(r *Record) bool {
		if r.Winner != "" {
			return false
		}
		r.Winner = winner
		r.Status = StatusCompleted
		return true
	})
}

func (m *MemoryStore) Subscribe(id string) (<-chan Record, func()) {
	return m.hub.Subscribe(id)
}

// write applies fn under the lock; when fn reports a change the version is
// bumped and the snapshot published.
func (m *MemoryStore) write(id string, fn func(*Record) bool) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	if !fn(&r) {
		return r, nil
	}
	r.Version++
	m.recs[id] = r
	m.hub.Publish(id, r)
	return r, nil
}

// NewRecord builds the initial record for in. The challenger starts playing
// straight away; a setter is finished and spectating from the outset.
func NewRecord(id string, in NewChallenge, now time.Time) Record {
	r := Record{
		ID:        id,
		Word:      in.Word,
		Seed:      in.Seed,
		Status:    StatusPending,
		Version:   1,
		CreatedAt: now,
		Challenger: Party{
			Name:      in.Challenger,
			Status:    PartyPlaying,
			StartedAt: &now,
		},
		Opponent: Party{Name: in.Opponent, Status: PartyInvited},
	}
	if in.Opponent == "" {
		r.Opponent.Status = PartyWaiting
	}
	if in.Setter {
		r.Challenger.Status = PartyFinished
		r.Challenger.Count = Count{Kind: Spectating}
		r.Challenger.FinishedAt = &now
	}
	return r
}
