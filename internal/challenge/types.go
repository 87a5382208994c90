// internal/challenge/types.go
//
// Shared challenge record and the per-party progress it carries.
//
// Notes:
//   - Guess counts are a tagged variant (Count). The numeric sentinels used
//     by the database (999 surrendered, 0 spectating) never leave the store.
//   - Version increases with every write and orders snapshots.
package challenge

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("challenge: not found")
	ErrNotParticipant = errors.New("challenge: not a participant")
	ErrSpectator      = errors.New("challenge: setter only watches")
	ErrFinished       = errors.New("challenge: already finished")
)

// Status is the overall lifecycle of a challenge.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusCompleted Status = "completed"
)

// PartyStatus is one participant's progress through the race.
type PartyStatus string

const (
	PartyWaiting  PartyStatus = "waiting"
	PartyInvited  PartyStatus = "invited"
	PartyPlaying  PartyStatus = "playing"
	PartyFinished PartyStatus = "finished"
)

func (s PartyStatus) rank() int {
	switch s {
	case PartyPlaying:
		return 1
	case PartyFinished:
		return 2
	default:
		return 0
	}
}

// Role says which side of the record a participant owns.
type Role string

const (
	Challenger Role = "challenger"
	Opponent   Role = "opponent"
)

// CountKind tags a Count.
type CountKind int

const (
	Unset CountKind = iota
	Guesses
	Surrendered
	Spectating // setter who chose the word and does not race
)

// Count is a participant's guess count.
type Count struct {
	Kind CountKind `json:"kind"`
	N    int       `json:"n,omitempty"`
}

func GuessCount(n int) Count { return Count{Kind: Guesses, N: n} }

// Solved reports whether the count is a real guess total.
func (c Count) Solved() bool { return c.Kind == Guesses }

// Party is one participant's columns of the record.
type Party struct {
	Name       string      `json:"name"`
	Status     PartyStatus `json:"status"`
	Count      Count       `json:"count"`
	StartedAt  *time.Time  `json:"startedAt,omitempty"`
	FinishedAt *time.Time  `json:"finishedAt,omitempty"`
}

func (p Party) finished() bool { return p.Status == PartyFinished }

// Record is the persisted challenge.
type Record struct {
	ID         string    `json:"id"`
	Word       string    `json:"-"`
	Seed       string    `json:"seed,omitempty"`
	Challenger Party     `json:"challenger"`
	Opponent   Party     `json:"opponent"`
	Status     Status    `json:"status"`
	Winner     string    `json:"winner,omitempty"`
	Version    int64     `json:"version"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Side returns the columns owned by role.
func (r Record) Side(role Role) Party {
	if role == Challenger {
		return r.Challenger
	}
	return r.Opponent
}

func (r *Record) setSide(role Role, p Party) {
	if role == Challenger {
		r.Challenger = p
	} else {
		r.Opponent = p
	}
}

// RoleOf maps a username to its side. An open challenge (no opponent named
// yet) accepts any other user as the opponent.
func (r Record) RoleOf(username string) (Role, error) {
	switch {
	case username == r.Challenger.Name:
		return Challenger, nil
	case username == r.Opponent.Name, r.Opponent.Name == "":
		return Opponent, nil
	}
	return "", ErrNotParticipant
}

func (r Role) other() Role {
	if r == Challenger {
		return Opponent
	}
	return Challenger
}

// NewChallenge holds the fields for Store.Create.
type NewChallenge struct {
	Challenger string
	Opponent   string
	Word       string
	Seed       string
	Setter     bool // the challenger chose the word and only watches
}

// Progress is what a participant pushes for its own side.
type Progress struct {
	Status     PartyStatus
	Count      Count
	FinishedAt *time.Time
}

// Store is the persisted challenge collaborator. Every write bumps Version
// and is published to subscribers of the challenge.
type Store interface {
	Create(ctx context.Context, in NewChallenge) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	// Accept moves a pending challenge to accepted and marks the opponent
	// playing. It is a no-op on challenges that are not pending.
	Accept(ctx context.Context, id, opponent string) (Record, error)
	// UpdateProgress writes only the columns of role, and only while that
	// side is not finished.
	UpdateProgress(ctx context.Context, id string, role Role, p Progress) (Record, error)
	// SetWinner writes winner and completes the challenge if no winner is set
	// yet. It returns the current record either way.
	SetWinner(ctx context.Context, id, winner string) (Record, error)
	Subscribe(id string) (<-chan Record, func())
}
