// internal/challenge/client.go
//
// Per-participant mirror of a shared challenge.
// Responsibilities:
//   - Join a challenge (accepting it as the opponent) and refuse setters and
//     sides that already finished.
//   - Push this participant's progress and apply remote snapshots in version order.
//   - Write the winner once the record resolves and report the result once.
package challenge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventKind names what changed in the mirrored record.
type EventKind string

const (
	EventAccepted         EventKind = "accepted"
	EventOpponentFinished EventKind = "opponent_finished"
	EventResult           EventKind = "result"
)

// Event is delivered on Client.Events.
type Event struct {
	Kind        EventKind `json:"kind"`
	Opponent    string    `json:"opponent,omitempty"`
	Surrendered bool      `json:"surrendered,omitempty"`
	Guesses     int       `json:"guesses,omitempty"`
	Winner      string    `json:"winner,omitempty"`
	Won         bool      `json:"won,omitempty"`
}

// Client mirrors one challenge for one participant. A single goroutine owns
// the mirror: it applies the participant's own pushes and the remote
// snapshots in arrival order, and resolves the winner when it can.
type Client struct {
	store Store
	id    string
	me    string
	role  Role
	now   func() time.Time

	pushes chan Progress
	events chan Event
	sub    <-chan Record
	unsub  func()
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	mirror   Record
	reported bool
}

// Join loads challenge id for username, accepting it when username is the
// opponent of a pending challenge, and starts the client's event loop.
// A spectating setter gets ErrSpectator; a side that already finished gets
// ErrFinished.
func Join(ctx context.Context, store Store, id, username string) (*Client, error) {
	sub, unsub := store.Subscribe(id)
	rec, err := store.Get(ctx, id)
	if err != nil {
		unsub()
		return nil, err
	}
	role, err := rec.RoleOf(username)
	if err != nil {
		unsub()
		return nil, err
	}
	if side := rec.Side(role); side.Count.Kind == Spectating {
		unsub()
		return nil, ErrSpectator
	} else if side.finished() {
		unsub()
		return nil, ErrFinished
	}
	if role == Opponent && rec.Status == StatusPending {
		if rec, err = store.Accept(ctx, id, username); err != nil {
			unsub()
			return nil, fmt.Errorf("accept challenge %s: %w", id, err)
		}
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	c := &Client{
		store:  store,
		id:     id,
		me:     username,
		role:   role,
		now:    time.Now,
		pushes: make(chan Progress, 16),
		events: make(chan Event, 16),
		sub:    sub,
		unsub:  unsub,
		cancel: cancel,
		done:   make(chan struct{}),
		mirror: rec,
	}
	go c.run(loopCtx)
	return c, nil
}

func (c *Client) Role() Role { return c.role }

// Record returns the current mirror.
func (c *Client) Record() Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mirror
}

// Events is closed when the client is closed.
func (c *Client) Events() <-chan Event { return c.events }

// PushProgress queues the participant's guess count; solved marks the
// participant finished.
func (c *Client) PushProgress(guesses int, solved bool) {
	p := Progress{Status: PartyPlaying, Count: GuessCount(guesses)}
	if solved {
		now := c.now()
		p.Status = PartyFinished
		p.FinishedAt = &now
	}
	c.enqueue(p)
}

// Surrender queues a finished, surrendered push.
func (c *Client) Surrender() {
	now := c.now()
	c.enqueue(Progress{Status: PartyFinished, Count: Count{Kind: Surrendered}, FinishedAt: &now})
}

func (c *Client) enqueue(p Progress) {
	select {
	case c.pushes <- p:
	case <-c.done:
	}
}

// Close stops the loop and unsubscribes. Queued pushes not yet written are
// abandoned.
func (c *Client) Close() {
	c.cancel()
	<-c.done
}

func (c *Client) run(ctx context.Context) {
	defer close(c.done)
	defer close(c.events)
	defer c.unsub()

	c.settle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case p := <-c.pushes:
			rec, err := c.store.UpdateProgress(ctx, c.id, c.role, p)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					log.Error().Err(err).Str("challenge", c.id).Str("role", string(c.role)).Msg("push progress")
				}
				continue
			}
			c.merge(ctx, rec)
		case rec, ok := <-c.sub:
			if !ok {
				c.sub = nil
				continue
			}
			c.merge(ctx, rec)
		}
	}
}

// merge applies a snapshot and then tries to settle the outcome.
func (c *Client) merge(ctx context.Context, rec Record) {
	c.apply(ctx, rec)
	c.settle(ctx)
}

// apply replaces the mirror with rec if rec is newer, emitting edge events.
func (c *Client) apply(ctx context.Context, rec Record) {
	c.mu.Lock()
	prev := c.mirror
	if rec.ID != c.id || rec.Version <= prev.Version {
		c.mu.Unlock()
		return
	}
	own, prevOwn := rec.Side(c.role), prev.Side(c.role)
	if own.Status.rank() < prevOwn.Status.rank() ||
		(own.Count.Solved() && prevOwn.Count.Solved() && own.Count.N < prevOwn.Count.N) {
		rec.setSide(c.role, prevOwn)
	}
	c.mirror = rec
	c.mu.Unlock()

	if c.role == Challenger && prev.Status == StatusPending && rec.Status != StatusPending {
		c.emit(ctx, Event{Kind: EventAccepted, Opponent: rec.Opponent.Name})
	}
	other, prevOther := rec.Side(c.role.other()), prev.Side(c.role.other())
	if !prevOther.finished() && other.finished() {
		c.emit(ctx, Event{
			Kind:        EventOpponentFinished,
			Opponent:    other.Name,
			Surrendered: other.Count.Kind == Surrendered,
			Guesses:     other.Count.N,
		})
	}
}

// settle writes the winner when the mirror resolves, and reports the result
// the first time a winner is seen.
func (c *Client) settle(ctx context.Context) {
	cur := c.Record()
	if cur.Winner == "" {
		winner, ok := Resolve(cur)
		if !ok {
			return
		}
		rec, err := c.store.SetWinner(ctx, c.id, winner)
		if err != nil {
			log.Error().Err(err).Str("challenge", c.id).Msg("set winner")
			return
		}
		if rec.Winner != winner {
			log.Warn().Str("challenge", c.id).Str("local", winner).Str("stored", rec.Winner).Msg("winner already written")
		}
		c.apply(ctx, rec)
		cur = c.Record()
	}
	if cur.Winner == "" || c.reported {
		return
	}
	c.reported = true
	log.Info().Str("challenge", c.id).Str("winner", cur.Winner).Str("me", c.me).Msg("challenge resolved")
	c.emit(ctx, Event{Kind: EventResult, Winner: cur.Winner, Won: cur.Winner == c.me})
}

func (c *Client) emit(ctx context.Context, ev Event) {
	select {
	case c.events <- ev:
	case <-ctx.Done():
	}
}
