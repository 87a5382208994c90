// internal/game/engine.go
//
// Game session state machine for one player.
// Responsibilities:
//   - Resolve the target word and reset state on Initialize.
//   - Serialize guess scoring (one oracle call in flight per session) and
//     apply results only while the session is still playing.
//   - Drive terminal transitions (win, timeout, surrender) and their side
//     effects on the player profile.
//   - Run the Blitz countdown and stop it on any terminal transition.
//
// Notes:
//   - The session lock is never held across an oracle or profile call.
//     A generation counter discards results that belong to an earlier round.
//   - Oracle failures are absorbed here: scoring falls back to
//     scoring.Fallback, post-game content to fixed texts.
//   - Recap, related words and definition are fetched after the terminal
//     transition, off the request path, and announced with EventContent.
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/wordheat/internal/daily"
	"github.com/robalobadob/wordheat/internal/economy"
	"github.com/robalobadob/wordheat/internal/heat"
	"github.com/robalobadob/wordheat/internal/scoring"
	"github.com/robalobadob/wordheat/internal/words"
)

const (
	defaultLanguage = "English"
	defaultRecap    = "Well done!"
)

// Deps are the collaborators of a Session. Only Targets and Scorer are required.
type Deps struct {
	Targets     Targets
	Scorer      Scorer
	Shop        Shop
	Commentator Commentator
	Profile     Profile
	Link        ChallengeLink
	Turns       TurnSequencer
	Notify      func(Event)

	Clock           func() time.Time
	SurrenderWindow time.Duration
	BlitzSeconds    int
	// TickInterval drives the Blitz clock from a goroutine. Zero leaves
	// ticking to explicit Tick calls.
	TickInterval time.Duration
}

// Session is one player's game. It is safe for concurrent use.
type Session struct {
	ID string

	deps   Deps
	ctx    context.Context
	cancel context.CancelFunc

	bg sync.WaitGroup // post-game fetches

	mu           sync.Mutex
	gen          int
	mode         Mode
	language     string
	target       string
	seed         string
	level        int
	status       Status
	guesses      []Guess
	best         int
	hints        []economy.Hint
	revealed     int
	conceded     bool
	submitting   bool
	shopping     bool
	sawBurning   bool
	surrender    Confirm
	remaining    int
	clockStop    chan struct{}
	recap        string
	related      []string
	definition   string
	showTutorial bool
	hard         bool
}

// New creates an idle session; call Initialize to start a round.
func New(deps Deps) *Session {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.SurrenderWindow <= 0 {
		deps.SurrenderWindow = DefaultSurrenderWindow
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:     uuid.NewString(),
		deps:   deps,
		ctx:    ctx,
		cancel: cancel,
		status: StatusLost,
		level:  1,
	}
}

// Outcome is the result of SubmitGuess.
type Outcome struct {
	Guess     *Guess `json:"guess,omitempty"`
	Ignored   bool   `json:"ignored,omitempty"`
	Status    Status `json:"status"`
	BestScore int    `json:"bestScore"`
}

// Redacted drops the numeric score from o, keeping the temperature.
func (o Outcome) Redacted() Outcome {
	if o.Guess != nil {
		g := redact(*o.Guess)
		o.Guess = &g
	}
	o.BestScore = 0
	return o
}

// SurrenderOutcome is the result of Surrender.
type SurrenderOutcome struct {
	Armed    bool      `json:"armed"`
	Until    time.Time `json:"until,omitempty"`
	Conceded bool      `json:"conceded,omitempty"`
	Status   Status    `json:"status"`
}

// Initialize starts a round: resolves the target, resets all state and arms
// the Blitz clock. Daily mode returns ErrAlreadyPlayed before any word is
// requested when the profile already solved the day's seed.
func (s *Session) Initialize(ctx context.Context, p Params) error {
	if !p.Mode.Valid() {
		return fmt.Errorf("game: unknown mode %q", p.Mode)
	}
	lang := p.Language
	if lang == "" {
		lang = defaultLanguage
	}

	level := 1
	if s.deps.Profile != nil {
		if l, err := s.deps.Profile.Level(ctx); err != nil {
			log.Warn().Err(err).Str("session", s.ID).Msg("profile level unavailable")
		} else {
			level = l
		}
	}

	var (
		target       string
		seed         string
		showTutorial bool
	)
	switch p.Mode {
	case ModeTutorial:
		target = TutorialWord
		if s.deps.Profile != nil {
			done, err := s.deps.Profile.TutorialDone(ctx)
			if err != nil {
				log.Warn().Err(err).Str("session", s.ID).Msg("tutorial flag unavailable")
			}
			showTutorial = err == nil && !done
		}
	case ModeDaily:
		seed = p.Date
		if seed == "" {
			seed = daily.DateKey(s.deps.Clock())
		}
		if s.deps.Profile != nil {
			played, err := s.deps.Profile.HasSolvedSeed(ctx, seed)
			if err != nil {
				return fmt.Errorf("check daily %s: %w", seed, err)
			}
			if played {
				return ErrAlreadyPlayed
			}
		}
		fallthrough
	default:
		t, err := s.deps.Targets.Obtain(ctx, targetRequest(p, lang, seed))
		if err != nil {
			return err
		}
		target = t.Word
		if t.Seed != "" {
			seed = t.Seed
		}
	}

	s.mu.Lock()
	s.stopClockLocked()
	s.gen++
	s.mode = p.Mode
	s.language = lang
	s.target = heat.Normalize(target)
	s.seed = seed
	s.level = level
	s.status = StatusPlaying
	s.guesses = nil
	s.best = 0
	s.hints = nil
	s.revealed = 0
	s.conceded = false
	s.submitting = false
	s.shopping = false
	s.sawBurning = false
	s.surrender.Reset()
	s.remaining = 0
	s.recap = ""
	s.related = nil
	s.definition = ""
	s.showTutorial = showTutorial
	s.hard = p.Hard
	if p.Mode == ModeBlitz {
		s.remaining = economy.BlitzSeconds(level, s.deps.BlitzSeconds)
		s.startClockLocked()
	}
	s.mu.Unlock()

	log.Info().Str("session", s.ID).Str("mode", string(p.Mode)).Str("seed", seed).Int("level", level).Msg("session started")
	return nil
}

func targetRequest(p Params, lang, seed string) words.Request {
	req := words.Request{Language: lang}
	switch {
	case p.Mode == ModeDaily:
		req.Source, req.Seed = words.SourceSeeded, seed
	case p.Mode == ModeChallenge:
		req.Source, req.ChallengeID = words.SourceChallenge, p.ChallengeID
	case p.Word != "":
		req.Source, req.Preset = words.SourcePreset, p.Word
	case p.Mode == ModeParty && p.Party.Word != "":
		req.Source, req.Preset = words.SourcePreset, p.Party.Word
	case p.Topic != "":
		req.Source, req.Category = words.SourceCategory, p.Topic
	case p.Category != "":
		req.Source, req.Category = words.SourceCategory, p.Category
	default:
		req.Source = words.SourceRandom
	}
	return req
}

// SubmitGuess scores text and appends it to the log. Empty, duplicate and
// late submissions are ignored without error.
func (s *Session) SubmitGuess(ctx context.Context, text string) (Outcome, error) {
	word := heat.Normalize(text)

	s.mu.Lock()
	if s.status != StatusPlaying || s.conceded || word == "" || s.hasGuessLocked(word) {
		out := Outcome{Ignored: true, Status: s.status, BestScore: s.best}
		s.mu.Unlock()
		return out, nil
	}
	if s.deps.Turns != nil && !s.deps.Turns.Ready() {
		s.mu.Unlock()
		return Outcome{}, ErrAwaitingHandoff
	}
	if s.submitting {
		s.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	s.submitting = true
	gen, target, lang := s.gen, s.target, s.language
	s.mu.Unlock()

	sim, err := s.deps.Scorer.Score(ctx, target, word, lang)
	if err != nil {
		if ctx.Err() != nil {
			s.mu.Lock()
			s.submitting = false
			s.mu.Unlock()
			return Outcome{}, ctx.Err()
		}
		log.Warn().Err(err).Str("session", s.ID).Str("guess", word).Msg("scoring failed, using fallback")
		sim = scoring.Fallback
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return Outcome{Ignored: true, Status: StatusPlaying}, nil
	}
	s.submitting = false
	if s.status != StatusPlaying || s.conceded {
		out := Outcome{Ignored: true, Status: s.status, BestScore: s.best}
		s.mu.Unlock()
		return out, nil
	}
	g := Guess{
		Word:        word,
		Score:       heat.Clamp(sim.Score),
		Rank:        sim.Rank,
		Temperature: heat.For(sim.Score),
		At:          s.deps.Clock(),
	}
	s.guesses = append(s.guesses, g)
	s.best = max(s.best, g.Score)
	won := g.Score == 100
	firstBurning := g.Temperature == heat.Burning && !s.sawBurning
	if firstBurning {
		s.sawBurning = true
	}
	if won {
		s.status = StatusWon
		s.stopClockLocked()
	}
	count := len(s.guesses)
	link := s.deps.Link
	out := Outcome{Guess: &g, Status: s.status, BestScore: s.best}
	shown := g
	if s.hard && !won {
		shown = redact(g)
	}
	s.mu.Unlock()

	if s.deps.Turns != nil {
		s.deps.Turns.AfterGuess(won)
	}
	if link != nil {
		link.PushProgress(count, won)
	}
	s.notify(Event{Kind: EventGuess, Status: out.Status, Guess: &shown})
	if firstBurning {
		s.mission(ctx, MissionGetBurning)
	}
	if won {
		s.onWin(ctx, gen)
	}
	return out, nil
}

func (s *Session) hasGuessLocked(word string) bool {
	return lo.ContainsBy(s.guesses, func(g Guess) bool { return g.Word == word })
}

// onWin runs the win side effects. The clock is already stopped, and the
// guess count includes the winning guess.
func (s *Session) onWin(ctx context.Context, gen int) {
	s.mu.Lock()
	win := Win{Word: s.target, Guesses: len(s.guesses), Mode: s.mode, Seed: s.seed}
	level, lang := s.level, s.language
	history := lo.Map(s.guesses, func(g Guess, _ int) string { return g.Word })
	s.mu.Unlock()

	if p := s.deps.Profile; p != nil {
		if err := p.RegisterWin(ctx, win); err != nil {
			log.Error().Err(err).Str("session", s.ID).Msg("register win")
		}
		if err := p.AddCoins(ctx, economy.WinReward(level)); err != nil {
			log.Error().Err(err).Str("session", s.ID).Msg("add coins")
		}
		if win.Mode == ModeTutorial {
			if err := p.CompleteTutorial(ctx); err != nil {
				log.Error().Err(err).Str("session", s.ID).Msg("complete tutorial")
			}
		}
	}
	s.mission(ctx, MissionWinGame)
	if win.Mode == ModeBlitz {
		s.mission(ctx, MissionPlayBlitz)
	}

	log.Info().Str("session", s.ID).Int("guesses", win.Guesses).Msg("session won")
	s.notify(Event{Kind: EventStatus, Status: StatusWon})
	s.fetchContent(gen, win.Word, lang, history, true)
}

// afterLoss counts the loss and fetches the review words.
func (s *Session) afterLoss(ctx context.Context, gen int) {
	s.mu.Lock()
	target, lang, mode := s.target, s.language, s.mode
	s.mu.Unlock()

	if mode == ModeBlitz {
		s.mission(ctx, MissionPlayBlitz)
	}
	if p := s.deps.Profile; p != nil {
		if err := p.RegisterLoss(ctx); err != nil {
			log.Error().Err(err).Str("session", s.ID).Msg("register loss")
		}
	}
	log.Info().Str("session", s.ID).Str("mode", string(mode)).Msg("session lost")
	s.notify(Event{Kind: EventStatus, Status: StatusLost})
	s.fetchContent(gen, target, lang, nil, false)
}

// fetchContent loads the post-game texts in the background and publishes
// EventContent when they land. A win also gets a recap of history. The fetch
// is bound to the session, so Close abandons it.
func (s *Session) fetchContent(gen int, target, lang string, history []string, won bool) {
	c := s.deps.Commentator
	if c == nil {
		s.mu.Lock()
		if gen == s.gen && won {
			s.recap = defaultRecap
		}
		s.mu.Unlock()
		return
	}
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx := s.ctx
		var recap string
		if won {
			recap = defaultRecap
			if text, err := c.Recap(ctx, target, lang, history); err != nil {
				log.Warn().Err(err).Str("session", s.ID).Msg("recap failed, using fallback")
			} else if text != "" {
				recap = text
			}
		}
		related := s.relatedWords(ctx, target, lang)
		definition, err := c.Definition(ctx, target, lang)
		if err != nil {
			log.Warn().Err(err).Str("session", s.ID).Msg("definition failed")
			definition = ""
		}

		s.mu.Lock()
		if gen != s.gen || ctx.Err() != nil {
			s.mu.Unlock()
			return
		}
		s.recap, s.related, s.definition = recap, related, definition
		status := s.status
		s.mu.Unlock()
		s.notify(Event{Kind: EventContent, Status: status})
	}()
}

func (s *Session) relatedWords(ctx context.Context, target, lang string) []string {
	list, err := s.deps.Commentator.RelatedWords(ctx, target, lang)
	if err != nil {
		log.Warn().Err(err).Str("session", s.ID).Msg("related words failed")
		return []string{}
	}
	return list
}

func (s *Session) mission(ctx context.Context, id string) {
	if s.deps.Profile == nil {
		return
	}
	if err := s.deps.Profile.UpdateMissionProgress(ctx, id, 1); err != nil {
		log.Error().Err(err).Str("session", s.ID).Str("mission", id).Msg("mission progress")
	}
}

// Surrender needs two calls within the confirmation window. When a challenge
// is bound the surrender is pushed to it and the outcome arrives via Settle.
func (s *Session) Surrender(ctx context.Context) (SurrenderOutcome, error) {
	s.mu.Lock()
	if s.status != StatusPlaying || s.conceded {
		out := SurrenderOutcome{Status: s.status, Conceded: s.conceded}
		s.mu.Unlock()
		return out, nil
	}
	now := s.deps.Clock()
	if !s.surrender.Press(now, s.deps.SurrenderWindow) {
		out := SurrenderOutcome{Armed: true, Until: s.surrender.Until(), Status: s.status}
		s.mu.Unlock()
		return out, nil
	}
	s.stopClockLocked()
	gen := s.gen
	if link := s.deps.Link; link != nil {
		s.conceded = true
		s.mu.Unlock()
		link.Surrender()
		log.Info().Str("session", s.ID).Msg("surrendered challenge")
		return SurrenderOutcome{Conceded: true, Status: StatusPlaying}, nil
	}
	s.status = StatusLost
	s.mu.Unlock()

	s.afterLoss(ctx, gen)
	return SurrenderOutcome{Status: StatusLost}, nil
}

// Settle applies a challenge result. A conceded session, or one that lost
// the race, ends lost. A session whose opponent gave up stays open.
func (s *Session) Settle(ctx context.Context, won bool) {
	s.mu.Lock()
	if s.status != StatusPlaying || (won && !s.conceded) {
		s.mu.Unlock()
		return
	}
	s.status = StatusLost
	s.stopClockLocked()
	gen := s.gen
	s.mu.Unlock()
	s.afterLoss(ctx, gen)
}

// Tick advances the Blitz clock by one second and times the session out at
// zero. It returns the seconds left; outside a running Blitz it does nothing.
func (s *Session) Tick() int { return s.tick(nil) }

// tick with a non-nil stop only counts while that clock is still the armed one.
func (s *Session) tick(stop chan struct{}) int {
	s.mu.Lock()
	if (stop != nil && stop != s.clockStop) || s.mode != ModeBlitz || s.status != StatusPlaying || s.remaining <= 0 {
		r := s.remaining
		s.mu.Unlock()
		return r
	}
	s.remaining--
	r := s.remaining
	if r > 0 {
		s.mu.Unlock()
		s.notify(Event{Kind: EventTick, Status: StatusPlaying, Remaining: r})
		return r
	}
	s.status = StatusLost
	s.stopClockLocked()
	gen := s.gen
	s.mu.Unlock()

	s.notify(Event{Kind: EventTick, Status: StatusLost})
	s.afterLoss(s.ctx, gen)
	return 0
}

// Extend adds seconds to a running Blitz clock.
func (s *Session) Extend(seconds int) {
	s.mu.Lock()
	if s.mode == ModeBlitz && s.status == StatusPlaying {
		s.remaining += seconds
	}
	s.mu.Unlock()
}

func (s *Session) startClockLocked() {
	if s.deps.TickInterval <= 0 {
		return
	}
	stop := make(chan struct{})
	s.clockStop = stop
	go s.runClock(stop, s.deps.TickInterval)
}

func (s *Session) runClock(stop chan struct{}, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-stop:
			return
		case <-t.C:
			s.tick(stop)
		}
	}
}

func (s *Session) stopClockLocked() {
	if s.clockStop != nil {
		close(s.clockStop)
		s.clockStop = nil
	}
}

// AcknowledgeHandoff lets the next party player start guessing.
func (s *Session) AcknowledgeHandoff() error {
	if s.deps.Turns == nil {
		return ErrNotParty
	}
	s.deps.Turns.Acknowledge()
	return nil
}

// Close abandons the session: the clock stops and the challenge link is
// released. No background work survives Close.
func (s *Session) Close() {
	s.cancel()
	s.mu.Lock()
	s.stopClockLocked()
	link := s.deps.Link
	s.deps.Link = nil
	s.mu.Unlock()
	if link != nil {
		link.Close()
	}
}

func (s *Session) notify(ev Event) {
	if s.deps.Notify != nil {
		s.deps.Notify(ev)
	}
}
