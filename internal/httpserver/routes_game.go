// internal/httpserver/routes_game.go
//
// Game session endpoints. Sessions live in the in-memory store and are
// owned by the profile that created them; other callers get a 404.
//
//   - POST   /game/new              → start a session (any mode)
//   - GET    /game/{id}             → session snapshot
//   - POST   /game/{id}/guess       → submit a guess
//   - POST   /game/{id}/hint        → buy a hint
//   - POST   /game/{id}/powerup     → use (or auto-buy) a power-up
//   - POST   /game/{id}/surrender   → press surrender (twice to confirm)
//   - POST   /game/{id}/handoff     → party: next player has the device
//   - DELETE /game/{id}             → leave the session
package httpserver

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordheat/internal/challenge"
	"github.com/robalobadob/wordheat/internal/economy"
	"github.com/robalobadob/wordheat/internal/game"
	"github.com/robalobadob/wordheat/internal/party"
	"github.com/robalobadob/wordheat/internal/store"
)

type guessReq struct {
	Guess string `json:"guess" validate:"max=64"`
}

type guessRes struct {
	Outcome game.Outcome `json:"outcome"`
	Game    game.View    `json:"game"`
}

type hintReq struct {
	Kind economy.HintKind `json:"kind" validate:"required,oneof=word sentence"`
}

type powerupReq struct {
	Item economy.Item `json:"item" validate:"required"`
}

var gameMessages = bindMessages{
	"Mode":  {"required": "mode is required"},
	"Guess": {"max": "guess is too long"},
	"Kind":  {"required": "hint kind is required", "oneof": "hint kind must be word or sentence"},
	"Item":  {"required": "item is required"},
}

func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Get("/game/{id}", s.handleGetGame)
	r.Delete("/game/{id}", s.handleDeleteGame)
	r.Post("/game/{id}/guess", s.handleGuess)
	r.Post("/game/{id}/hint", s.handleHint)
	r.Post("/game/{id}/powerup", s.handlePowerup)
	r.Post("/game/{id}/surrender", s.handleSurrender)
	r.Post("/game/{id}/handoff", s.handleHandoff)
}

// handleNewGame builds a session for the caller's profile and starts it.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var p game.Params
	if !s.bindJSON(w, r, &p, gameMessages) {
		return
	}
	if !p.Mode.Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "unknown_mode"})
		return
	}
	me := identityFrom(r.Context())
	profile := s.deps.Profiles.For(me.ProfileID, me.Username)

	deps := game.Deps{
		Targets:         s.deps.Targets,
		Scorer:          s.deps.Scorer,
		Profile:         profile,
		SurrenderWindow: s.cfg.SurrenderWindow,
		BlitzSeconds:    s.cfg.BlitzSeconds,
		TickInterval:    s.deps.TickInterval,
	}
	if s.deps.Oracle != nil {
		deps.Commentator = s.deps.Oracle
		deps.Shop = economy.New(profile, s.deps.Oracle)
	}

	switch p.Mode {
	case game.ModeParty:
		seq, err := party.New(p.Party)
		if err != nil {
			writeError(w, r, err)
			return
		}
		deps.Turns = seq
	case game.ModeChallenge:
		if p.ChallengeID == "" {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "challengeId is required"})
			return
		}
		link, err := challenge.Join(r.Context(), s.deps.Challenges, p.ChallengeID, me.Username)
		if err != nil {
			writeError(w, r, err)
			return
		}
		deps.Link = link
	}

	var sess *game.Session
	deps.Notify = func(ev game.Event) {
		s.hub.Publish(sess.ID, wsMessage{Type: msgSession, Session: &ev})
	}
	sess = game.New(deps)
	if err := sess.Initialize(r.Context(), p); err != nil {
		sess.Close()
		writeError(w, r, err)
		return
	}
	if link, ok := deps.Link.(*challenge.Client); ok {
		go s.pumpChallenge(sess, link)
	}
	if err := s.deps.Sessions.Save(r.Context(), &store.Entry{Session: sess, Owner: me.ProfileID}); err != nil {
		sess.Close()
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

// pumpChallenge forwards challenge events to the session's stream and feeds
// the result back into the session. It ends when the client is closed.
func (s *Server) pumpChallenge(sess *game.Session, link *challenge.Client) {
	for ev := range link.Events() {
		s.hub.Publish(sess.ID, wsMessage{Type: msgChallenge, Challenge: &ev})
		if ev.Kind == challenge.EventResult {
			sess.Settle(context.Background(), ev.Won)
			view := sess.Snapshot()
			s.hub.Publish(sess.ID, wsMessage{Type: msgSnapshot, Game: &view})
		}
	}
	log.Debug().Str("session", sess.ID).Msg("challenge link closed")
}

// session loads the caller's session for {id}, answering 404 otherwise.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	e, err := s.deps.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err == nil && e.Owner != identityFrom(r.Context()).ProfileID {
		err = store.ErrSessionNotFound
	}
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return e.Session, true
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := s.deps.Sessions.Delete(r.Context(), sess.ID); err != nil {
		writeError(w, r, err)
		return
	}
	s.hub.Publish(sess.ID, wsMessage{Type: msgClosed})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req guessReq
	if !s.bindJSON(w, r, &req, gameMessages) {
		return
	}
	out, err := sess.SubmitGuess(r.Context(), req.Guess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view := sess.Snapshot()
	if view.Hard && out.Status == game.StatusPlaying {
		out = out.Redacted()
	}
	writeJSON(w, http.StatusOK, guessRes{Outcome: out, Game: view})
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req hintReq
	if !s.bindJSON(w, r, &req, gameMessages) {
		return
	}
	h, err := sess.PurchaseHint(r.Context(), req.Kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hint": h, "game": sess.Snapshot()})
}

func (s *Server) handlePowerup(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req powerupReq
	if !s.bindJSON(w, r, &req, gameMessages) {
		return
	}
	eff, err := sess.UsePowerup(r.Context(), req.Item)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"effect": eff, "game": sess.Snapshot()})
}

func (s *Server) handleSurrender(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	out, err := sess.Surrender(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"surrender": out, "game": sess.Snapshot()})
}

func (s *Server) handleHandoff(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.AcknowledgeHandoff(); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}
