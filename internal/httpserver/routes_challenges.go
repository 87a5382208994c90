// internal/httpserver/routes_challenges.go
//
// Challenge endpoints:
//   - POST /challenges      → create a challenge (random word, or a word the
//     challenger sets, in which case the challenger only watches)
//   - GET  /challenges/{id} → the record, without the word
//
// Playing a challenge goes through POST /game/new with mode "challenge".
package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordheat/internal/challenge"
	"github.com/robalobadob/wordheat/internal/words"
)

type newChallengeReq struct {
	Opponent string `json:"opponent" validate:"max=64"`
	Word     string `json:"word"` // base64, as in invite links
	Language string `json:"language"`
	Category string `json:"category" validate:"max=64"`
}

var challengeMessages = bindMessages{
	"Opponent": {"max": "opponent name is too long"},
	"Category": {"max": "category is too long"},
}

func (s *Server) mountChallenges(r chi.Router) {
	r.Post("/challenges", s.handleNewChallenge)
	r.Get("/challenges/{id}", s.handleGetChallenge)
}

func (s *Server) handleNewChallenge(w http.ResponseWriter, r *http.Request) {
	var req newChallengeReq
	if !s.bindJSON(w, r, &req, challengeMessages) {
		return
	}
	me := identityFrom(r.Context())
	opponent := strings.TrimSpace(req.Opponent)
	if strings.EqualFold(opponent, me.Username) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "cannot challenge yourself"})
		return
	}

	in := challenge.NewChallenge{Challenger: me.Username, Opponent: opponent}
	if req.Word != "" {
		word, err := words.DecodePreset(req.Word)
		if err != nil {
			writeError(w, r, err)
			return
		}
		in.Word, in.Setter = word, true
	} else {
		wr := words.Request{Source: words.SourceRandom, Language: req.Language}
		if req.Category != "" {
			wr.Source, wr.Category = words.SourceCategory, req.Category
		}
		t, err := s.deps.Targets.Obtain(r.Context(), wr)
		if err != nil {
			writeError(w, r, err)
			return
		}
		in.Word = t.Word
	}

	rec, err := s.deps.Challenges.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetChallenge(w http.ResponseWriter, r *http.Request) {
	rec, err := s.deps.Challenges.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
