// internal/httpserver/server.go
//
// HTTP server wiring for the WordHeat backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Auth endpoints: /auth/signup, /auth/login, /auth/logout, /auth/me.
//   - Game endpoints (guests allowed): /game/* and the /game/{id}/ws stream.
//   - Challenge, daily leaderboard and profile endpoints.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Every game request carries an identity: the JWT user when a valid token
//     is present, otherwise a guest keyed by an anonymous cookie.
//   - The websocket route sits outside the request timeout.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordheat/internal/challenge"
	"github.com/robalobadob/wordheat/internal/config"
	"github.com/robalobadob/wordheat/internal/daily"
	"github.com/robalobadob/wordheat/internal/economy"
	"github.com/robalobadob/wordheat/internal/game"
	"github.com/robalobadob/wordheat/internal/realtime"
	"github.com/robalobadob/wordheat/internal/store"
	"github.com/robalobadob/wordheat/internal/words"
)

// Oracle is the content side of the language model: hints, compass clues,
// recaps and related words.
type Oracle interface {
	economy.Clues
	game.Commentator
}

// Deps are the collaborators the server is built from.
type Deps struct {
	Config     config.Config
	Users      *store.Users
	Profiles   *store.Profiles
	Daily      *daily.Store
	Sessions   store.Sessions
	Challenges challenge.Store
	Targets    game.Targets
	Scorer     game.Scorer
	Oracle     Oracle
	// TickInterval drives Blitz clocks; zero means one second.
	TickInterval time.Duration
}

// Server bundles the router and its dependencies.
type Server struct {
	r        *chi.Mux
	deps     Deps
	cfg      config.Config
	hub      *realtime.Hub[wsMessage]
	validate *validator.Validate
}

// New constructs a Server, installs middleware, and registers routes.
func New(deps Deps) *Server {
	if deps.TickInterval <= 0 {
		deps.TickInterval = time.Second
	}
	s := &Server{
		r:        chi.NewRouter(),
		deps:     deps,
		cfg:      deps.Config,
		hub:      realtime.NewHub[wsMessage](32),
		validate: newValidator(),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)          // credentials-friendly CORS

	// Streaming: long-lived, no timeout.
	s.r.With(s.withIdentity).Get("/game/{id}/ws", s.handleGameWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(45 * time.Second)) // bound handler time
		r.Use(jsonContentType)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"wordheat","endpoints":["/health","POST /game/new","/game/{id}/*","/challenges","/daily/leaderboard","/auth/*"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]int{"fallback": len(words.Fallback())})
		})

		s.mountAuth(r)

		r.Group(func(r chi.Router) {
			r.Use(s.withIdentity)
			s.mountGame(r)
			s.mountChallenges(r)
			s.mountDaily(r)
		})
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ responses ----------------------------------

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, body := http.StatusInternalServerError, errorBody{Error: "internal_error"}
	switch {
	case errors.Is(err, game.ErrAlreadyPlayed):
		code, body = http.StatusConflict, errorBody{Error: "already_played", Redirect: "/home"}
	case errors.Is(err, challenge.ErrNotFound), errors.Is(err, words.ErrChallengeNotFound):
		code, body = http.StatusNotFound, errorBody{Error: "challenge_not_found", Redirect: "/challenges"}
	case errors.Is(err, challenge.ErrNotParticipant):
		code, body = http.StatusForbidden, errorBody{Error: "not_a_participant", Redirect: "/challenges"}
	case errors.Is(err, challenge.ErrSpectator):
		code, body = http.StatusForbidden, errorBody{Error: "spectator", Redirect: "/challenges"}
	case errors.Is(err, challenge.ErrFinished):
		code, body = http.StatusConflict, errorBody{Error: "challenge_finished", Redirect: "/challenges"}
	case errors.Is(err, store.ErrSessionNotFound):
		code, body = http.StatusNotFound, errorBody{Error: "game_not_found"}
	case errors.Is(err, economy.ErrInsufficientFunds):
		code, body = http.StatusPaymentRequired, errorBody{Error: "insufficient_funds"}
	case errors.Is(err, economy.ErrNotApplicableInMode):
		code, body = http.StatusConflict, errorBody{Error: "not_applicable"}
	case errors.Is(err, economy.ErrUnknownItem):
		code, body = http.StatusBadRequest, errorBody{Error: "unknown_item"}
	case errors.Is(err, game.ErrBusy):
		code, body = http.StatusTooManyRequests, errorBody{Error: "busy"}
	case errors.Is(err, game.ErrAwaitingHandoff):
		code, body = http.StatusConflict, errorBody{Error: "awaiting_handoff"}
	case errors.Is(err, game.ErrNotPlaying):
		code, body = http.StatusConflict, errorBody{Error: "game_over"}
	case errors.Is(err, game.ErrNotParty):
		code, body = http.StatusConflict, errorBody{Error: "not_a_party"}
	case errors.Is(err, game.ErrNoShop):
		code, body = http.StatusConflict, errorBody{Error: "shop_unavailable"}
	case errors.Is(err, words.ErrBadPreset):
		code, body = http.StatusBadRequest, errorBody{Error: "bad_word"}
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Str("request", chimw.GetReqID(r.Context())).Msg("request failed")
	}
	writeJSON(w, code, body)
}
