// internal/httpserver/routes_daily.go
//
// Daily puzzle and profile read endpoints.
//   - GET /daily/leaderboard → fewest guesses for today (or ?date=YYYY-MM-DD)
//   - GET /profile/me        → coins, level, perks, inventory, today's missions
//
// The daily game itself is POST /game/new with mode "daily": everyone gets
// the same word for the date, and a profile can solve it once.
package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordheat/internal/daily"
)

func (s *Server) mountDaily(r chi.Router) {
	r.Get("/daily/leaderboard", s.handleLeaderboard)
	r.Get("/profile/me", s.handleProfile)
}

// handleLeaderboard returns the top results for a date (default: today UTC).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_date"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.deps.Daily.Leaderboard(r.Context(), date, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "results": rows})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	me := identityFrom(r.Context())
	sum, err := s.deps.Profiles.For(me.ProfileID, me.Username).Summary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
