package httpserver

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordheat/internal/challenge"
	"github.com/robalobadob/wordheat/internal/game"
)

// Stream message types.
const (
	msgSnapshot  = "snapshot"
	msgSession   = "session"
	msgChallenge = "challenge"
	msgClosed    = "closed"
)

// wsMessage is one frame of the /game/{id}/ws stream.
type wsMessage struct {
	Type      string           `json:"type"`
	Game      *game.View       `json:"game,omitempty"`
	Session   *game.Event      `json:"session,omitempty"`
	Challenge *challenge.Event `json:"challenge,omitempty"`
}

// handleGameWS streams timer ticks, guesses, status changes and challenge
// events for one session. The first frame is a full snapshot.
func (s *Server) handleGameWS(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	upgrader := websocket.Upgrader{CheckOrigin: s.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	updates, cancel := s.hub.Subscribe(sess.ID)
	defer cancel()

	view := sess.Snapshot()
	if err := conn.WriteJSON(wsMessage{Type: msgSnapshot, Game: &view}); err != nil {
		return
	}
	log.Debug().Str("session", sess.ID).Str("remote", r.RemoteAddr).Msg("ws connected")

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(msg); err != nil || msg.Type == msgClosed {
				return
			}
		case <-gone:
			log.Debug().Str("session", sess.ID).Msg("ws disconnected")
			return
		}
	}
}

// checkOrigin accepts non-browser clients and the configured client origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || origin == s.cfg.ClientOrigin || origin == "http://"+r.Host || origin == "https://"+r.Host
}
