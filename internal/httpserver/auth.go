// internal/httpserver/auth.go
//
// Accounts and request identity.
// Responsibilities:
//   - /auth/signup, /auth/login, /auth/logout, /auth/me.
//   - HS256 JWT in an HttpOnly cookie (or Authorization: Bearer).
//   - Guest identity from an anonymous cookie, so guests get a profile too.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/wordheat/internal/store"
)

const anonCookieName = "wordheat_anon"

// identity is placed into the request context by withIdentity.
type identity struct {
	ProfileID string `json:"id"`
	Username  string `json:"username"`
	Guest     bool   `json:"guest"`
}

type ctxIdentityKey struct{}

func identityFrom(ctx context.Context) *identity {
	id, _ := ctx.Value(ctxIdentityKey{}).(*identity)
	return id
}

type credentials struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

var credentialMessages = bindMessages{
	"Username": {"required": "username is required", "username": "username must be 3-24 letters, numbers or underscores"},
	"Password": {"required": "password is required", "min": "password must be 8-100 chars", "max": "password must be 8-100 chars"},
}

func (s *Server) mountAuth(r chi.Router) {
	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/logout", s.handleLogout)
	r.With(s.requireAuth).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, identityFrom(r.Context()))
	})
}

// handleSignup creates a user and its profile, then signs the user in.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if !s.bindJSON(w, r, &body, credentialMessages) {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.deps.Users.Create(r.Context(), strings.TrimSpace(body.Username), string(hash))
	if errors.Is(err, store.ErrUsernameTaken) {
		writeJSON(w, http.StatusConflict, errorBody{Error: "Username taken"})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Profiles.Ensure(r.Context(), u.ID, u.Username, false); err != nil {
		writeError(w, r, err)
		return
	}
	if !s.issueToken(w, r, u) {
		return
	}
	log.Info().Str("user", u.ID).Msg("signup")
	writeJSON(w, http.StatusCreated, identity{ProfileID: u.ID, Username: u.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if !s.bindJSON(w, r, &body, credentialMessages) {
		return
	}
	u, err := s.deps.Users.ByUsername(r.Context(), strings.TrimSpace(body.Username))
	if err != nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(body.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Invalid username or password"})
		return
	}
	if err := s.deps.Profiles.Ensure(r.Context(), u.ID, u.Username, false); err != nil {
		writeError(w, r, err)
		return
	}
	if !s.issueToken(w, r, u) {
		return
	}
	writeJSON(w, http.StatusOK, identity{ProfileID: u.ID, Username: u.Username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setCookie(w, s.cfg.CookieName, "", -1, time.Time{})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request, u store.User) bool {
	exp := time.Now().Add(time.Duration(s.cfg.JWTExpiresDays) * 24 * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       u.ID,
		"username": u.Username,
		"exp":      exp.Unix(),
		"iat":      time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "sign_failed"})
		return false
	}
	s.setCookie(w, s.cfg.CookieName, signed, 0, exp)
	return true
}

// userFromToken returns the signed-in user, or nil.
func (s *Server) userFromToken(r *http.Request) *identity {
	tok := bearerOrCookie(r, s.cfg.CookieName)
	if tok == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return nil
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return nil
	}
	u, err := s.deps.Users.ByID(r.Context(), id)
	if err != nil {
		return nil
	}
	return &identity{ProfileID: u.ID, Username: u.Username}
}

// requireAuth rejects requests without a valid user token.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		me := s.userFromToken(r)
		if me == nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxIdentityKey{}, me)))
	})
}

// withIdentity attaches the signed-in user, or a guest keyed by the anonymous
// cookie, and makes sure the matching profile row exists. It never 401s.
func (s *Server) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		me := s.userFromToken(r)
		if me == nil {
			anon := s.ensureAnonID(w, r)
			me = &identity{ProfileID: anon, Username: "guest-" + anon[:min(8, len(anon))], Guest: true}
		}
		if err := s.deps.Profiles.Ensure(r.Context(), me.ProfileID, me.Username, me.Guest); err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxIdentityKey{}, me)))
	})
}

// ensureAnonID returns an existing anon cookie or sets a new one.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	s.setCookie(w, anonCookieName, id, 0, time.Now().Add(180*24*time.Hour))
	return id
}

func (s *Server) setCookie(w http.ResponseWriter, name, value string, maxAge int, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.cfg.Production {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Production,
		SameSite: sameSite,
		MaxAge:   maxAge,
		Expires:  exp,
	})
}

func bearerOrCookie(r *http.Request, cookie string) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookie); err == nil {
		return c.Value
	}
	return ""
}
