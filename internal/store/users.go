package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrUsernameTaken = errors.New("store: username taken")
	ErrUserNotFound  = errors.New("store: user not found")
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Users persists registered accounts.
type Users struct{ db *sql.DB }

func NewUsers(db *sql.DB) *Users { return &Users{db: db} }

// Create inserts a user. Usernames are unique case-insensitively.
func (u *Users) Create(ctx context.Context, username, passwordHash string) (User, error) {
	usr := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	_, err := u.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		usr.ID, usr.Username, usr.PasswordHash, usr.CreatedAt.Format(time.RFC3339))
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return User{}, ErrUsernameTaken
	}
	if err != nil {
		return User{}, err
	}
	return usr, nil
}

func (u *Users) ByUsername(ctx context.Context, username string) (User, error) {
	return u.scan(u.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ? COLLATE NOCASE`, username))
}

func (u *Users) ByID(ctx context.Context, id string) (User, error) {
	return u.scan(u.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (u *Users) scan(row *sql.Row) (User, error) {
	var usr User
	var created string
	if err := row.Scan(&usr.ID, &usr.Username, &usr.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	usr.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return usr, nil
}
