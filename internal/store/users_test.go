package store

import (
	"context"
	"testing"
)

func TestUsernamesAreUniqueIgnoringCase(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(openTestDB(t))

	u, err := users.Create(ctx, "Ada", "hash")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := users.Create(ctx, "ada", "hash2"); err != ErrUsernameTaken {
		t.Fatalf("duplicate err = %v", err)
	}
	got, err := users.ByUsername(ctx, "ADA")
	if err != nil || got.ID != u.ID {
		t.Fatalf("ByUsername = %+v, %v", got, err)
	}
	if _, err := users.ByID(ctx, "nope"); err != ErrUserNotFound {
		t.Fatalf("ByID err = %v", err)
	}
}
