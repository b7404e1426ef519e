package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/alphabot-ai/blog/internal/model"
	"github.com/alphabot-ai/blog/internal/store"
)

func TestFirstUserIsAdmin(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first := mustCreateUser(t, st, "first@example.com", "First")
	second := mustCreateUser(t, st, "second@example.com", "Second")

	if first.ID != model.BootstrapAdminID || first.Role != model.RoleAdmin {
		t.Fatalf("expected first user to be admin with id 1, got %+v", first)
	}
	if second.Role != model.RoleUser {
		t.Fatalf("expected second user role user, got %s", second.Role)
	}

	stored, err := st.GetUser(ctx, first.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !stored.IsAdmin() {
		t.Fatalf("expected stored first user to be admin")
	}
}

func TestDuplicateEmail(t *testing.T) {
	st := newTestStore(t)
	mustCreateUser(t, st, "dup@example.com", "One")

	u := model.User{Email: "dup@example.com", Name: "Two", PasswordHash: "x"}
	if _, err := st.CreateUser(context.Background(), &u); !errors.Is(err, store.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	users, err := st.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
}

func TestFindUserByEmail(t *testing.T) {
	st := newTestStore(t)
	created := mustCreateUser(t, st, "who@example.com", "Who")

	got, err := st.FindUserByEmail(context.Background(), "who@example.com")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if got.ID != created.ID || got.Name != "Who" || got.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := st.FindUserByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetUserRole(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, st, "first@example.com", "First")
	u := mustCreateUser(t, st, "second@example.com", "Second")

	if err := st.SetUserRole(ctx, u.ID, model.RoleAdmin); err != nil {
		t.Fatalf("promote: %v", err)
	}
	got, err := st.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Role != model.RoleAdmin {
		t.Fatalf("expected admin, got %s", got.Role)
	}

	if err := st.SetUserRole(ctx, 404, model.RoleAdmin); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
