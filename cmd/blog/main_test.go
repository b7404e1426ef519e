package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alphabot-ai/blog/internal/auth"
	"github.com/alphabot-ai/blog/internal/config"
	"github.com/alphabot-ai/blog/internal/model"
	"github.com/alphabot-ai/blog/internal/store/sqlite"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	flagDB, flagAddr = "", ""
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("blog %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestMigrateAndUsersCommands(t *testing.T) {
	t.Setenv("BLOG_CONFIG", "")
	db := filepath.Join(t.TempDir(), "blog.db")

	out := runCLI(t, "--db", db, "migrate")
	if !strings.Contains(out, "schema version 2") {
		t.Fatalf("unexpected migrate output %q", out)
	}

	st, err := sqlite.Open(db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	svc := auth.NewService(st, auth.PBKDF2Hasher{Iterations: 1000})
	ctx := context.Background()
	if _, err := svc.Register(ctx, "owner@example.com", "Owner", "pw"); err != nil {
		t.Fatalf("register owner: %v", err)
	}
	if _, err := svc.Register(ctx, "editor@example.com", "Editor", "pw"); err != nil {
		t.Fatalf("register editor: %v", err)
	}
	_ = st.Close()

	runCLI(t, "--db", db, "users", "promote", "editor@example.com")
	out = runCLI(t, "--db", db, "users", "list")
	if !strings.Contains(out, "editor@example.com") || strings.Count(out, string(model.RoleAdmin)) != 2 {
		t.Fatalf("expected two admins in listing:\n%s", out)
	}

	runCLI(t, "--db", db, "users", "demote", "owner@example.com")
	st, err = sqlite.Open(db)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer st.Close()
	owner, err := st.FindUserByEmail(ctx, "owner@example.com")
	if err != nil {
		t.Fatalf("find owner: %v", err)
	}
	if owner.Role != model.RoleUser {
		t.Fatalf("expected owner demoted, got %s", owner.Role)
	}
}

func TestUsersPromoteUnknownEmail(t *testing.T) {
	flagDB = ""
	root := newRootCmd()
	root.SetArgs([]string{"--db", filepath.Join(t.TempDir(), "blog.db"), "users", "promote", "ghost@example.com"})
	root.SetOut(&bytes.Buffer{})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected an error for an unknown email")
	}
}

func TestNewHasher(t *testing.T) {
	if _, ok := newHasher(config.PasswordConfig{Method: config.PasswordBcrypt, BcryptCost: 4}).(auth.BcryptHasher); !ok {
		t.Fatalf("expected bcrypt hasher")
	}
	h, ok := newHasher(config.Default().Password).(auth.PBKDF2Hasher)
	if !ok || h.Iterations != 600000 || h.SaltLength != 8 {
		t.Fatalf("unexpected default hasher %+v", h)
	}
}

func TestVersion(t *testing.T) {
	if out := runCLI(t, "version"); !strings.HasPrefix(out, "blog ") {
		t.Fatalf("unexpected version output %q", out)
	}
}
