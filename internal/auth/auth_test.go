package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/alphabot-ai/blog/internal/model"
	"github.com/alphabot-ai/blog/internal/store/sqlite"
)

// fastHasher keeps the tests quick; production uses far more iterations.
var fastHasher = PBKDF2Hasher{Iterations: 1000, SaltLength: 8}

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return NewService(st, fastHasher)
}

func TestPBKDF2KnownVector(t *testing.T) {
	encoded := "pbkdf2:sha256:1000$AbCdEf12$55d4206cae14e37d8818ccfde8f2d5f2533ef946372d47b3af83949c41918003"
	ok, err := CheckPassword(encoded, "hunter2")
	if err != nil {
		t.Fatalf("check password: %v", err)
	}
	if !ok {
		t.Fatalf("expected known hash to verify")
	}
	ok, err = CheckPassword(encoded, "hunter3")
	if err != nil {
		t.Fatalf("check wrong password: %v", err)
	}
	if ok {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestPBKDF2HashFormat(t *testing.T) {
	encoded, err := fastHasher.Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 {
		t.Fatalf("unexpected hash format: %s", encoded)
	}
	if parts[0] != "pbkdf2:sha256:1000" {
		t.Fatalf("unexpected method: %s", parts[0])
	}
	if len(parts[1]) != 8 {
		t.Fatalf("expected 8 char salt, got %q", parts[1])
	}
	if len(parts[2]) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(parts[2]))
	}

	again, err := fastHasher.Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if again == encoded {
		t.Fatalf("expected salted hashes to differ")
	}
}

func TestBcryptHasher(t *testing.T) {
	encoded, err := BcryptHasher{Cost: 4}.Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if ok, err := CheckPassword(encoded, "secret"); err != nil || !ok {
		t.Fatalf("expected bcrypt hash to verify, ok=%v err=%v", ok, err)
	}
	if ok, err := CheckPassword(encoded, "nope"); err != nil || ok {
		t.Fatalf("expected bcrypt mismatch, ok=%v err=%v", ok, err)
	}
}

func TestCheckPasswordRejectsGarbage(t *testing.T) {
	for _, encoded := range []string{"", "plaintext", "pbkdf2:sha1:10$salt$00", "pbkdf2:sha256:x$salt$00", "pbkdf2:sha256:10$salt$zz"} {
		if _, err := CheckPassword(encoded, "pw"); !errors.Is(err, ErrUnknownHash) {
			t.Fatalf("%q: expected ErrUnknownHash, got %v", encoded, err)
		}
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	admin, err := svc.Register(ctx, "admin@example.com", "Admin", "pw1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if admin.ID != model.BootstrapAdminID || !admin.IsAdmin() {
		t.Fatalf("expected first registration to be admin, got %+v", admin)
	}
	if admin.PasswordHash == "pw1" || !strings.HasPrefix(admin.PasswordHash, "pbkdf2:sha256:") {
		t.Fatalf("expected hashed password, got %q", admin.PasswordHash)
	}

	reader, err := svc.Register(ctx, "reader@example.com", "Reader", "pw2")
	if err != nil {
		t.Fatalf("register reader: %v", err)
	}
	if reader.IsAdmin() {
		t.Fatalf("expected second registration to be a plain user")
	}

	got, err := svc.Login(ctx, "reader@example.com", "pw2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != reader.ID {
		t.Fatalf("expected user %d, got %d", reader.ID, got.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@example.com", "A", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "a@example.com", "Other", "pw"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "a@example.com", "A", "right"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "missing@example.com", "right"); !errors.Is(err, ErrEmailNotFound) {
		t.Fatalf("expected ErrEmailNotFound, got %v", err)
	}
	if _, err := svc.Login(ctx, "a@example.com", "wrong"); !errors.Is(err, ErrIncorrectPassword) {
		t.Fatalf("expected ErrIncorrectPassword, got %v", err)
	}
}
