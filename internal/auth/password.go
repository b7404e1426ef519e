package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

var ErrUnknownHash = errors.New("auth: unrecognised password hash")

const saltChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Hasher turns a plaintext password into a self-describing hash string.
type Hasher interface {
	Hash(password string) (string, error)
}

// PBKDF2Hasher produces "pbkdf2:sha256:<iterations>$<salt>$<hex digest>",
// the format used by werkzeug, so existing user tables keep working.
type PBKDF2Hasher struct {
	Iterations int
	SaltLength int
}

func (h PBKDF2Hasher) Hash(password string) (string, error) {
	iterations := h.Iterations
	if iterations <= 0 {
		iterations = 600000
	}
	saltLen := h.SaltLength
	if saltLen <= 0 {
		saltLen = 8
	}
	salt, err := randomSalt(saltLen)
	if err != nil {
		return "", err
	}
	digest := pbkdf2.Key([]byte(password), []byte(salt), iterations, sha256.Size, sha256.New)
	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", iterations, salt, hex.EncodeToString(digest)), nil
}

type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether password matches encoded, accepting both
// the pbkdf2 and bcrypt encodings.
func CheckPassword(encoded, password string) (bool, error) {
	switch {
	case strings.HasPrefix(encoded, "pbkdf2:"):
		return checkPBKDF2(encoded, password)
	case strings.HasPrefix(encoded, "$2a$"), strings.HasPrefix(encoded, "$2b$"), strings.HasPrefix(encoded, "$2y$"):
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return err == nil, err
	default:
		return false, ErrUnknownHash
	}
}

func checkPBKDF2(encoded, password string) (bool, error) {
	parts := strings.SplitN(encoded, "$", 3)
	if len(parts) != 3 {
		return false, ErrUnknownHash
	}
	method := strings.Split(parts[0], ":")
	if len(method) != 3 || method[1] != "sha256" {
		return false, ErrUnknownHash
	}
	iterations, err := strconv.Atoi(method[2])
	if err != nil || iterations <= 0 {
		return false, ErrUnknownHash
	}
	want, err := hex.DecodeString(parts[2])
	if err != nil {
		return false, ErrUnknownHash
	}
	got := pbkdf2.Key([]byte(password), []byte(parts[1]), iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func randomSalt(n int) (string, error) {
	limit := big.NewInt(int64(len(saltChars)))
	var b strings.Builder
	b.Grow(n)
	for range n {
		i, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(saltChars[i.Int64()])
	}
	return b.String(), nil
}
