// Package session tracks signed-in users with server-side session records
// referenced by an opaque cookie token.
package session

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("session: not found")
	ErrExpired  = errors.New("session: expired")
)

// Session is a signed-in browser. Token is the cookie value; ID is a stable
// identifier that never leaves the server.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions.
type Store interface {
	CreateSession(ctx context.Context, s *Session) error
	// GetSession returns ErrNotFound for unknown tokens and ErrExpired for
	// records past their expiry.
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
	// DeleteExpiredSessions removes records that expired before the given
	// time and reports how many were removed.
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}
