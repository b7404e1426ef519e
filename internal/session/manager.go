package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	defaultCookieName = "blog_session"
	defaultTTL        = 30 * 24 * time.Hour
)

type Manager struct {
	store      Store
	cookieName string
	domain     string
	path       string
	ttl        time.Duration
	secure     bool
	sameSite   http.SameSite
	now        func() time.Time
}

type Option func(*Manager)

func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		cookieName: defaultCookieName,
		path:       "/",
		ttl:        defaultTTL,
		sameSite:   http.SameSiteLaxMode,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func WithCookieName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

func WithSecure(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

func WithDomain(domain string) Option {
	return func(m *Manager) {
		m.domain = domain
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func (m *Manager) CookieName() string {
	return m.cookieName
}

// Load returns the session named by the request cookie. A request without a
// cookie yields (nil, nil).
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return nil, nil
	}
	sess, err := m.store.GetSession(ctx, c.Value)
	if err != nil {
		return nil, err
	}
	if sess.IsExpired(m.now()) {
		return nil, ErrExpired
	}
	return sess, nil
}

// Start signs userID in. Any session the browser already carries is removed
// first so every login gets a fresh token.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, r *http.Request, userID int64) (*Session, error) {
	if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
		if err := m.store.DeleteSession(ctx, c.Value); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("drop previous session: %w", err)
		}
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	now := m.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    userID,
		IP:        remoteIP(r),
		UserAgent: r.UserAgent(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	http.SetCookie(w, m.cookie(sess.Token, int(m.ttl.Seconds())))
	return sess, nil
}

// End deletes the current session, if any, and expires the cookie.
func (m *Manager) End(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	defer m.Clear(w)
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	if err := m.store.DeleteSession(ctx, c.Value); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// Clear expires the session cookie without touching the store.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie("", -1))
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: m.sameSite,
	}
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func remoteIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
