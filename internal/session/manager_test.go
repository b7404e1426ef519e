package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphabot-ai/blog/internal/session"
)

type memStore struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]*session.Session)}
}

func (s *memStore) CreateSession(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.Token] = &cp
	return nil
}

func (s *memStore) GetSession(_ context.Context, token string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, session.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *memStore) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		return session.ErrNotFound
	}
	delete(s.sessions, token)
	return nil
}

func (s *memStore) DeleteExpiredSessions(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for token, sess := range s.sessions {
		if sess.ExpiresAt.Before(before) {
			delete(s.sessions, token)
			n++
		}
	}
	return n, nil
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func TestManagerStartAndLoad(t *testing.T) {
	store := newMemStore()
	m := session.NewManager(store, session.WithCookieName("sid"), session.WithTTL(time.Hour))

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	req.Header.Set("User-Agent", "test-agent")
	rec := httptest.NewRecorder()

	sess, err := m.Start(context.Background(), rec, req, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), sess.UserID)
	assert.Equal(t, "203.0.113.7", sess.IP)
	assert.Equal(t, "test-agent", sess.UserAgent)
	assert.NotEmpty(t, sess.ID)

	c := sessionCookie(t, rec, "sid")
	assert.Equal(t, sess.Token, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, 3600, c.MaxAge)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(c)
	loaded, err := m.Load(context.Background(), next)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, sess.ID, loaded.ID)
}

func TestManagerLoadWithoutCookie(t *testing.T) {
	m := session.NewManager(newMemStore())
	sess, err := m.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NoError(t, err)
	assert.Nil(t, sess)
}

func TestManagerLoadUnknownToken(t *testing.T) {
	m := session.NewManager(newMemStore())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: m.CookieName(), Value: "forged"})
	_, err := m.Load(context.Background(), req)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestManagerLoadExpired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := newMemStore()
	m := session.NewManager(store, session.WithTTL(time.Minute), session.WithClock(clock))

	rec := httptest.NewRecorder()
	_, err := m.Start(context.Background(), rec, httptest.NewRequest(http.MethodPost, "/login", nil), 1)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, rec, m.CookieName()))
	_, err = m.Load(context.Background(), req)
	assert.ErrorIs(t, err, session.ErrExpired)
}

func TestManagerStartRotatesExistingSession(t *testing.T) {
	store := newMemStore()
	m := session.NewManager(store)

	first := httptest.NewRecorder()
	s1, err := m.Start(context.Background(), first, httptest.NewRequest(http.MethodPost, "/login", nil), 1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(sessionCookie(t, first, m.CookieName()))
	s2, err := m.Start(context.Background(), httptest.NewRecorder(), req, 1)
	require.NoError(t, err)

	assert.NotEqual(t, s1.Token, s2.Token)
	assert.Equal(t, 1, store.len())
	_, err = store.GetSession(context.Background(), s1.Token)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestManagerEnd(t *testing.T) {
	store := newMemStore()
	m := session.NewManager(store)

	rec := httptest.NewRecorder()
	_, err := m.Start(context.Background(), rec, httptest.NewRequest(http.MethodPost, "/login", nil), 7)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(sessionCookie(t, rec, m.CookieName()))
	out := httptest.NewRecorder()
	require.NoError(t, m.End(context.Background(), out, req))

	assert.Equal(t, 0, store.len())
	assert.Equal(t, -1, sessionCookie(t, out, m.CookieName()).MaxAge)
}

func TestManagerEndWithoutSession(t *testing.T) {
	m := session.NewManager(newMemStore())
	rec := httptest.NewRecorder()
	require.NoError(t, m.End(context.Background(), rec, httptest.NewRequest(http.MethodGet, "/logout", nil)))
	assert.Equal(t, -1, sessionCookie(t, rec, m.CookieName()).MaxAge)
}

func TestSweeper(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	require.NoError(t, store.CreateSession(context.Background(), &session.Session{Token: "old", ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, store.CreateSession(context.Background(), &session.Session{Token: "new", ExpiresAt: now.Add(time.Hour)}))

	sw, err := session.NewSweeper(store, "@every 1h", nil)
	require.NoError(t, err)
	n, err := sw.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, store.len())

	sw.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sw.Stop(ctx)
}

func TestSweeperRejectsBadSchedule(t *testing.T) {
	_, err := session.NewSweeper(newMemStore(), "not a schedule", nil)
	assert.Error(t, err)
}
