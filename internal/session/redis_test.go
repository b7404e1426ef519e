package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphabot-ai/blog/internal/session"
)

func newRedisStore(t *testing.T) (*session.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return session.NewRedisStore(client, "test:"), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	st, mr := newRedisStore(t)
	ctx := context.Background()

	sess := &session.Session{
		ID:        "id-1",
		Token:     "tok-1",
		UserID:    3,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, st.CreateSession(ctx, sess))
	assert.True(t, mr.Exists("test:tok-1"))

	got, err := st.GetSession(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.UserID)
	assert.Equal(t, "id-1", got.ID)

	require.NoError(t, st.DeleteSession(ctx, "tok-1"))
	_, err = st.GetSession(ctx, "tok-1")
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.ErrorIs(t, st.DeleteSession(ctx, "tok-1"), session.ErrNotFound)
}

func TestRedisStoreKeyExpires(t *testing.T) {
	st, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateSession(ctx, &session.Session{Token: "tok", ExpiresAt: time.Now().Add(time.Minute)}))
	mr.FastForward(2 * time.Minute)

	_, err := st.GetSession(ctx, "tok")
	assert.ErrorIs(t, err, session.ErrNotFound)

	n, err := st.DeleteExpiredSessions(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisStoreRejectsExpiredCreate(t *testing.T) {
	st, _ := newRedisStore(t)
	err := st.CreateSession(context.Background(), &session.Session{Token: "tok", ExpiresAt: time.Now().Add(-time.Second)})
	assert.ErrorIs(t, err, session.ErrExpired)
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := session.OpenRedis(context.Background(), "redis://"+mr.Addr(), 1, time.Millisecond)
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Ping(context.Background()).Err())

	_, err = session.OpenRedis(context.Background(), "http://"+mr.Addr(), 1, time.Millisecond)
	assert.ErrorIs(t, err, session.ErrRedisURL)
}
