package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/alphabot-ai/blog/internal/session"
)

var _ session.Store = (*Store)(nil)

func (s *Store) CreateSession(ctx context.Context, sess *session.Session) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sessions (token, id, user_id, ip, user_agent, created_at, expires_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, sess.Token, sess.ID, sess.UserID, sess.IP, sess.UserAgent, sess.CreatedAt.Unix(), sess.ExpiresAt.Unix())
	return err
}

func (s *Store) GetSession(ctx context.Context, token string) (*session.Session, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT token, id, user_id, ip, user_agent, created_at, expires_at
FROM sessions
WHERE token = ?
`, token)
	var sess session.Session
	var created, expires int64
	if err := row.Scan(&sess.Token, &sess.ID, &sess.UserID, &sess.IP, &sess.UserAgent, &created, &expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	sess.CreatedAt = time.Unix(created, 0)
	sess.ExpiresAt = time.Unix(expires, 0)
	if sess.IsExpired(time.Now()) {
		return nil, session.ErrExpired
	}
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return session.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, before.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
