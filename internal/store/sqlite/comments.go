package sqlite

import (
	"context"
	"database/sql"

	"github.com/alphabot-ai/blog/internal/model"
	"github.com/alphabot-ai/blog/internal/store"
)

// CreateComment returns store.ErrNotFound when the post or author no longer
// exists.
func (s *Store) CreateComment(ctx context.Context, comment *model.Comment) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO comments (post_id, author_id, text)
VALUES (?, ?, ?)
`, comment.PostID, comment.AuthorID, comment.Text)
	if isForeignKeyViolation(err) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	comment.ID = id
	return id, nil
}

func (s *Store) ListCommentsByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT c.id, c.post_id, c.author_id, u.name, u.email, c.text
FROM comments c
LEFT JOIN users u ON u.id = c.author_id
WHERE c.post_id = ?
ORDER BY c.id
`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		var name, email sql.NullString
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &name, &email, &c.Text); err != nil {
			return nil, err
		}
		c.AuthorName = nullString(name)
		c.AuthorEmail = nullString(email)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
