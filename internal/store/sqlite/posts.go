package sqlite

import (
	"context"
	"database/sql"

	"github.com/alphabot-ai/blog/internal/model"
	"github.com/alphabot-ai/blog/internal/store"
)

const postSelect = `
SELECT p.id, p.author_id, u.name, u.email, p.title, p.subtitle, p.date, p.body, p.img_url
FROM blog_posts p
LEFT JOIN users u ON u.id = p.author_id
`

func (s *Store) CreatePost(ctx context.Context, post *model.Post) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO blog_posts (author_id, title, subtitle, date, body, img_url)
VALUES (?, ?, ?, ?, ?, ?)
`, post.AuthorID, post.Title, post.Subtitle, post.Date, post.Body, post.ImgURL)
	if err != nil {
		if uniqueColumn(err, "title") {
			return 0, store.ErrDuplicateTitle
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	post.ID = id
	return id, nil
}

func (s *Store) GetPost(ctx context.Context, id int64) (model.Post, error) {
	row := s.db.QueryRowContext(ctx, postSelect+`WHERE p.id = ?`, id)
	return scanPost(row)
}

// ListPosts returns every post in insertion order.
func (s *Store) ListPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := s.db.QueryContext(ctx, postSelect+`ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// UpdatePost overwrites the mutable fields. The creation date is never changed.
func (s *Store) UpdatePost(ctx context.Context, post *model.Post) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE blog_posts
SET author_id = ?, title = ?, subtitle = ?, body = ?, img_url = ?
WHERE id = ?
`, post.AuthorID, post.Title, post.Subtitle, post.Body, post.ImgURL, post.ID)
	if err != nil {
		if uniqueColumn(err, "title") {
			return store.ErrDuplicateTitle
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func scanPost(row scanner) (model.Post, error) {
	var p model.Post
	var authorName, authorEmail sql.NullString
	if err := row.Scan(&p.ID, &p.AuthorID, &authorName, &authorEmail, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImgURL); err != nil {
		return model.Post{}, notFound(err)
	}
	p.AuthorName = nullString(authorName)
	p.AuthorEmail = nullString(authorEmail)
	return p, nil
}
