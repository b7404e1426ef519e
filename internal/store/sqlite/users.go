package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/alphabot-ai/blog/internal/model"
	"github.com/alphabot-ai/blog/internal/store"
)

const userColumns = `id, email, password, name, role, created_at`

func (s *Store) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO users (email, password, name, role, created_at)
VALUES (?, ?, ?, ?, ?)
`, user.Email, user.PasswordHash, user.Name, string(user.Role), user.CreatedAt.Unix())
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrDuplicateEmail
			}
			return err
		}
		id, err = res.LastInsertId()
		if err != nil {
			return err
		}
		if id == model.BootstrapAdminID && user.Role != model.RoleAdmin {
			if _, err := tx.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, string(model.RoleAdmin), id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	user.ID = id
	if id == model.BootstrapAdminID {
		user.Role = model.RoleAdmin
	}
	return id, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) SetUserRole(ctx context.Context, id int64, role model.Role) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, string(role), id)
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
}

func scanUser(row scanner) (model.User, error) {
	var u model.User
	var role string
	var created int64
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role, &created); err != nil {
		return model.User{}, notFound(err)
	}
	u.Role = model.Role(role)
	u.CreatedAt = time.Unix(created, 0)
	return u, nil
}
