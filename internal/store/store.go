package store

import (
	"context"
	"errors"

	"github.com/alphabot-ai/blog/internal/model"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrDuplicateTitle = errors.New("duplicate title")
)

type Store interface {
	UserStore
	PostStore
	CommentStore
	Ping(ctx context.Context) error
	Close() error
}

type UserStore interface {
	// CreateUser inserts the user and returns its id. The user created with
	// model.BootstrapAdminID is stored with model.RoleAdmin.
	CreateUser(ctx context.Context, user *model.User) (int64, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	FindUserByEmail(ctx context.Context, email string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	SetUserRole(ctx context.Context, id int64, role model.Role) error
}

type PostStore interface {
	CreatePost(ctx context.Context, post *model.Post) (int64, error)
	GetPost(ctx context.Context, id int64) (model.Post, error)
	ListPosts(ctx context.Context) ([]model.Post, error)
	UpdatePost(ctx context.Context, post *model.Post) error
	// DeletePost removes the post together with its comments.
	DeletePost(ctx context.Context, id int64) error
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *model.Comment) (int64, error)
	ListCommentsByPost(ctx context.Context, postID int64) ([]model.Comment, error)
}
