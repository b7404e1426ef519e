package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alphabot-ai/blog/internal/model"
	"github.com/alphabot-ai/blog/internal/store"
)

var (
	ErrEmailTaken        = errors.New("email already registered")
	ErrEmailNotFound     = errors.New("email not registered")
	ErrIncorrectPassword = errors.New("incorrect password")
)

type Service struct {
	users  store.UserStore
	hasher Hasher
	now    func() time.Time
}

func NewService(users store.UserStore, hasher Hasher) *Service {
	if hasher == nil {
		hasher = PBKDF2Hasher{}
	}
	return &Service{users: users, hasher: hasher, now: time.Now}
}

// Register creates an account. The first account ever created becomes the
// administrator.
func (s *Service) Register(ctx context.Context, email, name, password string) (model.User, error) {
	email = strings.TrimSpace(email)
	if _, err := s.users.FindUserByEmail(ctx, email); err == nil {
		return model.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return model.User{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := model.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    s.now(),
	}
	if _, err := s.users.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, err
	}
	return user, nil
}

// Login checks credentials and returns the matching user.
func (s *Service) Login(ctx context.Context, email, password string) (model.User, error) {
	user, err := s.users.FindUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.User{}, ErrEmailNotFound
		}
		return model.User{}, err
	}
	ok, err := CheckPassword(user.PasswordHash, password)
	if err != nil {
		return model.User{}, fmt.Errorf("check password for user %d: %w", user.ID, err)
	}
	if !ok {
		return model.User{}, ErrIncorrectPassword
	}
	return user, nil
}
