package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"kyccase/internal/auth"
	"kyccase/internal/model"
	"kyccase/internal/repository"
)

// RegisterInput is the POST /auth/register body.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Session is an authenticated user plus their bearer token.
type Session struct {
	Token string        `json:"token"`
	User  model.UserRef `json:"user"`
}

// UserService handles registration, login and profile lookup.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Get(ctx context.Context, id string) (*model.User, error)
}

type userService struct {
	users  repository.UserRepository
	secret []byte
	ttl    time.Duration
}

// NewUserService constructs a UserService signing tokens with secret.
func NewUserService(users repository.UserRepository, secret string, ttl time.Duration) UserService {
	return &userService{users: users, secret: []byte(secret), ttl: ttl}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	username := in.Username
	if username == "" {
		// Keep the unique username column satisfied when callers only
		// supply an email.
		username, _, _ = strings.Cut(in.Email, "@")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &model.User{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Username:  username,
		Password:  hash,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	return s.session(created)
}

func (s *userService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return s.session(u)
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) session(u *model.User) (*Session, error) {
	token, err := auth.GenerateToken(u.ID, s.secret, s.ttl)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: u.Ref()}, nil
}
