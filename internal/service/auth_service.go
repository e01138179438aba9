package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Eursukkul/eventsphere/internal/auth"
	"github.com/Eursukkul/eventsphere/internal/models"
	"github.com/Eursukkul/eventsphere/internal/repository"
	"gorm.io/gorm"
)

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

type Session struct {
	Token string
	User  *models.User
}

type TokenIssuer interface {
	Generate(user *models.User) (string, error)
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, bool, error)
}

type authService struct {
	users  repository.UserRepository
	tokens TokenIssuer
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer) AuthService {
	return &authService{users: users, tokens: tokens}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// signupRole limits self-service accounts to attendee and host.
func signupRole(role models.Role) models.Role {
	if role == models.RoleHost {
		return models.RoleHost
	}
	return models.RoleAttendee
}

func (s *authService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	email := NormalizeEmail(in.Email)

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         signupRole(in.Role),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.session(user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.session(user)
}

// EnsureAdmin creates the admin account, or resets the password and role of
// an existing account with that email. It reports whether it created one.
func (s *authService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, bool, error) {
	email = NormalizeEmail(email)
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, false, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = &models.User{Name: name, Email: email, PasswordHash: hash, Role: models.RoleAdmin}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, false, fmt.Errorf("create admin: %w", err)
		}
		return user, true, nil
	case err != nil:
		return nil, false, fmt.Errorf("lookup admin: %w", err)
	}

	user.PasswordHash = hash
	user.Role = models.RoleAdmin
	if user.Name == "" {
		user.Name = name
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, false, fmt.Errorf("update admin: %w", err)
	}
	return user, false, nil
}

func (s *authService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}
