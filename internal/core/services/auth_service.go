package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
)

type AuthService struct {
	repo domain.UserRepository
}

func NewAuthService(repo domain.UserRepository) *AuthService {
	return &AuthService{
		repo: repo,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

type LoginInput struct {
	Email    string
	Password string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	id := uuid.NewString()
	user, err := domain.NewUser(id, input.Email, input.DisplayName)
	if err != nil {
		return nil, err
	}

	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth service: failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and returns the user. A missing account and a
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, error) {
	user, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth service: lookup failed: %w", err)
	}

	if err := user.CheckPassword(input.Password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}
