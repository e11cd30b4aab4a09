package user

import (
	"context"

	"github.com/suqapp/backend/internal/domain"
)

// Store is the minimal persistence interface the service requires.
type Store interface {
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	Deactivate(ctx context.Context, mobile string) error
}

// Service exposes the current-user operations consumed by guarded endpoints.
type Service interface {
	Me(ctx context.Context, userID string) (*domain.User, error)
	Deactivate(ctx context.Context, userID string) error
}

type service struct {
	users Store
}

func NewService(users Store) Service {
	return &service{users: users}
}

func (s *service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Deactivate disables the account. With stateless tokens this is the only
// revocation mechanism: outstanding tokens keep verifying but the request
// guard rejects them once the user record is disabled.
func (s *service) Deactivate(ctx context.Context, userID string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.users.Deactivate(ctx, u.Mobile)
}
