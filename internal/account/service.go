package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Repository interface {
	// CreateAccount persists the account; a non-zero signupBonus is applied
	// as an admin_adjustment transaction in the same unit of work.
	CreateAccount(ctx context.Context, a *Account, signupBonus int64) error
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByPhone(ctx context.Context, phone string) (*Account, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo        Repository
	signupBonus int64 // cents
}

func NewService(repo Repository, signupBonus int64) *Service {
	return &Service{repo: repo, signupBonus: signupBonus}
}

// Register creates a wallet for a new customer. The phone number is optional;
// without one the account cannot receive direct transfers.
func (s *Service) Register(ctx context.Context, phone string) (*Account, error) {
	a := &Account{
		PhoneNumber: NormalizePhone(phone),
	}

	if err := s.repo.CreateAccount(ctx, a, s.signupBonus); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetAccount(ctx, id)
}

// FindByPhone resolves a phone number to an account. Deactivated accounts
// are not returned.
func (s *Service) FindByPhone(ctx context.Context, phone string) (*Account, error) {
	normalized := NormalizePhone(phone)
	if normalized == "" {
		return nil, ErrNotFound
	}

	return s.repo.FindByPhone(ctx, normalized)
}

// Deactivate soft-disables the account. History is never deleted, so the
// transaction log stays replayable for support and disputes.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.Deactivate(ctx, id)
}
