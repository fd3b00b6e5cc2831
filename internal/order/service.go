package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/brewtab/brewtab/internal/wallet"
)

type Repository interface {
	// CreateOrder persists the order and applies its order_debit in one
	// transactional boundary; neither survives without the other. The debit
	// is checked against available balance, pending share earmarks included.
	CreateOrder(ctx context.Context, o *Order) (*wallet.CreditTransaction, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context, accountID uuid.UUID) ([]*Order, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Place debits the account and records the order atomically. The kitchen
// display consumes the returned order; the wallet's involvement ends with
// the debit.
func (s *Service) Place(ctx context.Context, accountID uuid.UUID, items []Item, total int64) (*Order, *wallet.CreditTransaction, error) {
	if total <= 0 {
		return nil, nil, wallet.ErrInvalidAmount
	}

	o := &Order{
		AccountID: accountID,
		Total:     total,
		Items:     items,
	}

	txn, err := s.repo.CreateOrder(ctx, o)
	if err != nil {
		return nil, nil, err
	}

	return o, txn, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]*Order, error) {
	return s.repo.ListOrders(ctx, accountID)
}
