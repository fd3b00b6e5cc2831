package order_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewtab/brewtab/internal/order"
	"github.com/brewtab/brewtab/internal/wallet"
)

type mockRepo struct {
	createOrderFunc func(ctx context.Context, o *order.Order) (*wallet.CreditTransaction, error)
}

func (m *mockRepo) CreateOrder(ctx context.Context, o *order.Order) (*wallet.CreditTransaction, error) {
	if m.createOrderFunc != nil {
		return m.createOrderFunc(ctx, o)
	}

	return nil, nil
}

func (m *mockRepo) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return nil, order.ErrNotFound
}

func (m *mockRepo) ListOrders(ctx context.Context, accountID uuid.UUID) ([]*order.Order, error) {
	return nil, nil
}

func TestService_Place(t *testing.T) {
	accountID := uuid.New()

	repo := &mockRepo{
		createOrderFunc: func(_ context.Context, o *order.Order) (*wallet.CreditTransaction, error) {
			o.ID = uuid.New()
			txnID := uuid.New()
			o.TransactionID = txnID

			return &wallet.CreditTransaction{
				ID:           txnID,
				AccountID:    o.AccountID,
				Type:         wallet.TypeOrderDebit,
				Amount:       -o.Total,
				BalanceAfter: 1000 - o.Total,
			}, nil
		},
	}

	svc := order.NewService(repo)

	items := []order.Item{
		{Name: "Flat white", Quantity: 2, Price: 350},
		{Name: "Croissant", Quantity: 1, Price: 200},
	}

	o, txn, err := svc.Place(context.Background(), accountID, items, 900)
	require.NoError(t, err)

	assert.Equal(t, accountID, o.AccountID)
	assert.Equal(t, int64(900), o.Total)
	assert.Len(t, o.Items, 2)

	assert.Equal(t, wallet.TypeOrderDebit, txn.Type)
	assert.Equal(t, int64(-900), txn.Amount)
	assert.Equal(t, int64(100), txn.BalanceAfter)
}

func TestService_Place_InvalidTotal(t *testing.T) {
	svc := order.NewService(&mockRepo{})

	_, _, err := svc.Place(context.Background(), uuid.New(), nil, 0)
	assert.ErrorIs(t, err, wallet.ErrInvalidAmount)

	_, _, err = svc.Place(context.Background(), uuid.New(), nil, -100)
	assert.ErrorIs(t, err, wallet.ErrInvalidAmount)
}

func TestService_Place_InsufficientBalance(t *testing.T) {
	repo := &mockRepo{
		createOrderFunc: func(_ context.Context, o *order.Order) (*wallet.CreditTransaction, error) {
			return nil, wallet.ErrInsufficientBalance
		},
	}

	svc := order.NewService(repo)

	_, _, err := svc.Place(context.Background(), uuid.New(), []order.Item{{Name: "Latte", Quantity: 1, Price: 400}}, 400)
	assert.ErrorIs(t, err, wallet.ErrInsufficientBalance)
}
