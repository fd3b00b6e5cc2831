package wallet_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewtab/brewtab/internal/account"
	"github.com/brewtab/brewtab/internal/wallet"
)

// Mock Repository
type mockRepo struct {
	applyDeltaFunc func(ctx context.Context, p wallet.DeltaParams) (*wallet.CreditTransaction, error)
	transferFunc   func(ctx context.Context, p wallet.TransferParams) (*wallet.TransferResult, error)
}

func (m *mockRepo) ApplyDelta(ctx context.Context, p wallet.DeltaParams) (*wallet.CreditTransaction, error) {
	if m.applyDeltaFunc != nil {
		return m.applyDeltaFunc(ctx, p)
	}

	return &wallet.CreditTransaction{ID: uuid.New(), AccountID: p.AccountID, Amount: p.Amount, Type: p.Type, Description: p.Description}, nil
}

func (m *mockRepo) Transfer(ctx context.Context, p wallet.TransferParams) (*wallet.TransferResult, error) {
	if m.transferFunc != nil {
		return m.transferFunc(ctx, p)
	}

	return &wallet.TransferResult{}, nil
}

func (m *mockRepo) Balances(ctx context.Context, accountID uuid.UUID) (wallet.Balances, error) {
	return wallet.Balances{}, nil
}

func (m *mockRepo) ListTransactions(ctx context.Context, accountID uuid.UUID) ([]*wallet.CreditTransaction, error) {
	return nil, nil
}

// Mock AccountDirectory
type mockDirectory struct {
	accounts map[string]*account.Account
}

func (m *mockDirectory) FindByPhone(ctx context.Context, phone string) (*account.Account, error) {
	a, ok := m.accounts[account.NormalizePhone(phone)]
	if !ok {
		return nil, account.ErrNotFound
	}

	return a, nil
}

func TestService_TopUp(t *testing.T) {
	repo := &mockRepo{}
	svc := wallet.NewService(repo, &mockDirectory{})
	accountID := uuid.New()

	txn, err := svc.TopUp(context.Background(), accountID, 2500, "ch_123")
	require.NoError(t, err)
	assert.Equal(t, wallet.TypePurchase, txn.Type)
	assert.Equal(t, int64(2500), txn.Amount)
	assert.Contains(t, txn.Description, "ch_123")

	_, err = svc.TopUp(context.Background(), accountID, 0, "")
	assert.ErrorIs(t, err, wallet.ErrInvalidAmount)

	_, err = svc.TopUp(context.Background(), accountID, -100, "")
	assert.ErrorIs(t, err, wallet.ErrInvalidAmount)
}

func TestService_AdminAdjust(t *testing.T) {
	repo := &mockRepo{}
	svc := wallet.NewService(repo, &mockDirectory{})
	accountID := uuid.New()

	// Negative adjustments are allowed, zero is not.
	txn, err := svc.AdminAdjust(context.Background(), accountID, -500, "Refund reversal")
	require.NoError(t, err)
	assert.Equal(t, wallet.TypeAdminAdjustment, txn.Type)
	assert.Equal(t, int64(-500), txn.Amount)

	_, err = svc.AdminAdjust(context.Background(), accountID, 0, "noop")
	assert.ErrorIs(t, err, wallet.ErrInvalidAmount)
}

func TestService_Transfer(t *testing.T) {
	sender := uuid.New()
	recipient := &account.Account{ID: uuid.New(), PhoneNumber: "+351912345678"}

	dir := &mockDirectory{accounts: map[string]*account.Account{
		recipient.PhoneNumber: recipient,
	}}

	var gotParams wallet.TransferParams

	repo := &mockRepo{
		transferFunc: func(ctx context.Context, p wallet.TransferParams) (*wallet.TransferResult, error) {
			gotParams = p
			return &wallet.TransferResult{
				SenderTxn:    &wallet.CreditTransaction{Amount: -p.Amount},
				RecipientTxn: &wallet.CreditTransaction{Amount: p.Amount},
			}, nil
		},
	}

	svc := wallet.NewService(repo, dir)

	res, err := svc.Transfer(context.Background(), sender, "+351 912 345 678", 1000, "lunch")
	require.NoError(t, err)
	assert.Equal(t, sender, gotParams.SenderID)
	assert.Equal(t, recipient.ID, gotParams.RecipientID)
	assert.Equal(t, int64(1000), gotParams.Amount)
	assert.Contains(t, gotParams.Description, "lunch")
	assert.Equal(t, int64(-1000), res.SenderTxn.Amount)
	assert.Equal(t, int64(1000), res.RecipientTxn.Amount)
}

func TestService_Transfer_Errors(t *testing.T) {
	self := &account.Account{ID: uuid.New(), PhoneNumber: "+351911111111"}

	dir := &mockDirectory{accounts: map[string]*account.Account{
		self.PhoneNumber: self,
	}}

	svc := wallet.NewService(&mockRepo{}, dir)

	_, err := svc.Transfer(context.Background(), uuid.New(), "+351911111111", 0, "")
	assert.ErrorIs(t, err, wallet.ErrInvalidAmount)

	_, err = svc.Transfer(context.Background(), uuid.New(), "+351999999999", 1000, "")
	assert.ErrorIs(t, err, wallet.ErrRecipientNotFound)

	_, err = svc.Transfer(context.Background(), self.ID, "+351911111111", 1000, "")
	assert.ErrorIs(t, err, wallet.ErrSelfTransfer)
}
