package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/brewtab/brewtab/internal/account"
)

// DeltaParams describes one atomic balance change. Amount is signed; the
// store rejects any delta that would take the balance below zero.
type DeltaParams struct {
	AccountID             uuid.UUID
	Amount                int64
	Type                  Type
	Description           string
	CounterpartyAccountID *uuid.UUID
}

type TransferParams struct {
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	Amount      int64 // positive cents
	Description string
}

type TransferResult struct {
	SenderTxn    *CreditTransaction
	RecipientTxn *CreditTransaction
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=wallet
type Repository interface {
	ApplyDelta(ctx context.Context, p DeltaParams) (*CreditTransaction, error)
	// Transfer debits the sender and credits the recipient as one
	// all-or-nothing unit; the sender side is checked against available
	// balance (earmarks included).
	Transfer(ctx context.Context, p TransferParams) (*TransferResult, error)
	Balances(ctx context.Context, accountID uuid.UUID) (Balances, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID) ([]*CreditTransaction, error)
}

// AccountDirectory resolves transfer recipients. Implemented by the account
// service; kept as an interface so tests don't need real accounts.
type AccountDirectory interface {
	FindByPhone(ctx context.Context, phone string) (*account.Account, error)
}

type Service struct {
	repo     Repository
	accounts AccountDirectory
}

func NewService(repo Repository, accounts AccountDirectory) *Service {
	return &Service{repo: repo, accounts: accounts}
}

// TopUp credits an account after the external payment processor has captured
// the payment. reference identifies the processor charge for support lookups.
func (s *Service) TopUp(ctx context.Context, accountID uuid.UUID, amount int64, reference string) (*CreditTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	desc := "Credit purchase"
	if reference != "" {
		desc = fmt.Sprintf("Credit purchase (%s)", reference)
	}

	return s.repo.ApplyDelta(ctx, DeltaParams{
		AccountID:   accountID,
		Amount:      amount,
		Type:        TypePurchase,
		Description: desc,
	})
}

// AdminAdjust applies a signed support adjustment. The note ends up in the
// customer-visible history, so it should say why.
func (s *Service) AdminAdjust(ctx context.Context, accountID uuid.UUID, amount int64, note string) (*CreditTransaction, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}

	return s.repo.ApplyDelta(ctx, DeltaParams{
		AccountID:   accountID,
		Amount:      amount,
		Type:        TypeAdminAdjustment,
		Description: note,
	})
}

// Transfer moves credits to another registered customer, looked up by phone
// number.
func (s *Service) Transfer(ctx context.Context, senderID uuid.UUID, recipientPhone string, amount int64, message string) (*TransferResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	recipient, err := s.accounts.FindByPhone(ctx, recipientPhone)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}

		return nil, fmt.Errorf("looking up recipient: %w", err)
	}

	if recipient.ID == senderID {
		return nil, ErrSelfTransfer
	}

	desc := "Credit transfer"
	if message != "" {
		desc = fmt.Sprintf("Credit transfer: %s", message)
	}

	return s.repo.Transfer(ctx, TransferParams{
		SenderID:    senderID,
		RecipientID: recipient.ID,
		Amount:      amount,
		Description: desc,
	})
}

func (s *Service) Balances(ctx context.Context, accountID uuid.UUID) (Balances, error) {
	return s.repo.Balances(ctx, accountID)
}

// History returns the account's full transaction log, oldest first.
func (s *Service) History(ctx context.Context, accountID uuid.UUID) ([]*CreditTransaction, error) {
	return s.repo.ListTransactions(ctx, accountID)
}
