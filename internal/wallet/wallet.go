package wallet

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type classifies a balance change. Every mutation of an account's balance
// is exactly one of these.
type Type string

const (
	TypePurchase        Type = "purchase"
	TypeOrderDebit      Type = "order_debit"
	TypeAdminAdjustment Type = "admin_adjustment"
	TypeTransferOut     Type = "transfer_out"
	TypeTransferIn      Type = "transfer_in"
	TypeShareRedeemed   Type = "share_redeemed"
)

var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrSelfTransfer        = errors.New("cannot transfer to your own account")
)

// CreditTransaction is an immutable log entry. Amount is signed cents:
// positive credits the account, negative debits it. BalanceAfter snapshots
// the balance the commit produced, so replaying the log in created_at order
// must reproduce the current balance.
type CreditTransaction struct {
	ID                    uuid.UUID
	AccountID             uuid.UUID
	Type                  Type
	Amount                int64
	BalanceAfter          int64
	Description           string
	CounterpartyAccountID *uuid.UUID
	CreatedAt             time.Time
}

// Balances is a point-in-time read of an account's funds. Available is the
// balance minus the sum of the account's unexpired pending share transfers;
// it is what orders, transfers and new shares are checked against.
type Balances struct {
	Balance   int64
	Available int64
}
