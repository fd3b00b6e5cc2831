package share

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a share transfer. pending is the only
// non-terminal state; there are no transitions out of the other three.
type Status string

const (
	StatusPending   Status = "pending"
	StatusVerified  Status = "verified"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

var (
	ErrNotFound         = errors.New("share transfer not found")
	ErrCodeNotFound     = errors.New("verification code not found")
	ErrCodeExpired      = errors.New("verification code expired")
	ErrAlreadyVerified  = errors.New("share transfer already verified")
	ErrAlreadyCancelled = errors.New("share transfer already cancelled")
	ErrInvalidState     = errors.New("share transfer is not pending")

	// ErrCodeTaken signals a verification-code collision with another
	// pending transfer; the caller regenerates and retries.
	ErrCodeTaken = errors.New("verification code already in use")
)

// PendingShareTransfer is a promise of credits to a phone number that may
// not belong to a registered customer yet. The amount is earmarked against
// the sender's available balance but not debited until staff redeem the
// code at the counter.
type PendingShareTransfer struct {
	ID                uuid.UUID
	SenderAccountID   uuid.UUID
	RecipientPhone    string
	Amount            int64 // cents
	VerificationCode  string
	Status            Status
	CreatedAt         time.Time
	ExpiresAt         time.Time
	VerifiedAt        *time.Time
	VerifiedByStaffID string
	// TransactionID links to the share_redeemed debit once verified.
	TransactionID *uuid.UUID
}

func (p *PendingShareTransfer) Lapsed(now time.Time) bool {
	return p.Status == StatusPending && now.After(p.ExpiresAt)
}
