package share

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brewtab/brewtab/internal/account"
	"github.com/brewtab/brewtab/internal/wallet"
)

type ListFilter struct {
	Status *Status
}

// RedeemResult pairs the verified transfer with the debit it produced.
type RedeemResult struct {
	Share       *PendingShareTransfer
	Transaction *wallet.CreditTransaction
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=share
type Repository interface {
	// Create persists a pending transfer. It fails with
	// wallet.ErrInsufficientBalance when the sender's available balance
	// (existing earmarks included) does not cover the amount, and with
	// ErrCodeTaken when the code collides with another pending transfer.
	Create(ctx context.Context, p *PendingShareTransfer) error
	Get(ctx context.Context, id uuid.UUID) (*PendingShareTransfer, error)
	List(ctx context.Context, filter ListFilter) ([]*PendingShareTransfer, error)
	// Redeem atomically debits the sender and marks the transfer verified.
	// A lapsed transfer is flipped to expired as a side effect and reported
	// as ErrCodeExpired.
	Redeem(ctx context.Context, code, staffID string) (*RedeemResult, error)
	Cancel(ctx context.Context, id, senderID uuid.UUID) error
	ExpireStale(ctx context.Context) (int64, error)
}

type Service struct {
	repo Repository

	expiryWindow time.Duration
	now          func() time.Time
}

func NewService(repo Repository, expiryWindow time.Duration) *Service {
	return &Service{
		repo:         repo,
		expiryWindow: expiryWindow,
		now:          time.Now,
	}
}

const maxCodeAttempts = 5

// Initiate creates a pending transfer to a phone number and returns the SMS
// body the app should send out of band. The credits stay on the sender's
// balance but stop counting toward their available balance immediately.
func (s *Service) Initiate(ctx context.Context, senderID uuid.UUID, recipientPhone string, amount int64) (*PendingShareTransfer, string, error) {
	if amount <= 0 {
		return nil, "", wallet.ErrInvalidAmount
	}

	phone := account.NormalizePhone(recipientPhone)
	if phone == "" {
		return nil, "", fmt.Errorf("recipient phone is required")
	}

	now := s.now()

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, "", err
		}

		p := &PendingShareTransfer{
			SenderAccountID:  senderID,
			RecipientPhone:   phone,
			Amount:           amount,
			VerificationCode: code,
			Status:           StatusPending,
			CreatedAt:        now,
			ExpiresAt:        now.Add(s.expiryWindow),
		}

		err = s.repo.Create(ctx, p)
		if errors.Is(err, ErrCodeTaken) {
			continue
		}

		if err != nil {
			return nil, "", err
		}

		return p, s.smsBody(p), nil
	}

	return nil, "", fmt.Errorf("could not generate a unique verification code")
}

func (s *Service) smsBody(p *PendingShareTransfer) string {
	return fmt.Sprintf(
		"You've been sent %s Brewtab credits! Show code %s at the counter to claim them. Valid until %s.",
		wallet.FormatAmount(p.Amount),
		p.VerificationCode,
		p.ExpiresAt.Format("Jan 2 15:04"),
	)
}

// Redeem finalizes a transfer. This is the only point where the credits
// leave the sender's balance; redeeming the same code again reports
// ErrAlreadyVerified without moving money twice.
func (s *Service) Redeem(ctx context.Context, code, staffID string) (*RedeemResult, error) {
	code = NormalizeCode(code)
	if len(code) != CodeLength {
		return nil, ErrCodeNotFound
	}

	if staffID == "" {
		return nil, fmt.Errorf("staff id is required")
	}

	return s.repo.Redeem(ctx, code, staffID)
}

// Cancel withdraws a pending transfer, releasing its earmark. Only the
// sender can cancel, and only while the transfer is still pending.
func (s *Service) Cancel(ctx context.Context, id, senderID uuid.UUID) error {
	return s.repo.Cancel(ctx, id, senderID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*PendingShareTransfer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*PendingShareTransfer, error) {
	return s.repo.List(ctx, filter)
}

// ExpireStale marks lapsed pending transfers expired. Expiry is already
// enforced lazily at redeem and list time; the sweep just keeps the table
// tidy for reporting.
func (s *Service) ExpireStale(ctx context.Context) (int64, error) {
	return s.repo.ExpireStale(ctx)
}
