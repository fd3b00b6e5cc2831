package account

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("account not found")
	ErrPhoneTaken = errors.New("phone number already registered")
)

// Account is a customer's credit wallet. Balance is in cents and never goes
// negative; every change to it is recorded as a wallet.CreditTransaction.
type Account struct {
	ID            uuid.UUID
	PhoneNumber   string // normalized, empty if the account has no phone on file
	Balance       int64  // cents
	CreatedAt     time.Time
	DeactivatedAt *time.Time
}

func (a *Account) Active() bool {
	return a.DeactivatedAt == nil
}

// NormalizePhone reduces a phone number to digits with an optional leading
// "+", so that "555-12 34" and "5551234" look up the same account.
func NormalizePhone(phone string) string {
	var b strings.Builder

	for i, r := range phone {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}

		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}
