package view

import (
	"context"
	"fmt"
	"time"

	"github.com/brewtab/brewtab/internal/wallet"
)

const dbTimeout = 5 * time.Second

// FormatAmount formats an amount stored as cents into a human-readable string.
func FormatAmount(cents int64) string {
	return wallet.FormatAmount(cents)
}

// FormatDate formats a time.Time into YYYY-MM-DD HH:MM.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// FormatCountdown renders the time left until a deadline, e.g. "3h12m".
func FormatCountdown(until time.Time, now time.Time) string {
	left := until.Sub(now)
	if left <= 0 {
		return "expired"
	}

	left = left.Round(time.Minute)

	h := int(left.Hours())
	m := int(left.Minutes()) % 60

	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}

	return fmt.Sprintf("%dh%02dm", h, m)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
