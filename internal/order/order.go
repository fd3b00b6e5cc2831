package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("order not found")

// Item is a line on an order, snapshotted at placement time. Pricing is the
// catalog's concern; the wallet only validates the total.
type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price_cents"`
}

type Order struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Total     int64 // cents
	Items     []Item
	// TransactionID is the order_debit entry that paid for this order.
	TransactionID uuid.UUID
	CreatedAt     time.Time
}
