package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/brewtab/brewtab/internal/database"
	"github.com/brewtab/brewtab/internal/order"
	"github.com/brewtab/brewtab/internal/wallet"
	walletstore "github.com/brewtab/brewtab/internal/wallet/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, account_id, total, items, transaction_id, created_at
func scanOrder(s scanner) (*order.Order, error) {
	var o order.Order

	var itemsJSON []byte

	if err := s.Scan(&o.ID, &o.AccountID, &o.Total, &itemsJSON, &o.TransactionID, &o.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("decoding order items: %w", err)
	}

	return &o, nil
}

const selectOrderColumns = `id, account_id, total, items, transaction_id, created_at`

func (s *Store) CreateOrder(ctx context.Context, o *order.Order) (*wallet.CreditTransaction, error) {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("encoding order items: %w", err)
	}

	return database.WithRetry(func() (*wallet.CreditTransaction, error) {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback()

		balance, err := walletstore.LockBalanceTx(ctx, tx, o.AccountID)
		if err != nil {
			return nil, err
		}

		available, err := walletstore.AvailableTx(ctx, tx, o.AccountID, balance)
		if err != nil {
			return nil, err
		}

		if available < o.Total {
			return nil, wallet.ErrInsufficientBalance
		}

		txn, err := walletstore.ApplyDeltaTx(ctx, tx, wallet.DeltaParams{
			AccountID:   o.AccountID,
			Amount:      -o.Total,
			Type:        wallet.TypeOrderDebit,
			Description: "Order payment",
		})
		if err != nil {
			return nil, err
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO orders (account_id, total, items, transaction_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`,
			o.AccountID, o.Total, itemsJSON, txn.ID,
		).Scan(&o.ID, &o.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("inserting order: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("committing order: %w", err)
		}

		o.TransactionID = txn.ID

		return txn, nil
	})
}

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	query := `SELECT ` + selectOrderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrNotFound
		}

		return nil, fmt.Errorf("getting order: %w", err)
	}

	return o, nil
}

func (s *Store) ListOrders(ctx context.Context, accountID uuid.UUID) ([]*order.Order, error) {
	query := `SELECT ` + selectOrderColumns + `
		FROM orders
		WHERE account_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}

	return orders, nil
}
