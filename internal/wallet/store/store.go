package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/brewtab/brewtab/internal/account"
	"github.com/brewtab/brewtab/internal/database"
	"github.com/brewtab/brewtab/internal/wallet"
)

// Store is the single owner of balance mutation. All writes go through a row
// lock on the account inside one SQL transaction, so a balance check and the
// update it guards can never interleave with another writer.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads a credit transaction row.
// Expected column order: id, account_id, type, amount, balance_after, description, counterparty_account_id, created_at
func scanTransaction(s scanner) (*wallet.CreditTransaction, error) {
	var txn wallet.CreditTransaction

	var typeStr string

	var counterparty *uuid.UUID

	if err := s.Scan(
		&txn.ID, &txn.AccountID, &typeStr, &txn.Amount, &txn.BalanceAfter,
		&txn.Description, &counterparty, &txn.CreatedAt,
	); err != nil {
		return nil, err
	}

	txn.Type = wallet.Type(typeStr)
	txn.CounterpartyAccountID = counterparty

	return &txn, nil
}

const selectTransactionColumns = `
	id, account_id, type, amount, balance_after, description, counterparty_account_id, created_at
`

func (s *Store) ApplyDelta(ctx context.Context, p wallet.DeltaParams) (*wallet.CreditTransaction, error) {
	return database.WithRetry(func() (*wallet.CreditTransaction, error) {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback()

		txn, err := ApplyDeltaTx(ctx, tx, p)
		if err != nil {
			return nil, err
		}

		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("committing delta: %w", err)
		}

		return txn, nil
	})
}

func (s *Store) Transfer(ctx context.Context, p wallet.TransferParams) (*wallet.TransferResult, error) {
	return database.WithRetry(func() (*wallet.TransferResult, error) {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback()

		// Lock both rows in a fixed global order so two opposite-direction
		// transfers cannot deadlock.
		first, second := p.SenderID, p.RecipientID
		if second.String() < first.String() {
			first, second = second, first
		}

		firstBalance, err := LockBalanceTx(ctx, tx, first)
		if err != nil {
			return nil, lockErr(first, p, err)
		}

		secondBalance, err := LockBalanceTx(ctx, tx, second)
		if err != nil {
			return nil, lockErr(second, p, err)
		}

		senderBalance := firstBalance
		if p.SenderID == second {
			senderBalance = secondBalance
		}

		available, err := AvailableTx(ctx, tx, p.SenderID, senderBalance)
		if err != nil {
			return nil, err
		}

		if available < p.Amount {
			return nil, wallet.ErrInsufficientBalance
		}

		senderTxn, err := ApplyDeltaTx(ctx, tx, wallet.DeltaParams{
			AccountID:             p.SenderID,
			Amount:                -p.Amount,
			Type:                  wallet.TypeTransferOut,
			Description:           p.Description,
			CounterpartyAccountID: &p.RecipientID,
		})
		if err != nil {
			return nil, err
		}

		recipientTxn, err := ApplyDeltaTx(ctx, tx, wallet.DeltaParams{
			AccountID:             p.RecipientID,
			Amount:                p.Amount,
			Type:                  wallet.TypeTransferIn,
			Description:           p.Description,
			CounterpartyAccountID: &p.SenderID,
		})
		if err != nil {
			return nil, err
		}

		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("committing transfer: %w", err)
		}

		return &wallet.TransferResult{
			SenderTxn:    senderTxn,
			RecipientTxn: recipientTxn,
		}, nil
	})
}

// lockErr maps a failed recipient lock to ErrRecipientNotFound so callers
// can tell the two missing-account cases apart.
func lockErr(id uuid.UUID, p wallet.TransferParams, err error) error {
	if errors.Is(err, account.ErrNotFound) && id == p.RecipientID {
		return wallet.ErrRecipientNotFound
	}

	return err
}

func (s *Store) Balances(ctx context.Context, accountID uuid.UUID) (wallet.Balances, error) {
	query := `
		SELECT a.balance,
		       a.balance - COALESCE((
		           SELECT SUM(p.amount)
		           FROM pending_share_transfers p
		           WHERE p.sender_account_id = a.id
		             AND p.status = 'pending'
		             AND p.expires_at > NOW()
		       ), 0)
		FROM accounts a
		WHERE a.id = $1 AND a.deactivated_at IS NULL
	`

	var b wallet.Balances

	err := s.db.QueryRowContext(ctx, query, accountID).Scan(&b.Balance, &b.Available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return wallet.Balances{}, account.ErrNotFound
		}

		return wallet.Balances{}, fmt.Errorf("reading balances: %w", err)
	}

	return b, nil
}

func (s *Store) ListTransactions(ctx context.Context, accountID uuid.UUID) ([]*wallet.CreditTransaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM credit_transactions
		WHERE account_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txns []*wallet.CreditTransaction

	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txns, nil
}

// LockBalanceTx takes the per-account row lock and returns the current
// balance. Every mutation path must call this before reading anything it
// intends to act on. Deactivated accounts are treated as missing.
func LockBalanceTx(ctx context.Context, tx *sql.Tx, accountID uuid.UUID) (int64, error) {
	var balance int64

	err := tx.QueryRowContext(ctx,
		`SELECT balance FROM accounts WHERE id = $1 AND deactivated_at IS NULL FOR UPDATE`,
		accountID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, account.ErrNotFound
		}

		return 0, fmt.Errorf("locking account: %w", err)
	}

	return balance, nil
}

// AvailableTx returns the spendable balance: the locked balance minus the
// account's unexpired pending share earmarks. Must be called after
// LockBalanceTx on the same transaction, otherwise the earmark sum can race
// a concurrent share initiation.
func AvailableTx(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, balance int64) (int64, error) {
	var earmarked int64

	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM pending_share_transfers
		WHERE sender_account_id = $1
		  AND status = 'pending'
		  AND expires_at > NOW()`,
		accountID,
	).Scan(&earmarked)
	if err != nil {
		return 0, fmt.Errorf("summing earmarks: %w", err)
	}

	return balance - earmarked, nil
}

// ApplyDeltaTx updates the balance and appends the matching log entry inside
// the caller's transaction. The caller must already hold the account lock or
// accept that this takes it.
func ApplyDeltaTx(ctx context.Context, tx *sql.Tx, p wallet.DeltaParams) (*wallet.CreditTransaction, error) {
	balance, err := LockBalanceTx(ctx, tx, p.AccountID)
	if err != nil {
		return nil, err
	}

	newBalance := balance + p.Amount
	if newBalance < 0 {
		return nil, wallet.ErrInsufficientBalance
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = $1 WHERE id = $2`,
		newBalance, p.AccountID,
	); err != nil {
		return nil, fmt.Errorf("updating balance: %w", err)
	}

	txn := &wallet.CreditTransaction{
		AccountID:             p.AccountID,
		Type:                  p.Type,
		Amount:                p.Amount,
		BalanceAfter:          newBalance,
		Description:           p.Description,
		CounterpartyAccountID: p.CounterpartyAccountID,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO credit_transactions (account_id, type, amount, balance_after, description, counterparty_account_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		p.AccountID, p.Type, p.Amount, newBalance, p.Description, p.CounterpartyAccountID,
	).Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("appending transaction: %w", err)
	}

	return txn, nil
}
