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

// Expected column order: id, phone_number, balance, created_at, deactivated_at
func scanAccount(s scanner) (*account.Account, error) {
	var a account.Account

	var phone sql.NullString

	if err := s.Scan(&a.ID, &phone, &a.Balance, &a.CreatedAt, &a.DeactivatedAt); err != nil {
		return nil, err
	}

	a.PhoneNumber = phone.String

	return &a, nil
}

const selectAccountColumns = `id, phone_number, balance, created_at, deactivated_at`

func (s *Store) CreateAccount(ctx context.Context, a *account.Account, signupBonus int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var phone *string
	if a.PhoneNumber != "" {
		phone = &a.PhoneNumber
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO accounts (phone_number)
		VALUES ($1)
		RETURNING id, balance, created_at`,
		phone,
	).Scan(&a.ID, &a.Balance, &a.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "accounts_phone_number_key") {
			return account.ErrPhoneTaken
		}

		return fmt.Errorf("inserting account: %w", err)
	}

	if signupBonus > 0 {
		txn, err := walletstore.ApplyDeltaTx(ctx, tx, wallet.DeltaParams{
			AccountID:   a.ID,
			Amount:      signupBonus,
			Type:        wallet.TypeAdminAdjustment,
			Description: "Signup bonus",
		})
		if err != nil {
			return fmt.Errorf("applying signup bonus: %w", err)
		}

		a.Balance = txn.BalanceAfter
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing account: %w", err)
	}

	return nil
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	return a, nil
}

func (s *Store) FindByPhone(ctx context.Context, phone string) (*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + `
		FROM accounts
		WHERE phone_number = $1 AND deactivated_at IS NULL`

	a, err := scanAccount(s.db.QueryRowContext(ctx, query, phone))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("finding account by phone: %w", err)
	}

	return a, nil
}

func (s *Store) Deactivate(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET deactivated_at = NOW() WHERE id = $1 AND deactivated_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deactivating account: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivating account: %w", err)
	}

	if affected == 0 {
		return account.ErrNotFound
	}

	return nil
}
