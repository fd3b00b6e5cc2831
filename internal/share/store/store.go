package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brewtab/brewtab/internal/database"
	"github.com/brewtab/brewtab/internal/share"
	"github.com/brewtab/brewtab/internal/wallet"
	walletstore "github.com/brewtab/brewtab/internal/wallet/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

var timeNow = time.Now

type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, sender_account_id, recipient_phone, amount,
// verification_code, status, created_at, expires_at, verified_at,
// verified_by_staff_id, transaction_id
func scanShare(s scanner) (*share.PendingShareTransfer, error) {
	var p share.PendingShareTransfer

	var statusStr string

	var staffID sql.NullString

	if err := s.Scan(
		&p.ID, &p.SenderAccountID, &p.RecipientPhone, &p.Amount,
		&p.VerificationCode, &statusStr, &p.CreatedAt, &p.ExpiresAt,
		&p.VerifiedAt, &staffID, &p.TransactionID,
	); err != nil {
		return nil, err
	}

	p.Status = share.Status(statusStr)
	p.VerifiedByStaffID = staffID.String

	return &p, nil
}

const selectShareColumns = `
	id, sender_account_id, recipient_phone, amount, verification_code,
	status, created_at, expires_at, verified_at, verified_by_staff_id, transaction_id
`

// effectiveStatus folds lapsed-but-unswept rows into 'expired' so listings
// and filters never show a dead code as pending.
const effectiveStatus = `
	CASE WHEN status = 'pending' AND expires_at <= NOW() THEN 'expired' ELSE status END
`

func (s *Store) Create(ctx context.Context, p *share.PendingShareTransfer) error {
	_, err := database.WithRetry(func() (struct{}, error) {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return struct{}{}, fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback()

		// The earmark check must run under the sender's row lock, or two
		// concurrent initiations could both pass it.
		balance, err := walletstore.LockBalanceTx(ctx, tx, p.SenderAccountID)
		if err != nil {
			return struct{}{}, err
		}

		available, err := walletstore.AvailableTx(ctx, tx, p.SenderAccountID, balance)
		if err != nil {
			return struct{}{}, err
		}

		if available < p.Amount {
			return struct{}{}, wallet.ErrInsufficientBalance
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO pending_share_transfers
				(sender_account_id, recipient_phone, amount, verification_code, status, created_at, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			p.SenderAccountID, p.RecipientPhone, p.Amount, p.VerificationCode,
			p.Status, p.CreatedAt, p.ExpiresAt,
		).Scan(&p.ID)
		if err != nil {
			if database.IsUniqueViolation(err, "pending_share_transfers_code_key") {
				return struct{}{}, share.ErrCodeTaken
			}

			return struct{}{}, fmt.Errorf("inserting share transfer: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return struct{}{}, fmt.Errorf("committing share transfer: %w", err)
		}

		return struct{}{}, nil
	})

	return err
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*share.PendingShareTransfer, error) {
	query := `SELECT ` + selectShareColumns + ` FROM pending_share_transfers WHERE id = $1`

	p, err := scanShare(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, share.ErrNotFound
		}

		return nil, fmt.Errorf("getting share transfer: %w", err)
	}

	return p, nil
}

func (s *Store) List(ctx context.Context, filter share.ListFilter) ([]*share.PendingShareTransfer, error) {
	query := `SELECT ` + selectShareColumns + ` FROM pending_share_transfers`

	var args []any

	if filter.Status != nil {
		query += ` WHERE ` + effectiveStatus + ` = $1`

		args = append(args, *filter.Status)
	}

	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing share transfers: %w", err)
	}
	defer rows.Close()

	var shares []*share.PendingShareTransfer

	for rows.Next() {
		p, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning share transfer: %w", err)
		}

		if p.Lapsed(timeNow()) {
			p.Status = share.StatusExpired
		}

		shares = append(shares, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating share transfers: %w", err)
	}

	return shares, nil
}

func (s *Store) Redeem(ctx context.Context, code, staffID string) (*share.RedeemResult, error) {
	return database.WithRetry(func() (*share.RedeemResult, error) {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback()

		p, err := lockPendingByCode(ctx, tx, code)
		if err != nil {
			return nil, err
		}

		if p.Lapsed(timeNow()) {
			// Lazy expiry: record the transition and report it. This is a
			// state change, so it commits even though the redeem fails.
			if _, err := tx.ExecContext(ctx,
				`UPDATE pending_share_transfers SET status = 'expired' WHERE id = $1`,
				p.ID,
			); err != nil {
				return nil, fmt.Errorf("expiring share transfer: %w", err)
			}

			if err := tx.Commit(); err != nil {
				return nil, fmt.Errorf("committing expiry: %w", err)
			}

			return nil, share.ErrCodeExpired
		}

		balance, err := walletstore.LockBalanceTx(ctx, tx, p.SenderAccountID)
		if err != nil {
			return nil, err
		}

		available, err := walletstore.AvailableTx(ctx, tx, p.SenderAccountID, balance)
		if err != nil {
			return nil, err
		}

		// AvailableTx subtracts every pending earmark, this transfer's own
		// included; add it back so the transfer doesn't block itself. Every
		// other pending share still counts.
		if available+p.Amount < p.Amount {
			return nil, wallet.ErrInsufficientBalance
		}

		txn, err := walletstore.ApplyDeltaTx(ctx, tx, wallet.DeltaParams{
			AccountID:   p.SenderAccountID,
			Amount:      -p.Amount,
			Type:        wallet.TypeShareRedeemed,
			Description: fmt.Sprintf("Shared credits claimed by %s", p.RecipientPhone),
		})
		if err != nil {
			return nil, err
		}

		err = tx.QueryRowContext(ctx, `
			UPDATE pending_share_transfers
			SET status = 'verified', verified_at = NOW(), verified_by_staff_id = $2, transaction_id = $3
			WHERE id = $1
			RETURNING verified_at`,
			p.ID, staffID, txn.ID,
		).Scan(&p.VerifiedAt)
		if err != nil {
			return nil, fmt.Errorf("marking share transfer verified: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("committing redemption: %w", err)
		}

		p.Status = share.StatusVerified
		p.VerifiedByStaffID = staffID
		p.TransactionID = &txn.ID

		return &share.RedeemResult{Share: p, Transaction: txn}, nil
	})
}

// lockPendingByCode finds the pending transfer for a code and locks it.
// When no pending row matches, the most recent terminal row with the same
// code decides which error the staff member sees.
func lockPendingByCode(ctx context.Context, tx *sql.Tx, code string) (*share.PendingShareTransfer, error) {
	query := `SELECT ` + selectShareColumns + `
		FROM pending_share_transfers
		WHERE verification_code = $1 AND status = 'pending'
		FOR UPDATE`

	p, err := scanShare(tx.QueryRowContext(ctx, query, code))
	if err == nil {
		return p, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("locking share transfer: %w", err)
	}

	var status string

	err = tx.QueryRowContext(ctx, `
		SELECT status FROM pending_share_transfers
		WHERE verification_code = $1
		ORDER BY created_at DESC
		LIMIT 1`,
		code,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, share.ErrCodeNotFound
		}

		return nil, fmt.Errorf("resolving code status: %w", err)
	}

	switch share.Status(status) {
	case share.StatusVerified:
		return nil, share.ErrAlreadyVerified
	case share.StatusCancelled:
		return nil, share.ErrAlreadyCancelled
	case share.StatusExpired:
		return nil, share.ErrCodeExpired
	}

	return nil, share.ErrCodeNotFound
}

func (s *Store) Cancel(ctx context.Context, id, senderID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_share_transfers
		SET status = 'cancelled'
		WHERE id = $1 AND sender_account_id = $2 AND status = 'pending' AND expires_at > NOW()`,
		id, senderID,
	)
	if err != nil {
		return fmt.Errorf("cancelling share transfer: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancelling share transfer: %w", err)
	}

	if affected == 1 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pending_share_transfers
			WHERE id = $1 AND sender_account_id = $2
		)`,
		id, senderID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("checking share transfer: %w", err)
	}

	if !exists {
		return share.ErrNotFound
	}

	return share.ErrInvalidState
}

func (s *Store) ExpireStale(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_share_transfers
		SET status = 'expired'
		WHERE status = 'pending' AND expires_at <= NOW()`,
	)
	if err != nil {
		return 0, fmt.Errorf("expiring share transfers: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expiring share transfers: %w", err)
	}

	return affected, nil
}
