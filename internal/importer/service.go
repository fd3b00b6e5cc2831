package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/brewtab/brewtab/internal/account"
	"github.com/brewtab/brewtab/internal/importer/grants"
	"github.com/brewtab/brewtab/internal/wallet"
)

type Parser interface {
	Parse(r io.Reader) ([]grants.Grant, error)
}

// Directory resolves grant rows to accounts by phone number.
type Directory interface {
	FindByPhone(ctx context.Context, phone string) (*account.Account, error)
}

// Adjuster applies grants as admin adjustments. Implemented by the wallet
// service.
type Adjuster interface {
	AdminAdjust(ctx context.Context, accountID uuid.UUID, amount int64, note string) (*wallet.CreditTransaction, error)
}

type SkippedRow struct {
	Grant  grants.Grant
	Reason string
}

type Result struct {
	Applied int
	Skipped []SkippedRow
}

type Service struct {
	parser   Parser
	accounts Directory
	wallets  Adjuster
}

func NewService(accounts Directory, wallets Adjuster) *Service {
	return &Service{
		parser:   grants.NewParser(),
		accounts: accounts,
		wallets:  wallets,
	}
}

// ImportGrants parses a grant CSV and applies each row as an
// admin_adjustment credit. Rows referencing unknown phone numbers are
// reported back rather than failing the whole batch; a malformed sheet
// fails before anything is applied.
func (s *Service) ImportGrants(ctx context.Context, r io.Reader) (*Result, error) {
	parsed, err := s.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing grants: %w", err)
	}

	res := &Result{}

	for _, g := range parsed {
		a, err := s.accounts.FindByPhone(ctx, g.Phone)
		if err != nil {
			if errors.Is(err, account.ErrNotFound) {
				res.Skipped = append(res.Skipped, SkippedRow{Grant: g, Reason: "no account with this phone"})
				continue
			}

			return res, fmt.Errorf("looking up %s: %w", g.Phone, err)
		}

		note := g.Note
		if note == "" {
			note = "Promotional credit grant"
		}

		if _, err := s.wallets.AdminAdjust(ctx, a.ID, g.Amount, note); err != nil {
			return res, fmt.Errorf("applying grant to %s: %w", g.Phone, err)
		}

		res.Applied++
	}

	return res, nil
}
