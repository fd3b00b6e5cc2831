package importer_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewtab/brewtab/internal/account"
	"github.com/brewtab/brewtab/internal/importer"
	"github.com/brewtab/brewtab/internal/wallet"
)

type mockDirectory struct {
	accounts map[string]*account.Account
}

func (m *mockDirectory) FindByPhone(ctx context.Context, phone string) (*account.Account, error) {
	a, ok := m.accounts[phone]
	if !ok {
		return nil, account.ErrNotFound
	}

	return a, nil
}

type appliedGrant struct {
	accountID uuid.UUID
	amount    int64
	note      string
}

type mockAdjuster struct {
	applied []appliedGrant
}

func (m *mockAdjuster) AdminAdjust(ctx context.Context, accountID uuid.UUID, amount int64, note string) (*wallet.CreditTransaction, error) {
	m.applied = append(m.applied, appliedGrant{accountID: accountID, amount: amount, note: note})
	return &wallet.CreditTransaction{ID: uuid.New(), AccountID: accountID, Amount: amount}, nil
}

func TestService_ImportGrants(t *testing.T) {
	known := &account.Account{ID: uuid.New(), PhoneNumber: "+351912345678"}

	dir := &mockDirectory{accounts: map[string]*account.Account{
		known.PhoneNumber: known,
	}}
	adj := &mockAdjuster{}

	svc := importer.NewService(dir, adj)

	csv := `phone,amount,note
+351912345678,10.00,Loyalty reward
+351999999999,5.00,
`

	res, err := svc.ImportGrants(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	// Known phone gets credited, the unknown one is reported, not fatal.
	assert.Equal(t, 1, res.Applied)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "+351999999999", res.Skipped[0].Grant.Phone)

	require.Len(t, adj.applied, 1)
	assert.Equal(t, known.ID, adj.applied[0].accountID)
	assert.Equal(t, int64(1000), adj.applied[0].amount)
	assert.Equal(t, "Loyalty reward", adj.applied[0].note)
}

func TestService_ImportGrants_DefaultNote(t *testing.T) {
	known := &account.Account{ID: uuid.New(), PhoneNumber: "+351912345678"}

	dir := &mockDirectory{accounts: map[string]*account.Account{
		known.PhoneNumber: known,
	}}
	adj := &mockAdjuster{}

	svc := importer.NewService(dir, adj)

	_, err := svc.ImportGrants(context.Background(), strings.NewReader("phone,amount\n+351912345678,2.00\n"))
	require.NoError(t, err)

	require.Len(t, adj.applied, 1)
	assert.Equal(t, "Promotional credit grant", adj.applied[0].note)
}

func TestService_ImportGrants_BadSheet(t *testing.T) {
	svc := importer.NewService(&mockDirectory{}, &mockAdjuster{})

	// A malformed sheet fails before anything is applied.
	_, err := svc.ImportGrants(context.Background(), strings.NewReader("phone,amount\n+351912345678,ten\n"))
	assert.Error(t, err)
}
