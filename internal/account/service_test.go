package account_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewtab/brewtab/internal/account"
)

type mockRepo struct {
	createAccountFunc func(ctx context.Context, a *account.Account, signupBonus int64) error
	findByPhoneFunc   func(ctx context.Context, phone string) (*account.Account, error)
}

func (m *mockRepo) CreateAccount(ctx context.Context, a *account.Account, signupBonus int64) error {
	if m.createAccountFunc != nil {
		return m.createAccountFunc(ctx, a, signupBonus)
	}

	a.ID = uuid.New()

	return nil
}

func (m *mockRepo) GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return nil, account.ErrNotFound
}

func (m *mockRepo) FindByPhone(ctx context.Context, phone string) (*account.Account, error) {
	if m.findByPhoneFunc != nil {
		return m.findByPhoneFunc(ctx, phone)
	}

	return nil, account.ErrNotFound
}

func (m *mockRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return nil
}

func TestService_Register(t *testing.T) {
	var gotBonus int64
	var gotPhone string

	repo := &mockRepo{
		createAccountFunc: func(_ context.Context, a *account.Account, signupBonus int64) error {
			a.ID = uuid.New()
			a.Balance = signupBonus
			gotBonus = signupBonus
			gotPhone = a.PhoneNumber

			return nil
		},
	}

	svc := account.NewService(repo, 500)

	a, err := svc.Register(context.Background(), "+351 912 345 678")
	require.NoError(t, err)

	assert.Equal(t, int64(500), gotBonus)
	assert.Equal(t, "+351912345678", gotPhone)
	assert.Equal(t, int64(500), a.Balance)
}

func TestService_Register_PhoneTaken(t *testing.T) {
	repo := &mockRepo{
		createAccountFunc: func(_ context.Context, a *account.Account, signupBonus int64) error {
			return account.ErrPhoneTaken
		},
	}

	svc := account.NewService(repo, 0)

	_, err := svc.Register(context.Background(), "+351912345678")
	assert.ErrorIs(t, err, account.ErrPhoneTaken)
}

func TestService_FindByPhone(t *testing.T) {
	want := &account.Account{ID: uuid.New(), PhoneNumber: "+351912345678"}

	repo := &mockRepo{
		findByPhoneFunc: func(_ context.Context, phone string) (*account.Account, error) {
			if phone == want.PhoneNumber {
				return want, nil
			}

			return nil, account.ErrNotFound
		},
	}

	svc := account.NewService(repo, 0)

	// Lookups normalize before hitting the store.
	got, err := svc.FindByPhone(context.Background(), "+351 912-345-678")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// A blank phone can never match an account.
	_, err = svc.FindByPhone(context.Background(), "   ")
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+351 912 345 678", "+351912345678"},
		{"+351-912-345-678", "+351912345678"},
		{"912345678", "912345678"},
		{"(351) 912345678", "351912345678"},
		{"  ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, account.NormalizePhone(tt.in))
	}
}
