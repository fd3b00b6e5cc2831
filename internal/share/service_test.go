package share_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/brewtab/brewtab/internal/share"
	"github.com/brewtab/brewtab/internal/wallet"
)

const expiryWindow = 24 * time.Hour

func TestService_Initiate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := share.NewMockRepository(ctrl)
	svc := share.NewService(repo, expiryWindow)
	senderID := uuid.New()

	var created *share.PendingShareTransfer

	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *share.PendingShareTransfer) error {
			p.ID = uuid.New()
			created = p
			return nil
		})

	p, sms, err := svc.Initiate(context.Background(), senderID, "+351 912 345 678", 2000)
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, senderID, p.SenderAccountID)
	assert.Equal(t, "+351912345678", p.RecipientPhone)
	assert.Equal(t, int64(2000), p.Amount)
	assert.Equal(t, share.StatusPending, p.Status)
	assert.Len(t, p.VerificationCode, share.CodeLength)
	assert.WithinDuration(t, p.CreatedAt.Add(expiryWindow), p.ExpiresAt, time.Second)

	assert.Contains(t, sms, "20.00")
	assert.Contains(t, sms, p.VerificationCode)
}

func TestService_Initiate_InvalidInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := share.NewMockRepository(ctrl)
	svc := share.NewService(repo, expiryWindow)

	_, _, err := svc.Initiate(context.Background(), uuid.New(), "+351912345678", 0)
	assert.ErrorIs(t, err, wallet.ErrInvalidAmount)

	_, _, err = svc.Initiate(context.Background(), uuid.New(), "+351912345678", -100)
	assert.ErrorIs(t, err, wallet.ErrInvalidAmount)

	_, _, err = svc.Initiate(context.Background(), uuid.New(), "   ", 100)
	assert.Error(t, err)
}

func TestService_Initiate_CodeCollision(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := share.NewMockRepository(ctrl)
	svc := share.NewService(repo, expiryWindow)

	var codes []string

	// First code collides with another pending transfer; the service must
	// regenerate rather than fail.
	gomock.InOrder(
		repo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p *share.PendingShareTransfer) error {
				codes = append(codes, p.VerificationCode)
				return share.ErrCodeTaken
			}),
		repo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p *share.PendingShareTransfer) error {
				codes = append(codes, p.VerificationCode)
				return nil
			}),
	)

	p, _, err := svc.Initiate(context.Background(), uuid.New(), "+351912345678", 500)
	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.NotEqual(t, codes[0], codes[1])
	assert.Equal(t, codes[1], p.VerificationCode)
}

func TestService_Initiate_InsufficientAvailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := share.NewMockRepository(ctrl)
	svc := share.NewService(repo, expiryWindow)

	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(wallet.ErrInsufficientBalance)

	_, _, err := svc.Initiate(context.Background(), uuid.New(), "+351912345678", 10000)
	assert.ErrorIs(t, err, wallet.ErrInsufficientBalance)
}

func TestService_Redeem(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := share.NewMockRepository(ctrl)
	svc := share.NewService(repo, expiryWindow)

	want := &share.RedeemResult{
		Share:       &share.PendingShareTransfer{ID: uuid.New(), Status: share.StatusVerified},
		Transaction: &wallet.CreditTransaction{ID: uuid.New(), Amount: -2000},
	}

	repo.EXPECT().
		Redeem(gomock.Any(), "ABC234", "counter-1").
		Return(want, nil)

	// Staff input is normalized before it reaches the store.
	got, err := svc.Redeem(context.Background(), " abc-234 ", "counter-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestService_Redeem_BadInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := share.NewMockRepository(ctrl)
	svc := share.NewService(repo, expiryWindow)

	// Wrong length short-circuits without hitting the store.
	_, err := svc.Redeem(context.Background(), "AB", "counter-1")
	assert.ErrorIs(t, err, share.ErrCodeNotFound)

	_, err = svc.Redeem(context.Background(), "ABC234", "")
	assert.Error(t, err)
}

func TestService_Redeem_StoreErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "NotFound", err: share.ErrCodeNotFound},
		{name: "Expired", err: share.ErrCodeExpired},
		{name: "AlreadyVerified", err: share.ErrAlreadyVerified},
		{name: "Cancelled", err: share.ErrAlreadyCancelled},
		{name: "InsufficientBalance", err: wallet.ErrInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := share.NewMockRepository(ctrl)
			svc := share.NewService(repo, expiryWindow)

			repo.EXPECT().
				Redeem(gomock.Any(), "ABC234", "counter-1").
				Return(nil, tt.err)

			_, err := svc.Redeem(context.Background(), "ABC234", "counter-1")
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestService_Cancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := share.NewMockRepository(ctrl)
	svc := share.NewService(repo, expiryWindow)

	id, senderID := uuid.New(), uuid.New()

	repo.EXPECT().Cancel(gomock.Any(), id, senderID).Return(nil)
	require.NoError(t, svc.Cancel(context.Background(), id, senderID))

	repo.EXPECT().Cancel(gomock.Any(), id, senderID).Return(share.ErrInvalidState)
	assert.ErrorIs(t, svc.Cancel(context.Background(), id, senderID), share.ErrInvalidState)
}

func TestPendingShareTransfer_Lapsed(t *testing.T) {
	now := time.Now()

	p := &share.PendingShareTransfer{Status: share.StatusPending, ExpiresAt: now.Add(time.Hour)}
	assert.False(t, p.Lapsed(now))
	assert.True(t, p.Lapsed(now.Add(2*time.Hour)))

	// Terminal states never lapse.
	verified := &share.PendingShareTransfer{Status: share.StatusVerified, ExpiresAt: now.Add(-time.Hour)}
	assert.False(t, verified.Lapsed(now))
}
