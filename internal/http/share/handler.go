package share

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brewtab/brewtab/internal/account"
	"github.com/brewtab/brewtab/internal/share"
	"github.com/brewtab/brewtab/internal/wallet"
)

type Handler struct {
	svc *share.Service
}

func NewHandler(svc *share.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes is mounted under /accounts/{accountID}.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/shares", h.initiate)
	r.Delete("/shares/{shareID}", h.cancel)
}

type shareResponse struct {
	ID               uuid.UUID    `json:"id"`
	SenderAccountID  uuid.UUID    `json:"sender_account_id"`
	RecipientPhone   string       `json:"recipient_phone"`
	Amount           int64        `json:"amount"`
	VerificationCode string       `json:"verification_code"`
	Status           share.Status `json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
	ExpiresAt        time.Time    `json:"expires_at"`
	VerifiedAt       *time.Time   `json:"verified_at,omitempty"`
	VerifiedBy       string       `json:"verified_by_staff_id,omitempty"`
}

func toResponse(p *share.PendingShareTransfer) shareResponse {
	return shareResponse{
		ID:               p.ID,
		SenderAccountID:  p.SenderAccountID,
		RecipientPhone:   p.RecipientPhone,
		Amount:           p.Amount,
		VerificationCode: p.VerificationCode,
		Status:           p.Status,
		CreatedAt:        p.CreatedAt,
		ExpiresAt:        p.ExpiresAt,
		VerifiedAt:       p.VerifiedAt,
		VerifiedBy:       p.VerifiedByStaffID,
	}
}

type initiateRequest struct {
	RecipientPhone string `json:"recipient_phone"`
	Amount         int64  `json:"amount"` // cents
}

type initiateResponse struct {
	Share   shareResponse `json:"share"`
	SMSBody string        `json:"sms_body"`
}

func (h *Handler) initiate(w http.ResponseWriter, r *http.Request) {
	senderID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return
	}

	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, smsBody, err := h.svc.Initiate(r.Context(), senderID, req.RecipientPhone, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInvalidAmount):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, account.ErrNotFound):
			http.Error(w, "account not found", http.StatusNotFound)
		case errors.Is(err, wallet.ErrInsufficientBalance):
			http.Error(w, "insufficient credits", http.StatusPaymentRequired)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(initiateResponse{Share: toResponse(p), SMSBody: smsBody}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	senderID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return
	}

	shareID, err := uuid.Parse(chi.URLParam(r, "shareID"))
	if err != nil {
		http.Error(w, "invalid share id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Cancel(r.Context(), shareID, senderID); err != nil {
		switch {
		case errors.Is(err, share.ErrNotFound):
			http.Error(w, "share transfer not found", http.StatusNotFound)
		case errors.Is(err, share.ErrInvalidState):
			http.Error(w, "share transfer is no longer pending", http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
