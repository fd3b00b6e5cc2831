package account

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brewtab/brewtab/internal/account"
	"github.com/brewtab/brewtab/internal/wallet"
)

type Handler struct {
	svc     *account.Service
	wallets *wallet.Service
}

func NewHandler(svc *account.Service, wallets *wallet.Service) *Handler {
	return &Handler{svc: svc, wallets: wallets}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/lookup", h.lookup)
	r.Get("/{accountID}", h.get)
	r.Delete("/{accountID}", h.deactivate)
	r.Post("/{accountID}/topup", h.topUp)
}

type accountResponse struct {
	ID          uuid.UUID `json:"id"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Balance     int64     `json:"balance"`
	Available   int64     `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
}

type createAccountRequest struct {
	Phone string `json:"phone"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a, err := h.svc.Register(r.Context(), req.Phone)
	if err != nil {
		if errors.Is(err, account.ErrPhoneTaken) {
			http.Error(w, "phone number already registered", http.StatusConflict)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	resp := accountResponse{
		ID:          a.ID,
		PhoneNumber: a.PhoneNumber,
		Balance:     a.Balance,
		Available:   a.Balance,
		CreatedAt:   a.CreatedAt,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	a, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	balances, err := h.wallets.Balances(r.Context(), id)
	if err != nil && !errors.Is(err, account.ErrNotFound) {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	resp := accountResponse{
		ID:          a.ID,
		PhoneNumber: a.PhoneNumber,
		Balance:     a.Balance,
		Available:   balances.Available,
		CreatedAt:   a.CreatedAt,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type lookupResponse struct {
	ID          uuid.UUID `json:"id"`
	PhoneNumber string    `json:"phone_number"`
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if phone == "" {
		http.Error(w, "phone query parameter is required", http.StatusBadRequest)
		return
	}

	a, err := h.svc.FindByPhone(r.Context(), phone)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	// Balance is deliberately not exposed here; lookup exists so senders
	// can confirm a recipient, not inspect their wallet.
	if err := json.NewEncoder(w).Encode(lookupResponse{ID: a.ID, PhoneNumber: a.PhoneNumber}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Deactivate(r.Context(), id); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type topUpRequest struct {
	Amount    int64  `json:"amount"` // cents
	Reference string `json:"reference"`
}

type transactionResponse struct {
	ID                    uuid.UUID   `json:"id"`
	AccountID             uuid.UUID   `json:"account_id"`
	Type                  wallet.Type `json:"type"`
	Amount                int64       `json:"amount"`
	BalanceAfter          int64       `json:"balance_after"`
	Description           string      `json:"description"`
	CounterpartyAccountID *uuid.UUID  `json:"counterparty_account_id,omitempty"`
	CreatedAt             time.Time   `json:"created_at"`
}

func (h *Handler) topUp(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req topUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	txn, err := h.wallets.TopUp(r.Context(), id, req.Amount, req.Reference)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInvalidAmount):
			http.Error(w, "amount must be positive", http.StatusBadRequest)
		case errors.Is(err, account.ErrNotFound):
			http.Error(w, "account not found", http.StatusNotFound)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	resp := transactionResponse{
		ID:                    txn.ID,
		AccountID:             txn.AccountID,
		Type:                  txn.Type,
		Amount:                txn.Amount,
		BalanceAfter:          txn.BalanceAfter,
		Description:           txn.Description,
		CounterpartyAccountID: txn.CounterpartyAccountID,
		CreatedAt:             txn.CreatedAt,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
