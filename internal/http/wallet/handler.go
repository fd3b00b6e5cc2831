package wallet

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brewtab/brewtab/internal/account"
	"github.com/brewtab/brewtab/internal/database"
	"github.com/brewtab/brewtab/internal/wallet"
)

type Handler struct {
	svc *wallet.Service
}

func NewHandler(svc *wallet.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes is mounted under /accounts/{accountID}.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/transactions", h.history)
	r.Post("/transfers", h.transfer)
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

func toResponse(txn *wallet.CreditTransaction) transactionResponse {
	return transactionResponse{
		ID:                    txn.ID,
		AccountID:             txn.AccountID,
		Type:                  txn.Type,
		Amount:                txn.Amount,
		BalanceAfter:          txn.BalanceAfter,
		Description:           txn.Description,
		CounterpartyAccountID: txn.CounterpartyAccountID,
		CreatedAt:             txn.CreatedAt,
	}
}

func toResponseList(txns []*wallet.CreditTransaction) []transactionResponse {
	resp := make([]transactionResponse, len(txns))
	for i, txn := range txns {
		resp[i] = toResponse(txn)
	}

	return resp
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return
	}

	txns, err := h.svc.History(r.Context(), accountID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(txns)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type transferRequest struct {
	RecipientPhone string `json:"recipient_phone"`
	Amount         int64  `json:"amount"` // cents
	Message        string `json:"message"`
}

type transferResponse struct {
	SenderTxn    transactionResponse `json:"sender_transaction"`
	RecipientTxn transactionResponse `json:"recipient_transaction"`
}

func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	senderID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.Transfer(r.Context(), senderID, req.RecipientPhone, req.Amount, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInvalidAmount), errors.Is(err, wallet.ErrSelfTransfer):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, wallet.ErrRecipientNotFound):
			http.Error(w, "recipient not found", http.StatusNotFound)
		case errors.Is(err, account.ErrNotFound):
			http.Error(w, "account not found", http.StatusNotFound)
		case errors.Is(err, wallet.ErrInsufficientBalance):
			http.Error(w, "insufficient credits", http.StatusPaymentRequired)
		case errors.Is(err, database.ErrConcurrencyConflict):
			http.Error(w, "please retry", http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	resp := transferResponse{
		SenderTxn:    toResponse(result.SenderTxn),
		RecipientTxn: toResponse(result.RecipientTxn),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
