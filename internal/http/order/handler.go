package order

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
	"github.com/brewtab/brewtab/internal/order"
	"github.com/brewtab/brewtab/internal/wallet"
)

type Handler struct {
	svc *order.Service
}

func NewHandler(svc *order.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes is mounted under /accounts/{accountID}.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/orders", h.place)
	r.Get("/orders", h.list)
}

type orderResponse struct {
	ID            uuid.UUID    `json:"id"`
	AccountID     uuid.UUID    `json:"account_id"`
	Total         int64        `json:"total"`
	Items         []order.Item `json:"items"`
	TransactionID uuid.UUID    `json:"transaction_id"`
	CreatedAt     time.Time    `json:"created_at"`
}

func toResponse(o *order.Order) orderResponse {
	items := o.Items
	if items == nil {
		items = []order.Item{}
	}

	return orderResponse{
		ID:            o.ID,
		AccountID:     o.AccountID,
		Total:         o.Total,
		Items:         items,
		TransactionID: o.TransactionID,
		CreatedAt:     o.CreatedAt,
	}
}

type placeOrderRequest struct {
	Items []order.Item `json:"items"`
	Total int64        `json:"total"` // cents
}

type placeOrderResponse struct {
	Order       orderResponse `json:"order"`
	Transaction struct {
		ID           uuid.UUID `json:"id"`
		Amount       int64     `json:"amount"`
		BalanceAfter int64     `json:"balance_after"`
	} `json:"transaction"`
}

func (h *Handler) place(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return
	}

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	o, txn, err := h.svc.Place(r.Context(), accountID, req.Items, req.Total)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInvalidAmount):
			http.Error(w, "order total must be positive", http.StatusBadRequest)
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

	resp := placeOrderResponse{Order: toResponse(o)}
	resp.Transaction.ID = txn.ID
	resp.Transaction.Amount = txn.Amount
	resp.Transaction.BalanceAfter = txn.BalanceAfter

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return
	}

	orders, err := h.svc.List(r.Context(), accountID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toResponse(o)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
