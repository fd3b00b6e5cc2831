package staff

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/brewtab/brewtab/internal/auth"
	"github.com/brewtab/brewtab/internal/http/middleware"
	"github.com/brewtab/brewtab/internal/importer"
	"github.com/brewtab/brewtab/internal/share"
	"github.com/brewtab/brewtab/internal/wallet"
)

// Handler serves the counter-side surface: login, the verification console
// listing, code redemption and grant imports.
type Handler struct {
	shares  *share.Service
	imports *importer.Service

	jwtSecret     []byte
	staffCodeHash string
	tokenExpiry   time.Duration
}

func NewHandler(shares *share.Service, imports *importer.Service, jwtSecret []byte, staffCodeHash string, tokenExpiry time.Duration) *Handler {
	return &Handler{
		shares:        shares,
		imports:       imports,
		jwtSecret:     jwtSecret,
		staffCodeHash: staffCodeHash,
		tokenExpiry:   tokenExpiry,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.With(chimw.AllowContentType("application/json")).Post("/login", h.login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireStaff(h.jwtSecret))

		r.Get("/shares", h.listShares)
		r.With(chimw.AllowContentType("application/json")).Post("/shares/redeem", h.redeem)
		r.Post("/grants/import", h.importGrants)
	})
}

type loginRequest struct {
	StaffID    string `json:"staff_id"`
	AccessCode string `json:"access_code"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.StaffID == "" {
		http.Error(w, "staff_id is required", http.StatusBadRequest)
		return
	}

	if err := auth.CheckAccessCode(req.AccessCode, h.staffCodeHash); err != nil {
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	token, err := auth.StaffToken(req.StaffID, h.jwtSecret, h.tokenExpiry)
	if err != nil {
		slog.Error("failed to mint staff token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	resp := loginResponse{Token: token, ExpiresAt: time.Now().Add(h.tokenExpiry)}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type shareResponse struct {
	ID               string       `json:"id"`
	SenderAccountID  string       `json:"sender_account_id"`
	RecipientPhone   string       `json:"recipient_phone"`
	Amount           int64        `json:"amount"`
	VerificationCode string       `json:"verification_code"`
	Status           share.Status `json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
	ExpiresAt        time.Time    `json:"expires_at"`
	VerifiedAt       *time.Time   `json:"verified_at,omitempty"`
	VerifiedBy       string       `json:"verified_by_staff_id,omitempty"`
}

func toShareResponse(p *share.PendingShareTransfer) shareResponse {
	return shareResponse{
		ID:               p.ID.String(),
		SenderAccountID:  p.SenderAccountID.String(),
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

func (h *Handler) listShares(w http.ResponseWriter, r *http.Request) {
	filter := share.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = new(share.Status(s))
	}

	shares, err := h.shares.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]shareResponse, len(shares))
	for i, p := range shares {
		resp[i] = toShareResponse(p)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type redeemRequest struct {
	Code string `json:"code"`
}

type redeemResponse struct {
	Share       shareResponse `json:"share"`
	Transaction struct {
		ID           string `json:"id"`
		Amount       int64  `json:"amount"`
		BalanceAfter int64  `json:"balance_after"`
	} `json:"transaction"`
}

func (h *Handler) redeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.shares.Redeem(r.Context(), req.Code, middleware.StaffID(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, share.ErrCodeNotFound):
			http.Error(w, "code not found", http.StatusNotFound)
		case errors.Is(err, share.ErrCodeExpired):
			http.Error(w, "code expired", http.StatusGone)
		case errors.Is(err, share.ErrAlreadyVerified):
			http.Error(w, "code already redeemed", http.StatusConflict)
		case errors.Is(err, share.ErrAlreadyCancelled):
			http.Error(w, "share transfer was cancelled", http.StatusConflict)
		case errors.Is(err, wallet.ErrInsufficientBalance):
			http.Error(w, "sender has insufficient credits", http.StatusPaymentRequired)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")

	resp := redeemResponse{Share: toShareResponse(result.Share)}
	resp.Transaction.ID = result.Transaction.ID.String()
	resp.Transaction.Amount = result.Transaction.Amount
	resp.Transaction.BalanceAfter = result.Transaction.BalanceAfter

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type importGrantsResponse struct {
	Applied int `json:"applied"`
	Skipped []struct {
		Phone  string `json:"phone"`
		Amount int64  `json:"amount"`
		Reason string `json:"reason"`
	} `json:"skipped"`
}

func (h *Handler) importGrants(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.imports.ImportGrants(r.Context(), file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := importGrantsResponse{Applied: result.Applied}
	for _, s := range result.Skipped {
		resp.Skipped = append(resp.Skipped, struct {
			Phone  string `json:"phone"`
			Amount int64  `json:"amount"`
			Reason string `json:"reason"`
		}{Phone: s.Grant.Phone, Amount: s.Grant.Amount, Reason: s.Reason})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
