package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/brewtab/brewtab/internal/auth"
)

type ctxKey string

const staffIDKey ctxKey = "staffID"

// RequireStaff rejects requests without a valid staff bearer token and puts
// the staff id on the request context.
func RequireStaff(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := auth.ParseToken(token, secret)
			if err != nil {
				http.Error(w, "authentication failed", http.StatusUnauthorized)
				return
			}

			if claims.Role != auth.RoleStaff || claims.StaffID == "" {
				http.Error(w, "staff access required", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), staffIDKey, claims.StaffID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StaffID returns the authenticated staff id, or "" when the request did
// not pass RequireStaff.
func StaffID(ctx context.Context) string {
	id, _ := ctx.Value(staffIDKey).(string)
	return id
}
