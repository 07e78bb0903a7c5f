package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cardboardgarden/garden-api/internal/api/shared"
	"github.com/cardboardgarden/garden-api/internal/platform/logger"
	"github.com/cardboardgarden/garden-api/internal/service/account"
)

// Authenticator resolves a session token to an account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) account.Result
}

// AuthMiddleware guards routes with bearer session tokens.
type AuthMiddleware struct {
	auth Authenticator
}

// NewAuthMiddleware creates an AuthMiddleware.
func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Authenticate requires a valid bearer token for a usable account and puts
// the account's profile in the request context. Invalid tokens get 401;
// deactivated or unverified accounts get 403.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		res := m.auth.Authenticate(r.Context(), strings.TrimSpace(token))
		if !res.OK() {
			shared.RespondWithError(w, r, shared.StatusForKind(res.Kind), res.Message)
			return
		}

		ctx := shared.WithProfile(r.Context(), res.Profile)
		log := logger.FromContext(ctx).With(slog.Int64("account_id", res.AccountID))
		ctx = logger.WithLogger(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
