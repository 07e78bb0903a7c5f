package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cardboardgarden/garden-api/internal/api/shared"
	"github.com/cardboardgarden/garden-api/internal/platform/logger"
	"github.com/cardboardgarden/garden-api/internal/service/account"
)

// AccountService is the account lifecycle as seen by the HTTP layer.
// *account.Engine implements it.
type AccountService interface {
	Register(ctx context.Context, reg account.Registration) account.Result
	Login(ctx context.Context, identifier, password string) account.Result
	VerifyEmail(ctx context.Context, token string) account.Result
	RequestPasswordReset(ctx context.Context, email string) account.Result
	ResetPassword(ctx context.Context, token, newPassword string) account.Result
	ResendVerification(ctx context.Context, email string) account.Result
}

var _ AccountService = (*account.Engine)(nil)

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	accounts AccountService
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(accounts AccountService, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		accounts: accounts,
		logger:   log.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res := h.accounts.Register(r.Context(), account.Registration{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if !res.OK() {
		h.respondFailure(w, r, res)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, RegisterResponse{
		Success: true,
		Message: res.Message,
		UserID:  res.AccountID,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res := h.accounts.Login(r.Context(), req.Login, req.Password)
	if !res.OK() {
		h.respondFailure(w, r, res)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		Success: true,
		Message: res.Message,
		Token:   res.Token,
		User:    *res.Profile,
	})
}

// VerifyEmail handles GET /auth/verify-email?token=.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	res := h.accounts.VerifyEmail(r.Context(), r.URL.Query().Get("token"))
	h.respondMessage(w, r, res)
}

// ForgotPassword handles POST /auth/forgot-password. The email comes from
// the query string or a JSON body. The response is always 200 with the same
// message, whether or not the email is registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	email := h.emailParam(r)
	res := account.Result{Message: account.MsgResetRequested}
	if email != "" {
		res = h.accounts.RequestPasswordReset(r.Context(), email)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Success: true, Message: res.Message})
}

// ResendVerification handles POST /auth/resend-verification. Like
// ForgotPassword it always answers 200.
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	email := h.emailParam(r)
	res := account.Result{Message: account.MsgResendRequested}
	if email != "" {
		res = h.accounts.ResendVerification(r.Context(), email)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Success: true, Message: res.Message})
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.respondMessage(w, r, h.accounts.ResetPassword(r.Context(), req.Token, req.Password))
}

// Me handles GET /auth/me behind the auth middleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, ok := shared.GetProfile(r.Context())
	if !ok {
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("profile missing from authenticated request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, account.MsgUnauthorized)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ProfileResponse{
		Success: true,
		Message: account.MsgAuthenticated,
		User:    *profile,
	})
}

func (h *AuthHandler) respondMessage(w http.ResponseWriter, r *http.Request, res account.Result) {
	if !res.OK() {
		h.respondFailure(w, r, res)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Success: true, Message: res.Message})
}

// respondFailure writes only the result message, so distinct internal paths
// with the same kind and message produce identical bodies.
func (h *AuthHandler) respondFailure(w http.ResponseWriter, r *http.Request, res account.Result) {
	status := shared.StatusForKind(res.Kind)
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("auth request rejected",
		slog.String("kind", string(res.Kind)),
		slog.Int("status_code", status),
		slog.String("path", r.URL.Path))
	shared.RespondWithError(w, r, status, res.Message)
}

// emailParam reads ?email= or, failing that, a JSON {"email": ...} body.
func (h *AuthHandler) emailParam(r *http.Request) string {
	if email := strings.TrimSpace(r.URL.Query().Get("email")); email != "" {
		return email
	}
	var req EmailRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		return ""
	}
	return strings.TrimSpace(req.Email)
}

// decodeAndValidate decodes the JSON body into req and validates it,
// writing a 400 response and returning false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return false
	}
	return true
}
