package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardboardgarden/garden-api/internal/api"
	"github.com/cardboardgarden/garden-api/internal/api/middleware"
	"github.com/cardboardgarden/garden-api/internal/domain"
	"github.com/cardboardgarden/garden-api/internal/mocks"
	"github.com/cardboardgarden/garden-api/internal/notify"
	"github.com/cardboardgarden/garden-api/internal/platform/logger"
	"github.com/cardboardgarden/garden-api/internal/service/account"
	"github.com/cardboardgarden/garden-api/internal/service/auth"
)

const password = "correct-horse"

type authEnv struct {
	router   http.Handler
	store    *mocks.MockAccountStore
	notifier *mocks.MockNotifier
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()

	_, log := logger.NewBufferLogger()
	env := &authEnv{
		store:    mocks.NewMockAccountStore(),
		notifier: &mocks.MockNotifier{},
	}
	engine, err := account.NewEngine(
		account.Config{VerificationWindow: 24 * time.Hour},
		env.store,
		auth.NewBcryptHasher(bcrypt.MinCost),
		&mocks.MockTokenSigner{},
		env.notifier,
		log,
	)
	require.NoError(t, err)

	h := api.NewAuthHandler(engine, log)
	mw := middleware.NewAuthMiddleware(engine)

	r := chi.NewRouter()
	r.Use(middleware.Trace(log))
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Get("/verify-email", h.VerifyEmail)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)
		r.Post("/resend-verification", h.ResendVerification)
		r.With(mw.Authenticate).Get("/me", h.Me)
	})
	env.router = r
	return env
}

func (e *authEnv) do(t *testing.T, method, target, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *authEnv) registerVerified(t *testing.T, username string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/register",
		`{"username":"`+username+`","email":"`+username+`@example.com","password":"`+password+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	msg, ok := e.notifier.Last()
	require.True(t, ok)
	rec = e.do(t, http.MethodGet, "/auth/verify-email?token="+msg.Token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthHandler_Register(t *testing.T) {
	t.Parallel()
	env := newAuthEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"`+password+`","firstName":"Alice"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, account.MsgRegistered, body["message"])
	assert.Equal(t, float64(1), body["userId"])

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"duplicate username", `{"username":"alice","email":"other@example.com","password":"` + password + `"}`, http.StatusConflict, account.MsgUsernameExists},
		{"duplicate email", `{"username":"bob","email":"ALICE@example.com","password":"` + password + `"}`, http.StatusConflict, account.MsgEmailExists},
		{"duplicate username with weak password", `{"username":"alice","email":"b@y.com","password":"pw2"}`, http.StatusConflict, account.MsgUsernameExists},
		{"short password", `{"username":"bob","email":"bob@example.com","password":"short"}`, http.StatusBadRequest, "Password must be between 8 and 72 bytes long"},
		{"missing email", `{"username":"bob","password":"` + password + `"}`, http.StatusBadRequest, "Invalid email: required field"},
		{"at in username", `{"username":"b@b","email":"bob@example.com","password":"` + password + `"}`, http.StatusBadRequest, "Username must be 3-50 characters with no spaces or '@'"},
		{"malformed json", `{"username":`, http.StatusBadRequest, "Invalid request format"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/auth/register", tc.body)
			assert.Equal(t, tc.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.message, body["message"])
		})
	}
	assert.Equal(t, 1, env.store.Count())
}

func TestAuthHandler_LoginFailureBodiesAreIdentical(t *testing.T) {
	t.Parallel()
	env := newAuthEnv(t)
	env.registerVerified(t, "alice")

	unknown := env.do(t, http.MethodPost, "/auth/login", `{"login":"nobody","password":"`+password+`"}`)
	wrong := env.do(t, http.MethodPost, "/auth/login", `{"login":"alice","password":"wrong-password"}`)

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, unknown.Body.Bytes(), wrong.Body.Bytes())
	assert.JSONEq(t, `{"success":false,"message":"Invalid credentials"}`, unknown.Body.String())
	assert.NotEqual(t, unknown.Header().Get("X-Trace-ID"), wrong.Header().Get("X-Trace-ID"))
}

func TestAuthHandler_LoginFlow(t *testing.T) {
	t.Parallel()
	env := newAuthEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"`+password+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/login", `{"login":"alice","password":"`+password+`"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, account.MsgEmailNotVerified, decode(t, rec)["message"])

	msg, ok := env.notifier.Last()
	require.True(t, ok)
	rec = env.do(t, http.MethodGet, "/auth/verify-email?token="+msg.Token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Email verified successfully"}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/auth/verify-email?token="+msg.Token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/login", `{"login":"alice@example.com","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var login api.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.True(t, login.Success)
	assert.Equal(t, "token-1", login.Token)
	assert.Equal(t, domain.Profile{ID: 1, Username: "alice", Email: "alice@example.com"}, login.User)

	rec = env.do(t, http.MethodGet, "/auth/me", "", "Authorization", "Bearer "+login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var me api.ProfileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, login.User, me.User)
}

func TestAuthHandler_LoginValidation(t *testing.T) {
	t.Parallel()
	env := newAuthEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/login", `{"login":"","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid login: required field", decode(t, rec)["message"])
}

func TestAuthHandler_ForgotPasswordAlwaysOK(t *testing.T) {
	t.Parallel()
	env := newAuthEnv(t)
	env.registerVerified(t, "alice")

	requests := []struct {
		name, target, body string
	}{
		{"known via query", "/auth/forgot-password?email=alice@example.com", ""},
		{"unknown via query", "/auth/forgot-password?email=nobody@example.com", ""},
		{"known via json", "/auth/forgot-password", `{"email":"alice@example.com"}`},
		{"missing email", "/auth/forgot-password", ""},
	}

	var first []byte
	for _, tc := range requests {
		rec := env.do(t, http.MethodPost, tc.target, tc.body)
		assert.Equal(t, http.StatusOK, rec.Code, tc.name)
		if first == nil {
			first = rec.Body.Bytes()
		}
		assert.Equal(t, first, rec.Body.Bytes(), tc.name)
	}

	resets := 0
	for _, m := range env.notifier.Messages() {
		if m.Kind == notify.KindPasswordReset {
			resets++
		}
	}
	assert.Equal(t, 2, resets)
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	t.Parallel()
	env := newAuthEnv(t)
	env.registerVerified(t, "alice")

	rec := env.do(t, http.MethodPost, "/auth/forgot-password", `{"email":"alice@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	msg, ok := env.notifier.Last()
	require.True(t, ok)
	require.Equal(t, notify.KindPasswordReset, msg.Kind)

	rec = env.do(t, http.MethodPost, "/auth/reset-password", `{"token":"`+msg.Token+`","password":"brand-new-pass"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, account.MsgPasswordReset, decode(t, rec)["message"])

	rec = env.do(t, http.MethodPost, "/auth/reset-password", `{"token":"`+msg.Token+`","password":"brand-new-pass"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/login", `{"login":"alice","password":"brand-new-pass"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandler_ResendVerification(t *testing.T) {
	t.Parallel()
	env := newAuthEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"`+password+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	pending := env.do(t, http.MethodPost, "/auth/resend-verification", `{"email":"alice@example.com"}`)
	unknown := env.do(t, http.MethodPost, "/auth/resend-verification?email=nobody@example.com", "")
	assert.Equal(t, http.StatusOK, pending.Code)
	assert.Equal(t, pending.Body.Bytes(), unknown.Body.Bytes())
	assert.Len(t, env.notifier.Messages(), 2)
}

func TestAuthHandler_InternalFailure(t *testing.T) {
	t.Parallel()
	env := newAuthEnv(t)
	env.store.GetByIdentifierFn = func(context.Context, string) (*domain.Account, error) {
		return nil, assert.AnError
	}

	rec := env.do(t, http.MethodPost, "/auth/login", `{"login":"alice","password":"`+password+`"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Login failed. Please try again."}`, rec.Body.String())
}
