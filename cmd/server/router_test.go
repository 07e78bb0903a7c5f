package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardboardgarden/garden-api/internal/api"
	"github.com/cardboardgarden/garden-api/internal/api/shared"
	"github.com/cardboardgarden/garden-api/internal/config"
	"github.com/cardboardgarden/garden-api/internal/mocks"
	"github.com/cardboardgarden/garden-api/internal/platform/logger"
	"github.com/cardboardgarden/garden-api/internal/task"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "debug"},
		Auth: config.AuthConfig{
			JWTSecret:               "router-test-secret-that-is-long-enough",
			TokenLifetimeMinutes:    60,
			VerificationWindowHours: 24,
			BcryptCost:              4,
		},
		Mail: config.MailConfig{
			Provider:    "log",
			FromAddress: "noreply@cardboardgarden.test",
			Endpoint:    "https://api.resend.com",
			LinkBaseURL: "http://localhost:3000",
		},
		Task: config.TaskConfig{WorkerCount: 1, QueueSize: 10, CleanupIntervalMinutes: 60},
	}
}

func newTestApp(t *testing.T) (*application, *mocks.MockAccountStore) {
	t.Helper()

	_, log := logger.NewBufferLogger()
	accounts := mocks.NewMockAccountStore()
	runner := task.NewRunner(task.RunnerConfig{WorkerCount: 1, QueueSize: 10}, log)

	app, err := buildApplication(testConfig(), log, accounts, &mocks.MockCardStore{}, runner)
	require.NoError(t, err)
	t.Cleanup(app.cleanup)
	return app, accounts
}

func do(t *testing.T, h http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterAccountLifecycle(t *testing.T) {
	app, accounts := newTestApp(t)
	router := app.setupRouter()

	rec := do(t, router, http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"s3cret-pass"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(shared.TraceIDHeader))

	rec = do(t, router, http.MethodPost, "/api/auth/login",
		`{"login":"alice","password":"s3cret-pass"}`, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	stored, err := accounts.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.VerificationToken)

	rec = do(t, router, http.MethodGet, "/api/auth/verify-email?token="+*stored.VerificationToken, "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/api/auth/login",
		`{"login":"ALICE@example.com","password":"s3cret-pass"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login api.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "alice", login.User.Username)

	rec = do(t, router, http.MethodGet, "/api/auth/me", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var me api.ProfileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "alice@example.com", me.User.Email)
}

func TestRouterProtectedRouteRequiresToken(t *testing.T) {
	app, _ := newTestApp(t)
	router := app.setupRouter()

	assert.Equal(t, http.StatusUnauthorized, do(t, router, http.MethodGet, "/api/auth/me", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, router, http.MethodGet, "/api/auth/me", "", "garbage").Code)
}

func TestRouterForgotPasswordIsUniform(t *testing.T) {
	app, _ := newTestApp(t)
	router := app.setupRouter()

	rec := do(t, router, http.MethodPost, "/api/auth/forgot-password", `{"email":"nobody@example.com"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/auth/resend-verification?email=nobody@example.com", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterPublicRoutes(t *testing.T) {
	app, _ := newTestApp(t)
	router := app.setupRouter()

	rec := do(t, router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/cards?page=0&size=5", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/cards/42", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuildApplicationRejectsShortSecret(t *testing.T) {
	_, log := logger.NewBufferLogger()
	cfg := testConfig()
	cfg.Auth.JWTSecret = "short"
	runner := task.NewRunner(task.RunnerConfig{WorkerCount: 1, QueueSize: 1}, log)

	_, err := buildApplication(cfg, log, mocks.NewMockAccountStore(), &mocks.MockCardStore{}, runner)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token signer")
}
