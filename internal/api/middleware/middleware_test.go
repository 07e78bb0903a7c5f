package middleware_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardboardgarden/garden-api/internal/api/middleware"
	"github.com/cardboardgarden/garden-api/internal/api/shared"
	"github.com/cardboardgarden/garden-api/internal/domain"
	"github.com/cardboardgarden/garden-api/internal/platform/logger"
	"github.com/cardboardgarden/garden-api/internal/service/account"
)

type stubAuthenticator map[string]account.Result

func (s stubAuthenticator) Authenticate(_ context.Context, token string) account.Result {
	if res, ok := s[token]; ok {
		return res
	}
	return account.Result{Kind: account.KindUnauthorized, Message: account.MsgUnauthorized}
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	profile := &domain.Profile{ID: 3, Username: "alice", Email: "alice@example.com"}
	authn := stubAuthenticator{
		"good":     {Message: account.MsgAuthenticated, AccountID: 3, Profile: profile},
		"inactive": {Kind: account.KindAccountDeactivated, Message: account.MsgAccountDeactivated},
		"pending":  {Kind: account.KindEmailNotVerified, Message: account.MsgEmailNotVerified},
	}

	var seen *domain.Profile
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = shared.GetProfile(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := middleware.NewAuthMiddleware(authn).Authenticate(next)

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing header", "", http.StatusUnauthorized, "Authorization header required"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Invalid authorization format"},
		{"no token", "Bearer ", http.StatusUnauthorized, "Invalid authorization format"},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, account.MsgUnauthorized},
		{"deactivated", "Bearer inactive", http.StatusForbidden, account.MsgAccountDeactivated},
		{"unverified", "Bearer pending", http.StatusForbidden, account.MsgEmailNotVerified},
		{"valid", "Bearer good", http.StatusNoContent, ""},
		{"lowercase scheme", "bearer good", http.StatusNoContent, ""},
	}

	for _, tc := range tests {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, tc.status, rec.Code, tc.name)
		if tc.message == "" {
			assert.Equal(t, profile, seen, tc.name)
			continue
		}
		assert.Nil(t, seen, tc.name)
		var body shared.Envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), tc.name)
		assert.Equal(t, shared.Envelope{Success: false, Message: tc.message}, body, tc.name)
	}
}

func TestTrace(t *testing.T) {
	t.Parallel()

	buf, log := logger.NewBufferLogger()
	var ctxTrace string
	handler := middleware.Trace(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxTrace = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	header := rec.Header().Get(shared.TraceIDHeader)
	assert.Len(t, header, shared.TraceIDLength*2)
	assert.Equal(t, header, ctxTrace)
	assert.True(t, buf.HasEntry(slog.LevelInfo, "inside handler"))
	assert.Contains(t, buf.String(), `"trace_id":"`+header+`"`)
}
