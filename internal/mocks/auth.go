package mocks

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardboardgarden/garden-api/internal/domain"
	"github.com/cardboardgarden/garden-api/internal/service/auth"
)

// MockTokenSigner implements auth.TokenSigner. Without overrides it issues
// "token-<accountID>" and verifies only tokens of that shape for accounts
// it has issued to.
type MockTokenSigner struct {
	IssueFn  func(ctx context.Context, account *domain.Account) (string, error)
	VerifyFn func(ctx context.Context, token string) (*auth.Claims, bool)
}

var _ auth.TokenSigner = (*MockTokenSigner)(nil)

// Issue implements auth.TokenSigner.
func (m *MockTokenSigner) Issue(ctx context.Context, account *domain.Account) (string, error) {
	if m.IssueFn != nil {
		return m.IssueFn(ctx, account)
	}
	return fmt.Sprintf("token-%d", account.ID), nil
}

// Verify implements auth.TokenSigner.
func (m *MockTokenSigner) Verify(ctx context.Context, token string) (*auth.Claims, bool) {
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, token)
	}
	var id int64
	if _, err := fmt.Sscanf(token, "token-%d", &id); err != nil || id <= 0 {
		return nil, false
	}
	return &auth.Claims{AccountID: id}, true
}

// ErrMockHash is returned by MockCredentialHasher when FailHash is set.
var ErrMockHash = errors.New("mock hash failure")

// MockCredentialHasher implements auth.CredentialHasher with a reversible
// "hashed:" prefix so tests stay fast.
type MockCredentialHasher struct {
	FailHash bool
}

var _ auth.CredentialHasher = (*MockCredentialHasher)(nil)

// Hash implements auth.CredentialHasher.
func (m *MockCredentialHasher) Hash(plaintext string) (string, error) {
	if m.FailHash {
		return "", ErrMockHash
	}
	return "hashed:" + plaintext, nil
}

// Verify implements auth.CredentialHasher.
func (m *MockCredentialHasher) Verify(plaintext, digest string) bool {
	return digest == "hashed:"+plaintext
}
