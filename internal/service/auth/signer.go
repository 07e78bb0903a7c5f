package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cardboardgarden/garden-api/internal/domain"
	"github.com/cardboardgarden/garden-api/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the shortest accepted HMAC signing secret.
const MinSecretLength = 32

// TokenSigner issues and verifies stateless session tokens.
type TokenSigner interface {
	// Issue signs a session token for the account.
	Issue(ctx context.Context, account *domain.Account) (string, error)

	// Verify checks signature, structure and expiry. It fails closed: any
	// problem yields (nil, false).
	Verify(ctx context.Context, token string) (*Claims, bool)
}

// Claims is the verified content of a session token.
type Claims struct {
	AccountID int64
	Username  string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// SignerConfig is the immutable configuration of an HMAC signer.
type SignerConfig struct {
	Secret   string
	Lifetime time.Duration
}

// sessionClaims is the JWT payload. The subject carries the username.
type sessionClaims struct {
	AccountID int64  `json:"accountId"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// hmacSigner signs HS256 JWTs.
type hmacSigner struct {
	key      []byte
	lifetime time.Duration
	now      func() time.Time
}

var _ TokenSigner = (*hmacSigner)(nil)

// NewTokenSigner returns an HS256 TokenSigner.
func NewTokenSigner(cfg SignerConfig) (TokenSigner, error) {
	return newHMACSigner(cfg, time.Now)
}

// NewTokenSignerWithClock is NewTokenSigner with an injected clock, for tests
// and for callers that share a clock with the engine.
func NewTokenSignerWithClock(cfg SignerConfig, now func() time.Time) (TokenSigner, error) {
	return newHMACSigner(cfg, now)
}

func newHMACSigner(cfg SignerConfig, now func() time.Time) (*hmacSigner, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrSecretTooShort, MinSecretLength)
	}
	if cfg.Lifetime <= 0 {
		return nil, ErrInvalidLifetime
	}
	return &hmacSigner{key: []byte(cfg.Secret), lifetime: cfg.Lifetime, now: now}, nil
}

// Issue implements TokenSigner.
func (s *hmacSigner) Issue(ctx context.Context, account *domain.Account) (string, error) {
	now := s.now()
	claims := sessionClaims{
		AccountID: account.ID,
		Email:     account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign session token",
			"error", err,
			"account_id", account.ID)
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify implements TokenSigner.
func (s *hmacSigner) Verify(ctx context.Context, token string) (*Claims, bool) {
	claims, err := s.parse(token)
	if err != nil {
		logger.FromContext(ctx).Debug("session token rejected", "reason", err)
		return nil, false
	}
	return claims, true
}

// parse returns ErrExpiredToken or ErrInvalidToken on failure.
func (s *hmacSigner) parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(
		token,
		&sessionClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	c, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || c.AccountID <= 0 || c.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &Claims{
		AccountID: c.AccountID,
		Username:  c.Subject,
		Email:     c.Email,
		IssuedAt:  c.IssuedAt.Time,
		ExpiresAt: c.ExpiresAt.Time,
		ID:        c.ID,
	}, nil
}
