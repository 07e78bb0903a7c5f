package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cardboardgarden/garden-api/internal/domain"
)

// TokenSweep reports how many pending tokens a cleanup pass cleared.
type TokenSweep struct {
	VerificationTokens int64
	ResetTokens        int64
}

// AccountStore is the single mutation point for account state.
// Username and email comparisons are case-insensitive in every method.
type AccountStore interface {
	// Create persists a new account and sets its ID.
	// Returns ErrUsernameExists or ErrEmailExists when a unique key is taken;
	// implementations must rely on their own uniqueness enforcement, not on
	// a prior lookup.
	Create(ctx context.Context, account *domain.Account) error

	// GetByID returns ErrAccountNotFound when no account has the ID.
	GetByID(ctx context.Context, id int64) (*domain.Account, error)

	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)

	// GetByIdentifier matches identifier against username or email.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.Account, error)

	GetByVerificationToken(ctx context.Context, token string) (*domain.Account, error)
	GetByResetToken(ctx context.Context, token string) (*domain.Account, error)

	// Update writes every mutable field of the account.
	// Returns ErrAccountNotFound if the account no longer exists.
	Update(ctx context.Context, account *domain.Account) error

	// ClearExpiredTokens clears verification tokens that expired before now on
	// unverified accounts, and reset tokens that expired before now on any
	// account. Running it again with the same now clears nothing.
	ClearExpiredTokens(ctx context.Context, now time.Time) (TokenSweep, error)

	// WithTx returns a store bound to the transaction.
	WithTx(tx *sql.Tx) AccountStore
}
