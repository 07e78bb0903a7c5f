package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cardboardgarden/garden-api/internal/domain"
	"github.com/cardboardgarden/garden-api/internal/platform/logger"
	"github.com/cardboardgarden/garden-api/internal/store"
)

const accountColumns = `
	id, username, email, password_hash, first_name, last_name,
	is_active, email_verified,
	email_verification_token, email_verification_expires,
	password_reset_token, password_reset_expires,
	created_at, updated_at, last_login`

// PostgresAccountStore implements store.AccountStore on the accounts table.
// Uniqueness is enforced by the LOWER(username) and LOWER(email) unique
// indexes; their violations come back as store.ErrUsernameExists and
// store.ErrEmailExists.
type PostgresAccountStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.AccountStore = (*PostgresAccountStore)(nil)

// NewPostgresAccountStore creates an account store on a connection pool or
// transaction. If logger is nil, slog.Default() is used.
func NewPostgresAccountStore(db store.DBTX, logger *slog.Logger) *PostgresAccountStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAccountStore{
		db:     db,
		logger: logger.With(slog.String("component", "account_store")),
	}
}

// WithTx implements store.AccountStore.
func (s *PostgresAccountStore) WithTx(tx *sql.Tx) store.AccountStore {
	return &PostgresAccountStore{db: tx, logger: s.logger}
}

// Create implements store.AccountStore.
func (s *PostgresAccountStore) Create(ctx context.Context, account *domain.Account) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := account.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO accounts (
			username, email, password_hash, first_name, last_name,
			is_active, email_verified,
			email_verification_token, email_verification_expires,
			password_reset_token, password_reset_expires,
			created_at, updated_at, last_login
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		account.Username,
		account.Email,
		account.PasswordHash,
		nullString(account.FirstName),
		nullString(account.LastName),
		account.Active,
		account.EmailVerified,
		account.VerificationToken,
		account.VerificationExpires,
		account.ResetToken,
		account.ResetExpires,
		account.CreatedAt,
		account.UpdatedAt,
		account.LastLogin,
	).Scan(&account.ID)
	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			log.Debug("account create rejected by unique index", slog.String("error", err.Error()))
		} else {
			log.Error("failed to create account", slog.String("error", err.Error()))
		}
		return mapped
	}

	log.Info("account created", slog.Int64("account_id", account.ID))
	return nil
}

// GetByID implements store.AccountStore.
func (s *PostgresAccountStore) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	return s.getOne(ctx, "id", `WHERE id = $1`, id)
}

// GetByUsername implements store.AccountStore.
func (s *PostgresAccountStore) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return s.getOne(ctx, "username", `WHERE LOWER(username) = LOWER($1)`, domain.NormalizeUsername(username))
}

// GetByEmail implements store.AccountStore.
func (s *PostgresAccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.getOne(ctx, "email", `WHERE LOWER(email) = $1`, domain.NormalizeEmail(email))
}

// GetByIdentifier implements store.AccountStore. A username match wins over
// an email match; usernames cannot contain '@', so both matching at once
// would need two different accounts.
func (s *PostgresAccountStore) GetByIdentifier(ctx context.Context, identifier string) (*domain.Account, error) {
	return s.getOne(ctx, "identifier", `
		WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($1)
		ORDER BY (LOWER(username) = LOWER($1)) DESC
		LIMIT 1`, domain.NormalizeUsername(identifier))
}

// GetByVerificationToken implements store.AccountStore.
func (s *PostgresAccountStore) GetByVerificationToken(ctx context.Context, token string) (*domain.Account, error) {
	return s.getOne(ctx, "verification_token", `WHERE email_verification_token = $1`, token)
}

// GetByResetToken implements store.AccountStore.
func (s *PostgresAccountStore) GetByResetToken(ctx context.Context, token string) (*domain.Account, error) {
	return s.getOne(ctx, "reset_token", `WHERE password_reset_token = $1`, token)
}

func (s *PostgresAccountStore) getOne(ctx context.Context, by, where string, arg any) (*domain.Account, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts `+where, arg)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("account not found", slog.String("lookup", by))
			return nil, store.ErrAccountNotFound
		}
		log.Error("failed to load account", slog.String("lookup", by), slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return account, nil
}

// Update implements store.AccountStore.
func (s *PostgresAccountStore) Update(ctx context.Context, account *domain.Account) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := account.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE accounts SET
			username = $2,
			email = $3,
			password_hash = $4,
			first_name = $5,
			last_name = $6,
			is_active = $7,
			email_verified = $8,
			email_verification_token = $9,
			email_verification_expires = $10,
			password_reset_token = $11,
			password_reset_expires = $12,
			updated_at = $13,
			last_login = $14
		WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		nullString(account.FirstName),
		nullString(account.LastName),
		account.Active,
		account.EmailVerified,
		account.VerificationToken,
		account.VerificationExpires,
		account.ResetToken,
		account.ResetExpires,
		account.UpdatedAt,
		account.LastLogin,
	)
	if err != nil {
		log.Error("failed to update account",
			slog.Int64("account_id", account.ID),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrAccountNotFound)
}

// ClearExpiredTokens implements store.AccountStore. On a pool both sweeps
// share one transaction; on a store already bound to a transaction they run
// inside it.
func (s *PostgresAccountStore) ClearExpiredTokens(ctx context.Context, now time.Time) (store.TokenSweep, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	beginner, ok := s.db.(store.TxBeginner)
	if !ok {
		return clearExpiredTokens(ctx, s.db, now)
	}

	var sweep store.TokenSweep
	err := store.RunInTransaction(ctx, beginner, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		sweep, err = clearExpiredTokens(ctx, tx, now)
		return err
	})
	if err != nil {
		log.Error("expired token sweep failed", slog.String("error", err.Error()))
		return store.TokenSweep{}, err
	}
	return sweep, nil
}

func clearExpiredTokens(ctx context.Context, db store.DBTX, now time.Time) (store.TokenSweep, error) {
	var sweep store.TokenSweep

	result, err := db.ExecContext(ctx, `
		UPDATE accounts
		SET email_verification_token = NULL, email_verification_expires = NULL, updated_at = $1
		WHERE email_verification_expires < $1 AND email_verified = FALSE`, now)
	if err != nil {
		return sweep, fmt.Errorf("failed to clear expired verification tokens: %w", err)
	}
	if sweep.VerificationTokens, err = result.RowsAffected(); err != nil {
		return sweep, err
	}

	result, err = db.ExecContext(ctx, `
		UPDATE accounts
		SET password_reset_token = NULL, password_reset_expires = NULL, updated_at = $1
		WHERE password_reset_expires < $1`, now)
	if err != nil {
		return sweep, fmt.Errorf("failed to clear expired reset tokens: %w", err)
	}
	if sweep.ResetTokens, err = result.RowsAffected(); err != nil {
		return sweep, err
	}
	return sweep, nil
}

func scanAccount(row *sql.Row) (*domain.Account, error) {
	var (
		a                   domain.Account
		firstName, lastName sql.NullString
		verifyToken         sql.NullString
		verifyExpires       sql.NullTime
		resetToken          sql.NullString
		resetExpires        sql.NullTime
		lastLogin           sql.NullTime
	)
	err := row.Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &firstName, &lastName,
		&a.Active, &a.EmailVerified,
		&verifyToken, &verifyExpires,
		&resetToken, &resetExpires,
		&a.CreatedAt, &a.UpdatedAt, &lastLogin,
	)
	if err != nil {
		return nil, err
	}
	a.FirstName = firstName.String
	a.LastName = lastName.String
	a.VerificationToken = stringPtr(verifyToken)
	a.VerificationExpires = timePtr(verifyExpires)
	a.ResetToken = stringPtr(resetToken)
	a.ResetExpires = timePtr(resetExpires)
	a.LastLogin = timePtr(lastLogin)
	return &a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
