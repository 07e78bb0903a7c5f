package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cardboardgarden/garden-api/internal/domain"
	"github.com/cardboardgarden/garden-api/internal/notify"
	"github.com/cardboardgarden/garden-api/internal/platform/logger"
	"github.com/cardboardgarden/garden-api/internal/redact"
	"github.com/cardboardgarden/garden-api/internal/service/auth"
	"github.com/cardboardgarden/garden-api/internal/store"
)

// ResetTokenLifetime is how long a password reset token stays valid.
const ResetTokenLifetime = time.Hour

// Password length bounds. bcrypt ignores input past 72 bytes.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// dummyPassword seeds the digest compared against when a login names an
// unknown account, so that path costs the same as a wrong password.
const dummyPassword = "garden-timing-equalizer"

// Config is the immutable policy of an Engine.
type Config struct {
	// VerificationWindow is the lifetime of an email verification token.
	VerificationWindow time.Duration
}

// Registration is a request to create an account.
type Registration struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Engine runs the account lifecycle.
type Engine struct {
	cfg      Config
	accounts store.AccountStore
	hasher   auth.CredentialHasher
	signer   auth.TokenSigner
	notifier notify.Notifier
	logger   *slog.Logger

	now         func() time.Time
	newToken    TokenSource
	dummyDigest string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTokenSource replaces SecureToken.
func WithTokenSource(src TokenSource) Option {
	return func(e *Engine) { e.newToken = src }
}

// NewEngine creates an Engine. It hashes a dummy password up front, which
// takes one bcrypt round at the configured cost.
func NewEngine(
	cfg Config,
	accounts store.AccountStore,
	hasher auth.CredentialHasher,
	signer auth.TokenSigner,
	notifier notify.Notifier,
	log *slog.Logger,
	opts ...Option,
) (*Engine, error) {
	if accounts == nil || hasher == nil || signer == nil || notifier == nil {
		return nil, errors.New("account engine: store, hasher, signer and notifier are required")
	}
	if cfg.VerificationWindow <= 0 {
		return nil, fmt.Errorf("account engine: verification window must be positive, got %s", cfg.VerificationWindow)
	}
	if log == nil {
		log = slog.Default()
	}

	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("account engine: hash dummy password: %w", err)
	}

	e := &Engine{
		cfg:         cfg,
		accounts:    accounts,
		hasher:      hasher,
		signer:      signer,
		notifier:    notifier,
		logger:      log.With("component", "account_engine"),
		now:         time.Now,
		newToken:    SecureToken,
		dummyDigest: dummy,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// log prefers the request-scoped logger, which carries the trace id.
func (e *Engine) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, e.logger)
}

// Register creates an unverified account and queues its verification email.
func (e *Engine) Register(ctx context.Context, reg Registration) Result {
	log := e.log(ctx)
	now := e.now()

	if _, err := e.accounts.GetByUsername(ctx, reg.Username); err == nil {
		return failure(KindDuplicateUsername, MsgUsernameExists)
	} else if !store.IsNotFoundError(err) {
		log.Error("username lookup failed during registration", "error", redact.Error(err))
		return failure(KindRegistrationFailed, MsgRegistrationFailed)
	}

	if _, err := e.accounts.GetByEmail(ctx, reg.Email); err == nil {
		return failure(KindDuplicateEmail, MsgEmailExists)
	} else if !store.IsNotFoundError(err) {
		log.Error("email lookup failed during registration", "error", redact.Error(err))
		return failure(KindRegistrationFailed, MsgRegistrationFailed)
	}

	if msg, ok := checkPassword(reg.Password); !ok {
		return failure(KindInvalidInput, msg)
	}

	digest, err := e.hasher.Hash(reg.Password)
	if err != nil {
		log.Error("password hashing failed", "error", redact.Error(err))
		return failure(KindRegistrationFailed, MsgRegistrationFailed)
	}

	acct, err := domain.NewAccount(reg.Username, reg.Email, digest, reg.FirstName, reg.LastName, now)
	if err != nil {
		return failure(KindInvalidInput, validationMessage(err))
	}

	token, err := e.newToken()
	if err != nil {
		log.Error("verification token generation failed", "error", err)
		return failure(KindRegistrationFailed, MsgRegistrationFailed)
	}
	acct.SetVerificationToken(token, now.Add(e.cfg.VerificationWindow), now)

	if err := e.accounts.Create(ctx, acct); err != nil {
		switch {
		case errors.Is(err, store.ErrUsernameExists):
			return failure(KindDuplicateUsername, MsgUsernameExists)
		case errors.Is(err, store.ErrEmailExists):
			return failure(KindDuplicateEmail, MsgEmailExists)
		}
		log.Error("account creation failed", "error", redact.Error(err))
		return failure(KindRegistrationFailed, MsgRegistrationFailed)
	}

	log.Info("account registered", "account_id", acct.ID)

	if err := e.notifier.Notify(ctx, notify.Message{
		Kind:      notify.KindVerification,
		To:        acct.Email,
		Name:      acct.Username,
		Token:     token,
		ExpiresIn: e.cfg.VerificationWindow,
	}); err != nil {
		log.Warn("verification email not queued",
			"kind", KindNotificationFailed,
			"account_id", acct.ID,
			"error", redact.Error(err))
	}

	return Result{Message: MsgRegistered, AccountID: acct.ID}
}

// Login checks credentials and issues a session token. Unknown identifiers
// and wrong passwords produce identical results.
func (e *Engine) Login(ctx context.Context, identifier, password string) Result {
	log := e.log(ctx)

	acct, err := e.accounts.GetByIdentifier(ctx, identifier)
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("account lookup failed during login", "error", redact.Error(err))
			return failure(KindLoginFailed, MsgLoginFailed)
		}
		e.hasher.Verify(password, e.dummyDigest)
		return failure(KindInvalidCredentials, MsgInvalidCredentials)
	}

	var cred domain.Credential = acct
	if !e.hasher.Verify(password, cred.CredentialDigest()) {
		return failure(KindInvalidCredentials, MsgInvalidCredentials)
	}
	if !acct.Active {
		return failure(KindAccountDeactivated, MsgAccountDeactivated)
	}
	if !acct.EmailVerified {
		return failure(KindEmailNotVerified, MsgEmailNotVerified)
	}

	acct.RecordLogin(e.now())
	if err := e.accounts.Update(ctx, acct); err != nil {
		log.Error("recording login failed", "account_id", acct.ID, "error", redact.Error(err))
		return failure(KindLoginFailed, MsgLoginFailed)
	}

	token, err := e.signer.Issue(ctx, acct)
	if err != nil {
		log.Error("session token issue failed", "account_id", acct.ID, "error", redact.Error(err))
		return failure(KindLoginFailed, MsgLoginFailed)
	}

	log.Info("login succeeded", "account_id", acct.ID)
	profile := acct.Profile()
	return Result{
		Message:   MsgLoginSucceeded,
		AccountID: acct.ID,
		Token:     token,
		Profile:   &profile,
	}
}

// VerifyEmail consumes a verification token. An expired token is left in
// place for the cleanup sweep.
func (e *Engine) VerifyEmail(ctx context.Context, token string) Result {
	log := e.log(ctx)
	now := e.now()

	if token == "" {
		return failure(KindInvalidToken, MsgInvalidVerification)
	}

	acct, err := e.accounts.GetByVerificationToken(ctx, token)
	if err != nil {
		if store.IsNotFoundError(err) {
			return failure(KindInvalidToken, MsgInvalidVerification)
		}
		log.Error("verification token lookup failed", "error", redact.Error(err))
		return failure(KindVerificationFailed, MsgVerificationFailed)
	}

	if acct.VerificationExpired(now) {
		return failure(KindTokenExpired, MsgVerificationExpired)
	}

	acct.MarkEmailVerified(now)
	if err := e.accounts.Update(ctx, acct); err != nil {
		log.Error("marking email verified failed", "account_id", acct.ID, "error", redact.Error(err))
		return failure(KindVerificationFailed, MsgVerificationFailed)
	}

	log.Info("email verified", "account_id", acct.ID)
	return Result{Message: MsgEmailVerified, AccountID: acct.ID}
}

// RequestPasswordReset mints a reset token for a known email and queues the
// reset email. The result never reveals whether the email is registered.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) Result {
	log := e.log(ctx)
	now := e.now()

	acct, err := e.accounts.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("password reset requested for unknown email")
		} else {
			log.Error("account lookup failed during reset request", "error", redact.Error(err))
		}
		return success(MsgResetRequested)
	}

	token, err := e.newToken()
	if err != nil {
		log.Error("reset token generation failed", "account_id", acct.ID, "error", err)
		return success(MsgResetRequested)
	}

	acct.SetResetToken(token, now.Add(ResetTokenLifetime), now)
	if err := e.accounts.Update(ctx, acct); err != nil {
		log.Error("storing reset token failed", "account_id", acct.ID, "error", redact.Error(err))
		return success(MsgResetRequested)
	}

	if err := e.notifier.Notify(ctx, notify.Message{
		Kind:      notify.KindPasswordReset,
		To:        acct.Email,
		Name:      acct.Username,
		Token:     token,
		ExpiresIn: ResetTokenLifetime,
	}); err != nil {
		log.Error("password reset email not queued",
			"kind", KindNotificationFailed,
			"account_id", acct.ID,
			"error", redact.Error(err))
	}

	log.Info("password reset requested", "account_id", acct.ID)
	return success(MsgResetRequested)
}

// ResetPassword consumes a reset token and replaces the password.
func (e *Engine) ResetPassword(ctx context.Context, token, newPassword string) Result {
	log := e.log(ctx)
	now := e.now()

	if msg, ok := checkPassword(newPassword); !ok {
		return failure(KindInvalidInput, msg)
	}
	if token == "" {
		return failure(KindInvalidToken, MsgInvalidReset)
	}

	acct, err := e.accounts.GetByResetToken(ctx, token)
	if err != nil {
		if store.IsNotFoundError(err) {
			return failure(KindInvalidToken, MsgInvalidReset)
		}
		log.Error("reset token lookup failed", "error", redact.Error(err))
		return failure(KindResetFailed, MsgResetFailed)
	}

	if acct.ResetExpired(now) {
		return failure(KindTokenExpired, MsgResetExpired)
	}

	digest, err := e.hasher.Hash(newPassword)
	if err != nil {
		log.Error("password hashing failed", "account_id", acct.ID, "error", redact.Error(err))
		return failure(KindResetFailed, MsgResetFailed)
	}

	acct.ChangePassword(digest, now)
	if err := e.accounts.Update(ctx, acct); err != nil {
		log.Error("storing new password failed", "account_id", acct.ID, "error", redact.Error(err))
		return failure(KindResetFailed, MsgResetFailed)
	}

	log.Info("password reset completed", "account_id", acct.ID)
	return Result{Message: MsgPasswordReset, AccountID: acct.ID}
}

// ResendVerification mints a fresh verification token for an active,
// unverified account. Like RequestPasswordReset, its result is the same
// whatever the account's state.
func (e *Engine) ResendVerification(ctx context.Context, email string) Result {
	log := e.log(ctx)
	now := e.now()

	acct, err := e.accounts.GetByEmail(ctx, email)
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("account lookup failed during verification resend", "error", redact.Error(err))
		}
		return success(MsgResendRequested)
	}
	if acct.EmailVerified || !acct.Active {
		log.Debug("verification resend skipped", "account_id", acct.ID)
		return success(MsgResendRequested)
	}

	token, err := e.newToken()
	if err != nil {
		log.Error("verification token generation failed", "account_id", acct.ID, "error", err)
		return success(MsgResendRequested)
	}

	acct.SetVerificationToken(token, now.Add(e.cfg.VerificationWindow), now)
	if err := e.accounts.Update(ctx, acct); err != nil {
		log.Error("storing verification token failed", "account_id", acct.ID, "error", redact.Error(err))
		return success(MsgResendRequested)
	}

	if err := e.notifier.Notify(ctx, notify.Message{
		Kind:      notify.KindVerification,
		To:        acct.Email,
		Name:      acct.Username,
		Token:     token,
		ExpiresIn: e.cfg.VerificationWindow,
	}); err != nil {
		log.Error("verification email not queued",
			"kind", KindNotificationFailed,
			"account_id", acct.ID,
			"error", redact.Error(err))
	}

	return success(MsgResendRequested)
}

// Authenticate resolves a session token to a usable account.
func (e *Engine) Authenticate(ctx context.Context, token string) Result {
	log := e.log(ctx)

	claims, ok := e.signer.Verify(ctx, token)
	if !ok {
		return failure(KindUnauthorized, MsgUnauthorized)
	}

	acct, err := e.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("account lookup failed during authentication",
				"account_id", claims.AccountID,
				"error", redact.Error(err))
		}
		return failure(KindUnauthorized, MsgUnauthorized)
	}

	if !acct.Active {
		return failure(KindAccountDeactivated, MsgAccountDeactivated)
	}
	if !acct.EmailVerified {
		return failure(KindEmailNotVerified, MsgEmailNotVerified)
	}

	profile := acct.Profile()
	return Result{Message: MsgAuthenticated, AccountID: acct.ID, Profile: &profile}
}

// CleanupExpiredTokens clears expired verification and reset tokens.
// It is safe to run repeatedly and alongside request traffic.
func (e *Engine) CleanupExpiredTokens(ctx context.Context) (store.TokenSweep, error) {
	sweep, err := e.accounts.ClearExpiredTokens(ctx, e.now().UTC())
	if err != nil {
		return store.TokenSweep{}, fmt.Errorf("clear expired tokens: %w", err)
	}

	if sweep.VerificationTokens > 0 || sweep.ResetTokens > 0 {
		e.logger.Info("expired tokens cleared",
			"verification_tokens", sweep.VerificationTokens,
			"reset_tokens", sweep.ResetTokens)
	} else {
		e.logger.Debug("no expired tokens to clear")
	}
	return sweep, nil
}

// checkPassword measures bytes, matching bcrypt's 72-byte input limit.
func checkPassword(password string) (string, bool) {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return fmt.Sprintf("Password must be between %d and %d bytes long", MinPasswordLength, MaxPasswordLength), false
	}
	return "", true
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidUsername):
		return "Username must be 3-50 characters with no spaces or '@'"
	case errors.Is(err, domain.ErrInvalidEmail):
		return "Invalid email address"
	case errors.Is(err, domain.ErrNameTooLong):
		return "First and last name must be at most 50 characters"
	default:
		return "Invalid registration details"
	}
}
