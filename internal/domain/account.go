package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	maxEmailLength    = 100
	maxNameLength     = 50
)

// Account is a registered user. It is a plain record: login checks go
// through the Credential view, state transitions through the helper methods
// below, and persistence through store.AccountStore.
type Account struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string

	Active        bool
	EmailVerified bool

	// VerificationToken and VerificationExpires are both nil when no
	// email verification is pending.
	VerificationToken   *string
	VerificationExpires *time.Time

	// ResetToken and ResetExpires are both nil when no password reset is
	// pending.
	ResetToken   *string
	ResetExpires *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	LastLogin *time.Time
}

// Credential is the narrow view of an account the login path needs.
type Credential interface {
	Identifier() string
	CredentialDigest() string
	IsUsable() bool
}

var _ Credential = (*Account)(nil)

// Profile is the public projection of an account. It never carries the
// password hash or pending tokens.
type Profile struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// NormalizeEmail trims and lower-cases an email address. Emails are stored
// in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername trims a username. Casing is preserved for display;
// uniqueness and lookups compare case-insensitively.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// NewAccount builds a freshly registered account: active, unverified, with no
// pending tokens. passwordHash must already be a credential digest.
func NewAccount(username, email, passwordHash, firstName, lastName string, now time.Time) (*Account, error) {
	now = now.UTC()
	a := &Account{
		Username:     NormalizeUsername(username),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks field formats and the token pairing invariant.
func (a *Account) Validate() error {
	if !validUsername(a.Username) {
		return ErrInvalidUsername
	}
	if len(a.Email) > maxEmailLength || !validateEmailFormat(a.Email) {
		return ErrInvalidEmail
	}
	if a.PasswordHash == "" {
		return ErrEmptyPasswordHash
	}
	if utf8.RuneCountInString(a.FirstName) > maxNameLength ||
		utf8.RuneCountInString(a.LastName) > maxNameLength {
		return ErrNameTooLong
	}
	if (a.VerificationToken == nil) != (a.VerificationExpires == nil) ||
		(a.ResetToken == nil) != (a.ResetExpires == nil) {
		return ErrTokenPairIncomplete
	}
	return nil
}

// Identifier implements Credential.
func (a *Account) Identifier() string { return a.Username }

// CredentialDigest implements Credential.
func (a *Account) CredentialDigest() string { return a.PasswordHash }

// IsUsable reports whether the account may log in: it has to be active and
// have a verified email.
func (a *Account) IsUsable() bool { return a.Active && a.EmailVerified }

// Profile returns the public projection of the account.
func (a *Account) Profile() Profile {
	return Profile{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
	}
}

// SetVerificationToken records a pending email verification, replacing any
// earlier one.
func (a *Account) SetVerificationToken(token string, expires, now time.Time) {
	expires = expires.UTC()
	a.VerificationToken = &token
	a.VerificationExpires = &expires
	a.UpdatedAt = now.UTC()
}

// VerificationExpired reports whether the pending verification token has
// expired at now. An account without a pending token is never expired.
func (a *Account) VerificationExpired(now time.Time) bool {
	return a.VerificationExpires != nil && a.VerificationExpires.Before(now)
}

// MarkEmailVerified flips the verified flag and consumes the pending token.
func (a *Account) MarkEmailVerified(now time.Time) {
	a.EmailVerified = true
	a.VerificationToken = nil
	a.VerificationExpires = nil
	a.UpdatedAt = now.UTC()
}

// SetResetToken records a pending password reset, replacing any earlier one.
func (a *Account) SetResetToken(token string, expires, now time.Time) {
	expires = expires.UTC()
	a.ResetToken = &token
	a.ResetExpires = &expires
	a.UpdatedAt = now.UTC()
}

// ResetExpired reports whether the pending reset token has expired at now.
func (a *Account) ResetExpired(now time.Time) bool {
	return a.ResetExpires != nil && a.ResetExpires.Before(now)
}

// ChangePassword stores a new digest and consumes the pending reset token.
func (a *Account) ChangePassword(passwordHash string, now time.Time) {
	a.PasswordHash = passwordHash
	a.ResetToken = nil
	a.ResetExpires = nil
	a.UpdatedAt = now.UTC()
}

// RecordLogin stamps the last successful login.
func (a *Account) RecordLogin(now time.Time) {
	now = now.UTC()
	a.LastLogin = &now
	a.UpdatedAt = now
}

func validUsername(username string) bool {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLength || n > maxUsernameLength {
		return false
	}
	for _, r := range username {
		if unicode.IsSpace(r) || r == '@' {
			return false
		}
	}
	return true
}

// validateEmailFormat performs a structural check: one local part, one '@',
// and a dotted domain. Deliverability is proven by the verification email.
func validateEmailFormat(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	domainPart := email[at+1:]
	dot := strings.LastIndex(domainPart, ".")
	return dot > 0 && dot < len(domainPart)-1
}
