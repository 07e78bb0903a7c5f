package account

import "github.com/cardboardgarden/garden-api/internal/domain"

// ErrorKind classifies a failed operation. The zero value means success.
type ErrorKind string

const (
	KindNone               ErrorKind = ""
	KindDuplicateUsername  ErrorKind = "duplicate_username"
	KindDuplicateEmail     ErrorKind = "duplicate_email"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindAccountDeactivated ErrorKind = "account_deactivated"
	KindEmailNotVerified   ErrorKind = "email_not_verified"
	KindInvalidToken       ErrorKind = "invalid_token"
	KindTokenExpired       ErrorKind = "token_expired"
	KindRegistrationFailed ErrorKind = "registration_failed"
	KindLoginFailed        ErrorKind = "login_failed"
	KindVerificationFailed ErrorKind = "verification_failed"
	KindResetFailed        ErrorKind = "reset_failed"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindInvalidInput       ErrorKind = "invalid_input"

	// KindNotificationFailed is only ever logged; a failed email never
	// changes an operation's outcome.
	KindNotificationFailed ErrorKind = "notification_failed"
)

// User-facing messages.
const (
	MsgRegistered          = "Registration successful. Please check your email to verify your account."
	MsgUsernameExists      = "Username already exists"
	MsgEmailExists         = "Email already registered"
	MsgRegistrationFailed  = "Registration failed. Please try again."
	MsgLoginSucceeded      = "Login successful"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgAccountDeactivated  = "Account is deactivated"
	MsgEmailNotVerified    = "Please verify your email before logging in"
	MsgLoginFailed         = "Login failed. Please try again."
	MsgEmailVerified       = "Email verified successfully"
	MsgInvalidVerification = "Invalid verification token"
	MsgVerificationExpired = "Verification token has expired"
	MsgVerificationFailed  = "Verification failed. Please try again."
	MsgResetRequested      = "If the email exists, a password reset link will be sent"
	MsgResendRequested     = "If the account exists and is unverified, a verification email will be sent"
	MsgPasswordReset       = "Password has been reset successfully"
	MsgInvalidReset        = "Invalid password reset token"
	MsgResetExpired        = "Password reset token has expired"
	MsgResetFailed         = "Password reset failed. Please try again."
	MsgAuthenticated       = "Authenticated"
	MsgUnauthorized        = "Invalid or expired token"
)

// Result is the outcome of an Engine operation. Fields beyond Kind and
// Message are set only on success, and only by the operations that produce
// them.
type Result struct {
	Kind    ErrorKind
	Message string

	AccountID int64
	Token     string
	Profile   *domain.Profile
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Kind == KindNone
}

func success(msg string) Result {
	return Result{Message: msg}
}

func failure(kind ErrorKind, msg string) Result {
	return Result{Kind: kind, Message: msg}
}
