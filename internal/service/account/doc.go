// Package account implements the account lifecycle: registration, login,
// email verification, password reset and session authentication.
//
// The Engine owns the account state machine and token expiry policy. Every
// operation reports its outcome as a Result; expected failures such as a
// taken username or a wrong password are Result kinds, not errors.
// Infrastructure failures are logged and collapsed into the operation's
// generic kind so callers never see store internals.
package account
