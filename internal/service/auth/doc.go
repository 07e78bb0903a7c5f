// Package auth holds the credential primitives of the account lifecycle:
// bcrypt password hashing and HMAC-signed JWT session tokens.
package auth
