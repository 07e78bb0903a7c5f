// Package notify delivers account emails: verification links after
// registration and password reset links.
//
// A Notifier receives a Message naming the kind of email, the recipient and
// the token to embed. ResendNotifier posts rendered emails to the Resend HTTP
// API, LogNotifier only logs them, and AsyncNotifier moves delivery of
// either onto the background task runner so callers never wait on the
// network.
package notify
