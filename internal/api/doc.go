// Package api handles incoming HTTP requests: request decoding and
// validation, delegation to the account engine and card store, and response
// formatting. Auth responses use the {success, message} envelope; card
// responses return the resource directly.
package api
