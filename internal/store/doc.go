// Package store defines the persistence contracts for accounts and the card
// catalog, the sentinel errors every implementation returns, and the
// transaction helper shared by the postgres implementations.
package store
