// Package mocks provides test doubles for the store, notifier and signer
// interfaces. Each double has optional function fields that override its
// default behaviour for a single test.
package mocks
