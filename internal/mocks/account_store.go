package mocks

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/cardboardgarden/garden-api/internal/domain"
	"github.com/cardboardgarden/garden-api/internal/store"
)

// MockAccountStore is an in-memory store.AccountStore. It enforces the same
// case-insensitive uniqueness as the database, assigns sequential IDs
// starting at 1, and hands out copies so callers only change stored state
// through Create and Update.
type MockAccountStore struct {
	CreateFn             func(ctx context.Context, account *domain.Account) error
	GetByIdentifierFn    func(ctx context.Context, identifier string) (*domain.Account, error)
	GetByEmailFn         func(ctx context.Context, email string) (*domain.Account, error)
	UpdateFn             func(ctx context.Context, account *domain.Account) error
	ClearExpiredTokensFn func(ctx context.Context, now time.Time) (store.TokenSweep, error)

	mu       sync.Mutex
	accounts map[int64]*domain.Account
	nextID   int64

	// UpdateCalls counts successful and failed Update invocations.
	UpdateCalls int
}

var _ store.AccountStore = (*MockAccountStore)(nil)

// NewMockAccountStore creates an empty store.
func NewMockAccountStore() *MockAccountStore {
	return &MockAccountStore{accounts: make(map[int64]*domain.Account), nextID: 1}
}

// Create implements store.AccountStore.
func (m *MockAccountStore) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, account)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkUnique(account, 0); err != nil {
		return err
	}
	account.ID = m.nextID
	m.nextID++
	m.accounts[account.ID] = copyAccount(account)
	return nil
}

// GetByID implements store.AccountStore.
func (m *MockAccountStore) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	return m.find(func(a *domain.Account) bool { return a.ID == id })
}

// GetByUsername implements store.AccountStore.
func (m *MockAccountStore) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	username = domain.NormalizeUsername(username)
	return m.find(func(a *domain.Account) bool { return strings.EqualFold(a.Username, username) })
}

// GetByEmail implements store.AccountStore.
func (m *MockAccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	email = domain.NormalizeEmail(email)
	return m.find(func(a *domain.Account) bool { return a.Email == email })
}

// GetByIdentifier implements store.AccountStore. Username matches win.
func (m *MockAccountStore) GetByIdentifier(ctx context.Context, identifier string) (*domain.Account, error) {
	if m.GetByIdentifierFn != nil {
		return m.GetByIdentifierFn(ctx, identifier)
	}
	if a, err := m.GetByUsername(ctx, identifier); err == nil {
		return a, nil
	}
	return m.find(func(a *domain.Account) bool { return a.Email == domain.NormalizeEmail(identifier) })
}

// GetByVerificationToken implements store.AccountStore.
func (m *MockAccountStore) GetByVerificationToken(_ context.Context, token string) (*domain.Account, error) {
	return m.find(func(a *domain.Account) bool {
		return a.VerificationToken != nil && *a.VerificationToken == token
	})
}

// GetByResetToken implements store.AccountStore.
func (m *MockAccountStore) GetByResetToken(_ context.Context, token string) (*domain.Account, error) {
	return m.find(func(a *domain.Account) bool {
		return a.ResetToken != nil && *a.ResetToken == token
	})
}

// Update implements store.AccountStore.
func (m *MockAccountStore) Update(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	m.UpdateCalls++
	m.mu.Unlock()

	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, account)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[account.ID]; !ok {
		return store.ErrAccountNotFound
	}
	if err := m.checkUnique(account, account.ID); err != nil {
		return err
	}
	m.accounts[account.ID] = copyAccount(account)
	return nil
}

// ClearExpiredTokens implements store.AccountStore.
func (m *MockAccountStore) ClearExpiredTokens(ctx context.Context, now time.Time) (store.TokenSweep, error) {
	if m.ClearExpiredTokensFn != nil {
		return m.ClearExpiredTokensFn(ctx, now)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var sweep store.TokenSweep
	for _, a := range m.accounts {
		if a.VerificationExpires != nil && a.VerificationExpires.Before(now) && !a.EmailVerified {
			a.VerificationToken = nil
			a.VerificationExpires = nil
			sweep.VerificationTokens++
		}
		if a.ResetExpires != nil && a.ResetExpires.Before(now) {
			a.ResetToken = nil
			a.ResetExpires = nil
			sweep.ResetTokens++
		}
	}
	return sweep, nil
}

// WithTx implements store.AccountStore. The mock has no transactions.
func (m *MockAccountStore) WithTx(_ *sql.Tx) store.AccountStore {
	return m
}

// Put stores a copy of account as-is, keeping its ID. Tests use it to seed
// accounts in states registration cannot produce.
func (m *MockAccountStore) Put(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account.ID == 0 {
		account.ID = m.nextID
	}
	if account.ID >= m.nextID {
		m.nextID = account.ID + 1
	}
	m.accounts[account.ID] = copyAccount(account)
}

// Count returns the number of stored accounts.
func (m *MockAccountStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.accounts)
}

func (m *MockAccountStore) find(match func(*domain.Account) bool) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if match(a) {
			return copyAccount(a), nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (m *MockAccountStore) checkUnique(account *domain.Account, selfID int64) error {
	for id, existing := range m.accounts {
		if id == selfID {
			continue
		}
		if strings.EqualFold(existing.Username, account.Username) {
			return store.ErrUsernameExists
		}
		if strings.EqualFold(existing.Email, account.Email) {
			return store.ErrEmailExists
		}
	}
	return nil
}

func copyAccount(a *domain.Account) *domain.Account {
	c := *a
	if a.VerificationToken != nil {
		v := *a.VerificationToken
		c.VerificationToken = &v
	}
	if a.VerificationExpires != nil {
		v := *a.VerificationExpires
		c.VerificationExpires = &v
	}
	if a.ResetToken != nil {
		v := *a.ResetToken
		c.ResetToken = &v
	}
	if a.ResetExpires != nil {
		v := *a.ResetExpires
		c.ResetExpires = &v
	}
	if a.LastLogin != nil {
		v := *a.LastLogin
		c.LastLogin = &v
	}
	return &c
}
