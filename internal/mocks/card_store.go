package mocks

import (
	"context"

	"github.com/cardboardgarden/garden-api/internal/domain"
	"github.com/cardboardgarden/garden-api/internal/store"
)

// MockCardStore implements store.CardStore with function fields.
type MockCardStore struct {
	SearchFn  func(ctx context.Context, filter domain.CardFilter, page domain.PageRequest) (domain.CardPage, error)
	GetByIDFn func(ctx context.Context, id int64) (*domain.Card, error)
}

var _ store.CardStore = (*MockCardStore)(nil)

// Search implements store.CardStore.
func (m *MockCardStore) Search(ctx context.Context, filter domain.CardFilter, page domain.PageRequest) (domain.CardPage, error) {
	if m.SearchFn != nil {
		return m.SearchFn(ctx, filter, page)
	}
	return domain.CardPage{Page: page}, nil
}

// GetByID implements store.CardStore.
func (m *MockCardStore) GetByID(ctx context.Context, id int64) (*domain.Card, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, store.ErrCardNotFound
}
