package store

import (
	"context"

	"github.com/cardboardgarden/garden-api/internal/domain"
)

// CardStore reads the card catalog.
type CardStore interface {
	// Search returns one page of cards matching the filter.
	Search(ctx context.Context, filter domain.CardFilter, page domain.PageRequest) (domain.CardPage, error)

	// GetByID returns ErrCardNotFound when no card has the ID.
	GetByID(ctx context.Context, id int64) (*domain.Card, error)
}
