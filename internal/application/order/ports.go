package order

import (
	"context"

	"github.com/plantnet/backend/internal/domain/catalog"
)

type IDGenerator interface {
	NewID() string
}

// Ledger is the only path to an item's quantity.
type Ledger interface {
	Adjust(ctx context.Context, itemID string, delta int) (*catalog.Item, error)
}
