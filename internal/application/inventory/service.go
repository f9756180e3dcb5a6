// Package inventory is the ledger for item stock. Every quantity
// mutation in the application routes through Adjust, which delegates to
// the repository's conditional update so the stock invariant holds
// under concurrent callers.
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/plantnet/backend/internal/domain/catalog"
	"github.com/plantnet/backend/internal/domain/event"
	"github.com/plantnet/backend/internal/pkg/logging"
	"go.uber.org/zap"
)

type Service struct {
	items  catalog.Repository
	events event.Publisher
}

func NewService(items catalog.Repository, events event.Publisher) *Service {
	return &Service{items: items, events: events}
}

// Adjust applies quantity += delta. A delta that would drive the count
// below zero is refused with catalog.ErrInsufficientStock; a positive
// delta always succeeds when the item exists.
func (s *Service) Adjust(ctx context.Context, itemID string, delta int) (*catalog.Item, error) {
	item, err := s.items.AdjustQuantity(ctx, itemID, delta)
	if err != nil {
		return nil, fmt.Errorf("inventory: adjust %q by %d: %w", itemID, delta, err)
	}

	if s.events != nil {
		s.events.Publish(ctx, event.StockAdjusted{
			ItemID:     itemID,
			Delta:      delta,
			Quantity:   item.Quantity,
			OccurredAt: time.Now().UTC(),
		})
	}
	logging.FromContext(ctx).Debug("stock_adjusted",
		zap.String("item_id", itemID),
		zap.Int("delta", delta),
		zap.Int("quantity", item.Quantity),
	)
	return item, nil
}
