// Package order drives the order lifecycle: pending at placement,
// cancelled only while still pending, delivered by an external
// fulfillment process. Stock moves exclusively through the ledger.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/plantnet/backend/internal/domain/catalog"
	"github.com/plantnet/backend/internal/domain/event"
	domain "github.com/plantnet/backend/internal/domain/order"
	"github.com/plantnet/backend/internal/pkg/logging"
	"github.com/plantnet/backend/internal/platform/apperr"
)

// Direction selects the sign of a manual stock adjustment.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)

type Service struct {
	orders domain.Repository
	items  catalog.Repository
	ledger Ledger
	ids    IDGenerator
	events event.Publisher
	tracer trace.Tracer
}

func NewService(orders domain.Repository, items catalog.Repository, ledger Ledger, ids IDGenerator, events event.Publisher) *Service {
	return &Service{
		orders: orders,
		items:  items,
		ledger: ledger,
		ids:    ids,
		events: events,
		tracer: otel.Tracer("plantnet/order"),
	}
}

// Place consumes stock and records a pending order. The decrement and
// the insert form one logical unit: when the insert fails after a
// successful decrement, the stock is restored before the error
// propagates.
func (s *Service) Place(ctx context.Context, customerEmail, itemID string, quantity int) (_ *domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "order.place",
		trace.WithAttributes(
			attribute.String("item.id", itemID),
			attribute.Int("order.quantity", quantity),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	if customerEmail == "" {
		return nil, apperr.New(apperr.KindInvalid, "order: customer email is required")
	}
	if itemID == "" {
		return nil, apperr.New(apperr.KindInvalid, "order: item id is required")
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if _, err = s.ledger.Adjust(ctx, itemID, -quantity); err != nil {
		return nil, err
	}
	span.AddEvent("stock_consumed")

	o, err := domain.New(s.ids.NewID(), customerEmail, itemID, quantity, item.Price)
	if err != nil {
		s.compensate(ctx, itemID, quantity)
		return nil, err
	}

	if err = s.orders.Insert(ctx, o); err != nil {
		s.compensate(ctx, itemID, quantity)
		return nil, fmt.Errorf("order: insert: %w", err)
	}

	if s.events != nil {
		s.events.Publish(ctx, event.OrderPlaced{
			OrderID:       o.ID,
			CustomerEmail: customerEmail,
			ItemID:        itemID,
			Quantity:      quantity,
			OccurredAt:    time.Now().UTC(),
		})
	}
	logging.FromContext(ctx).Info("order_placed",
		zap.String("order_id", o.ID),
		zap.String("item_id", itemID),
		zap.Int("quantity", quantity),
	)
	return o, nil
}

// compensate reverses a stock decrement after a failed insert so no
// stock leaks.
func (s *Service) compensate(ctx context.Context, itemID string, quantity int) {
	if _, err := s.ledger.Adjust(ctx, itemID, quantity); err != nil {
		logging.FromContext(ctx).Error("stock_compensation_failed",
			zap.String("item_id", itemID),
			zap.Int("quantity", quantity),
			zap.Error(err),
		)
	}
}

// Cancel marks a pending order cancelled and restores its stock. A
// delivered order refuses with a conflict; the terminal-state check and
// the status write are one atomic repository operation. A failed
// restock surfaces to the caller; the order stays cancelled.
func (s *Service) Cancel(ctx context.Context, orderID string) (_ *domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "order.cancel",
		trace.WithAttributes(attribute.String("order.id", orderID)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	cancelled, err := s.orders.MarkCancelled(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// The order is terminally cancelled at this point; a missing item
	// (deleted since placement) leaves nothing to restock. Any other
	// restock failure propagates so the leaked stock is never hidden
	// behind a successful response.
	if _, err := s.ledger.Adjust(ctx, cancelled.ItemID, cancelled.Quantity); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			logging.FromContext(ctx).Warn("restock_skipped_item_deleted",
				zap.String("order_id", orderID),
				zap.String("item_id", cancelled.ItemID),
			)
		} else {
			logging.FromContext(ctx).Error("stock_restore_failed",
				zap.String("order_id", orderID),
				zap.String("item_id", cancelled.ItemID),
				zap.Error(err),
			)
			return nil, fmt.Errorf("order: restore stock: %w", err)
		}
	}

	if s.events != nil {
		s.events.Publish(ctx, event.OrderCancelled{
			OrderID:    cancelled.ID,
			ItemID:     cancelled.ItemID,
			Quantity:   cancelled.Quantity,
			OccurredAt: time.Now().UTC(),
		})
	}
	logging.FromContext(ctx).Info("order_cancelled",
		zap.String("order_id", orderID),
	)
	return cancelled, nil
}

// AdjustStock applies a seller's manual restock or correction,
// delegating to the ledger with the sign chosen by direction. Ownership
// is checked against the stored item, not the caller's claim.
func (s *Service) AdjustStock(ctx context.Context, sellerEmail, itemID string, quantity int, direction Direction) (*catalog.Item, error) {
	if quantity <= 0 {
		return nil, apperr.New(apperr.KindInvalid, "order: adjustment quantity must be greater than zero")
	}

	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.OwnedBy(sellerEmail) {
		return nil, catalog.ErrNotOwner
	}

	var delta int
	switch direction {
	case DirectionIncrease:
		delta = quantity
	case DirectionDecrease:
		delta = -quantity
	default:
		return nil, apperr.New(apperr.KindInvalid, "order: direction must be increase or decrease")
	}

	return s.ledger.Adjust(ctx, itemID, delta)
}
