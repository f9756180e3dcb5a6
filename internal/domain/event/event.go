// Package event defines fire-and-forget domain notifications. They
// carry no control flow: a failed publish never fails the operation
// that emitted it.
package event

import (
	"context"
	"time"
)

// Event is any domain notification with a name identifier.
type Event interface {
	EventName() string
}

// Handler processes a published event.
type Handler func(ctx context.Context, e Event)

// Publisher publishes events to interested subscribers.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Subscriber registers handlers for event names.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}

// OrderPlaced is emitted after an order is persisted and stock has been
// consumed.
type OrderPlaced struct {
	OrderID       string
	CustomerEmail string
	ItemID        string
	Quantity      int
	OccurredAt    time.Time
}

func (OrderPlaced) EventName() string { return "order.placed" }

// OrderCancelled is emitted after a pending order is cancelled and its
// stock restored.
type OrderCancelled struct {
	OrderID    string
	ItemID     string
	Quantity   int
	OccurredAt time.Time
}

func (OrderCancelled) EventName() string { return "order.cancelled" }

// StockAdjusted is emitted for every quantity change the ledger applies.
type StockAdjusted struct {
	ItemID     string
	Delta      int
	Quantity   int
	OccurredAt time.Time
}

func (StockAdjusted) EventName() string { return "stock.adjusted" }

// RoleChanged is emitted when an admin approves a role change.
type RoleChanged struct {
	Email      string
	Role       string
	OccurredAt time.Time
}

func (RoleChanged) EventName() string { return "role.changed" }
