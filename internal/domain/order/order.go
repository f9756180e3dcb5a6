package order

import (
	"time"

	"github.com/plantnet/backend/internal/platform/apperr"
)

var (
	ErrNotFound         = apperr.New(apperr.KindNotFound, "order: not found")
	ErrInvalidQuantity  = apperr.New(apperr.KindInvalid, "order: quantity must be greater than zero")
	ErrDelivered        = apperr.New(apperr.KindConflict, "order: cannot cancel a delivered order")
	ErrAlreadyCancelled = apperr.New(apperr.KindConflict, "order: already cancelled")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Order records a customer's request to purchase a quantity of one
// item. Price is snapshotted at placement time.
type Order struct {
	ID            string
	CustomerEmail string
	ItemID        string
	Quantity      int
	Price         int64
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func New(id, customerEmail, itemID string, quantity int, price int64) (*Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now().UTC()
	return &Order{
		ID:            id,
		CustomerEmail: customerEmail,
		ItemID:        itemID,
		Quantity:      quantity,
		Price:         price,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// CancelRefusal translates a terminal status into the error reported
// when a cancel is refused.
func CancelRefusal(s Status) error {
	switch s {
	case StatusDelivered:
		return ErrDelivered
	case StatusCancelled:
		return ErrAlreadyCancelled
	default:
		return nil
	}
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}

// CustomerOrder is an order annotated with a snapshot of the referenced
// item's display metadata at read time.
type CustomerOrder struct {
	Order
	ItemName     string
	ItemCategory string
	ItemImage    string
}
