package order

import "context"

type Repository interface {
	Insert(ctx context.Context, o *Order) error

	// Get returns ErrNotFound when the id is unknown.
	Get(ctx context.Context, id string) (*Order, error)

	// MarkCancelled transitions pending → cancelled as a single
	// conditional write. When the order is already terminal it returns
	// the ErrDelivered/ErrAlreadyCancelled refusal without touching the
	// record, closing the race against a concurrent delivery.
	MarkCancelled(ctx context.Context, id string) (*Order, error)

	// MarkDelivered transitions pending → delivered the same way. The
	// trigger is an external fulfillment process.
	MarkDelivered(ctx context.Context, id string) (*Order, error)

	// ListByCustomer returns the customer's orders in insertion order,
	// each joined with the referenced item's display metadata. Orders
	// whose item no longer exists are dropped. A customer with no
	// orders yields an empty slice.
	ListByCustomer(ctx context.Context, customerEmail string) ([]*CustomerOrder, error)
}
