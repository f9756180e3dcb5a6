package catalog

import "context"

type Repository interface {
	Insert(ctx context.Context, item *Item) error

	// Get returns ErrNotFound when the id is unknown.
	Get(ctx context.Context, id string) (*Item, error)

	// AdjustQuantity applies quantity += delta as a single conditional
	// update: a negative delta only takes effect when the current
	// quantity covers it. It returns the item after the adjustment,
	// ErrInsufficientStock when the guard refuses, or ErrNotFound. This
	// is the only write path for Quantity.
	AdjustQuantity(ctx context.Context, id string, delta int) (*Item, error)

	// List returns all items in insertion order.
	List(ctx context.Context) ([]*Item, error)

	// ListBySeller returns the seller's items in insertion order.
	ListBySeller(ctx context.Context, sellerEmail string) ([]*Item, error)

	// Delete removes the item. Existing orders keep referencing the id;
	// reads tolerate the dangling reference.
	Delete(ctx context.Context, id string) error
}
