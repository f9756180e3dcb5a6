package memory

import (
	"context"
	"sync"
	"time"

	"github.com/plantnet/backend/internal/domain/order"
	"github.com/plantnet/backend/internal/platform/apperr"
)

// OrderRepository joins against an ItemRepository for enriched reads,
// the in-memory stand-in for the store-side lookup the mongo adapter
// performs.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*order.Order
	seq    []string
	items  *ItemRepository
}

func NewOrderRepository(items *ItemRepository) *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]*order.Order),
		items:  items,
	}
}

func (r *OrderRepository) Insert(ctx context.Context, o *order.Order) error {
	_ = ctx
	if o == nil || o.ID == "" {
		return apperr.New(apperr.KindInvalid, "order repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[o.ID]; exists {
		return apperr.New(apperr.KindConflict, "order repository: id already exists")
	}
	r.orders[o.ID] = o.Clone()
	r.seq = append(r.seq, o.ID)
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o.Clone(), nil
}

func (r *OrderRepository) MarkCancelled(ctx context.Context, id string) (*order.Order, error) {
	return r.transition(ctx, id, order.StatusCancelled)
}

func (r *OrderRepository) MarkDelivered(ctx context.Context, id string) (*order.Order, error) {
	return r.transition(ctx, id, order.StatusDelivered)
}

// transition applies pending → target under the write lock so the
// terminal-state check and the status write cannot interleave with a
// concurrent transition.
func (r *OrderRepository) transition(ctx context.Context, id string, target order.Status) (*order.Order, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	if o.Status != order.StatusPending {
		return nil, order.CancelRefusal(o.Status)
	}
	o.Status = target
	o.UpdatedAt = time.Now().UTC()
	return o.Clone(), nil
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerEmail string) ([]*order.CustomerOrder, error) {
	r.mu.RLock()
	matched := make([]*order.Order, 0)
	for _, id := range r.seq {
		if o, ok := r.orders[id]; ok && o.CustomerEmail == customerEmail {
			matched = append(matched, o.Clone())
		}
	}
	r.mu.RUnlock()

	out := make([]*order.CustomerOrder, 0, len(matched))
	for _, o := range matched {
		item, err := r.items.Get(ctx, o.ItemID)
		if err != nil {
			// Dangling item reference: inner-join semantics drop the row.
			continue
		}
		out = append(out, &order.CustomerOrder{
			Order:        *o,
			ItemName:     item.Name,
			ItemCategory: item.Category,
			ItemImage:    item.ImageURL,
		})
	}
	return out, nil
}
