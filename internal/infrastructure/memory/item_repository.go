package memory

import (
	"context"
	"sync"
	"time"

	"github.com/plantnet/backend/internal/domain/catalog"
	"github.com/plantnet/backend/internal/platform/apperr"
)

type ItemRepository struct {
	mu    sync.RWMutex
	items map[string]*catalog.Item
	order []string
}

func NewItemRepository() *ItemRepository {
	return &ItemRepository{items: make(map[string]*catalog.Item)}
}

func (r *ItemRepository) Insert(ctx context.Context, item *catalog.Item) error {
	_ = ctx
	if item == nil || item.ID == "" {
		return apperr.New(apperr.KindInvalid, "item repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return apperr.New(apperr.KindConflict, "item repository: id already exists")
	}
	r.items[item.ID] = item.Clone()
	r.order = append(r.order, item.ID)
	return nil
}

func (r *ItemRepository) Get(ctx context.Context, id string) (*catalog.Item, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return item.Clone(), nil
}

// AdjustQuantity serializes the check-and-apply under the write lock,
// the per-item mutual exclusion required when the store itself offers
// no conditional update.
func (r *ItemRepository) AdjustQuantity(ctx context.Context, id string, delta int) (*catalog.Item, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	if item.Quantity+delta < 0 {
		return nil, catalog.ErrInsufficientStock
	}
	item.Quantity += delta
	item.UpdatedAt = time.Now().UTC()
	return item.Clone(), nil
}

func (r *ItemRepository) List(ctx context.Context) ([]*catalog.Item, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*catalog.Item, 0, len(r.order))
	for _, id := range r.order {
		if item, ok := r.items[id]; ok {
			out = append(out, item.Clone())
		}
	}
	return out, nil
}

func (r *ItemRepository) ListBySeller(ctx context.Context, sellerEmail string) ([]*catalog.Item, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*catalog.Item, 0)
	for _, id := range r.order {
		if item, ok := r.items[id]; ok && item.SellerEmail == sellerEmail {
			out = append(out, item.Clone())
		}
	}
	return out, nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(r.items, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
