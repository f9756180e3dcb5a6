package order

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/plantnet/backend/internal/application/inventory"
	"github.com/plantnet/backend/internal/domain/catalog"
	domain "github.com/plantnet/backend/internal/domain/order"
	"github.com/plantnet/backend/internal/infrastructure/id"
	"github.com/plantnet/backend/internal/infrastructure/memory"
	"github.com/plantnet/backend/internal/platform/apperr"
)

type fixture struct {
	items  *memory.ItemRepository
	orders *memory.OrderRepository
	svc    *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	items := memory.NewItemRepository()
	orders := memory.NewOrderRepository(items)
	ledger := inventory.NewService(items, nil)
	return &fixture{
		items:  items,
		orders: orders,
		svc:    NewService(orders, items, ledger, id.NewUUIDGenerator(), nil),
	}
}

func (f *fixture) seedItem(t *testing.T, itemID, sellerEmail string, quantity int) {
	t.Helper()
	item, err := catalog.New(itemID, sellerEmail, "Ficus", "indoor", "", "", 900, quantity)
	if err != nil {
		t.Fatalf("new item: %v", err)
	}
	if err := f.items.Insert(context.Background(), item); err != nil {
		t.Fatalf("seed item: %v", err)
	}
}

func (f *fixture) itemQuantity(t *testing.T, itemID string) int {
	t.Helper()
	item, err := f.items.Get(context.Background(), itemID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	return item.Quantity
}

func TestPlace_ConsumesStock(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "i1", "seller@x.com", 10)

	o, err := f.svc.Place(context.Background(), "c1@x.com", "i1", 4)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if o.Status != domain.StatusPending {
		t.Errorf("expected pending, got %s", o.Status)
	}
	if got := f.itemQuantity(t, "i1"); got != 6 {
		t.Errorf("expected quantity 6, got %d", got)
	}
	if o.Price != 900 {
		t.Errorf("expected price snapshot 900, got %d", o.Price)
	}
}

func TestPlace_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "i1", "seller@x.com", 5)

	_, err := f.svc.Place(context.Background(), "c1@x.com", "i1", 7)
	if !errors.Is(err, catalog.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if got := f.itemQuantity(t, "i1"); got != 5 {
		t.Errorf("expected quantity unchanged at 5, got %d", got)
	}
}

func TestPlace_NonPositiveQuantity(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "i1", "seller@x.com", 5)

	for _, q := range []int{0, -3} {
		_, err := f.svc.Place(context.Background(), "c1@x.com", "i1", q)
		if !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Errorf("quantity %d: expected ErrInvalidQuantity, got %v", q, err)
		}
	}
}

func TestPlace_MissingItem(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Place(context.Background(), "c1@x.com", "nope", 1)
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlaceThenCancel_RestoresStock(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "i1", "seller@x.com", 10)
	ctx := context.Background()

	o, err := f.svc.Place(ctx, "c1@x.com", "i1", 4)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if got := f.itemQuantity(t, "i1"); got != 6 {
		t.Fatalf("expected quantity 6 after placement, got %d", got)
	}

	cancelled, err := f.svc.Cancel(ctx, o.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Status)
	}
	if got := f.itemQuantity(t, "i1"); got != 10 {
		t.Errorf("expected quantity restored to 10, got %d", got)
	}
}

func TestCancel_DeliveredConflict(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "i1", "seller@x.com", 10)
	ctx := context.Background()

	o, err := f.svc.Place(ctx, "c1@x.com", "i1", 4)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := f.orders.MarkDelivered(ctx, o.ID); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	_, err = f.svc.Cancel(ctx, o.ID)
	if !errors.Is(err, domain.ErrDelivered) {
		t.Fatalf("expected ErrDelivered, got %v", err)
	}
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("expected conflict kind, got %s", apperr.KindOf(err))
	}

	// Neither the order nor the stock may change.
	stored, err := f.orders.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if stored.Status != domain.StatusDelivered {
		t.Errorf("expected status delivered, got %s", stored.Status)
	}
	if got := f.itemQuantity(t, "i1"); got != 6 {
		t.Errorf("expected quantity still 6, got %d", got)
	}
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "i1", "seller@x.com", 10)
	ctx := context.Background()

	o, err := f.svc.Place(ctx, "c1@x.com", "i1", 2)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := f.svc.Cancel(ctx, o.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}

	_, err = f.svc.Cancel(ctx, o.ID)
	if !errors.Is(err, domain.ErrAlreadyCancelled) {
		t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
	}
	// A refused cancel must not restock again.
	if got := f.itemQuantity(t, "i1"); got != 10 {
		t.Errorf("expected quantity 10, got %d", got)
	}
}

func TestCancel_MissingOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Cancel(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlace_ConcurrentOverStock(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "i1", "seller@x.com", 5)

	var successCount, validationCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Place(context.Background(), "c1@x.com", "i1", 3)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, catalog.ErrInsufficientStock):
				validationCount.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("expected exactly 1 success, got %d", successCount.Load())
	}
	if validationCount.Load() != 1 {
		t.Errorf("expected exactly 1 insufficient-stock failure, got %d", validationCount.Load())
	}
	if got := f.itemQuantity(t, "i1"); got != 2 {
		t.Errorf("expected final quantity 2, got %d", got)
	}
}

// failingOrderRepo rejects every insert to exercise the compensation
// path.
type failingOrderRepo struct {
	*memory.OrderRepository
}

func (failingOrderRepo) Insert(ctx context.Context, o *domain.Order) error {
	return apperr.Unavailable("order repository: insert", errors.New("connection reset"))
}

func TestPlace_CompensatesWhenInsertFails(t *testing.T) {
	items := memory.NewItemRepository()
	orders := failingOrderRepo{memory.NewOrderRepository(items)}
	ledger := inventory.NewService(items, nil)
	svc := NewService(orders, items, ledger, id.NewUUIDGenerator(), nil)

	item, err := catalog.New("i1", "seller@x.com", "Ficus", "indoor", "", "", 900, 10)
	if err != nil {
		t.Fatalf("new item: %v", err)
	}
	if err := items.Insert(context.Background(), item); err != nil {
		t.Fatalf("seed item: %v", err)
	}

	_, err = svc.Place(context.Background(), "c1@x.com", "i1", 4)
	if err == nil {
		t.Fatal("expected insert failure to propagate")
	}
	if apperr.KindOf(err) != apperr.KindUnavailable {
		t.Errorf("expected unavailable kind, got %s", apperr.KindOf(err))
	}

	got, err := items.Get(context.Background(), "i1")
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got.Quantity != 10 {
		t.Errorf("expected stock restored to 10, got %d", got.Quantity)
	}
}

// failingLedger rejects every adjustment to exercise the restock error
// path.
type failingLedger struct{}

func (failingLedger) Adjust(ctx context.Context, itemID string, delta int) (*catalog.Item, error) {
	return nil, apperr.Unavailable("item repository: adjust", errors.New("connection reset"))
}

func TestCancel_RestockFailurePropagates(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "i1", "seller@x.com", 10)
	ctx := context.Background()

	o, err := f.svc.Place(ctx, "c1@x.com", "i1", 4)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	// Same stores, broken ledger: the cancel write lands but the
	// restock cannot.
	broken := NewService(f.orders, f.items, failingLedger{}, id.NewUUIDGenerator(), nil)
	_, err = broken.Cancel(ctx, o.ID)
	if err == nil {
		t.Fatal("expected restock failure to propagate")
	}
	if apperr.KindOf(err) != apperr.KindUnavailable {
		t.Errorf("expected unavailable kind, got %s", apperr.KindOf(err))
	}

	// The cancellation itself is terminal; only the restock is missing.
	stored, err := f.orders.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if stored.Status != domain.StatusCancelled {
		t.Errorf("expected status cancelled, got %s", stored.Status)
	}
	if got := f.itemQuantity(t, "i1"); got != 6 {
		t.Errorf("expected quantity still 6, got %d", got)
	}
}

func TestCancel_DeletedItemStillCancels(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "i1", "seller@x.com", 10)
	ctx := context.Background()

	o, err := f.svc.Place(ctx, "c1@x.com", "i1", 4)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := f.items.Delete(ctx, "i1"); err != nil {
		t.Fatalf("delete item: %v", err)
	}

	cancelled, err := f.svc.Cancel(ctx, o.ID)
	if err != nil {
		t.Fatalf("cancel after item deletion: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Status)
	}
}

func TestAdjustStock_Directions(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "i1", "seller@x.com", 10)
	ctx := context.Background()

	item, err := f.svc.AdjustStock(ctx, "seller@x.com", "i1", 5, DirectionIncrease)
	if err != nil {
		t.Fatalf("increase: %v", err)
	}
	if item.Quantity != 15 {
		t.Errorf("expected 15, got %d", item.Quantity)
	}

	item, err = f.svc.AdjustStock(ctx, "seller@x.com", "i1", 3, DirectionDecrease)
	if err != nil {
		t.Fatalf("decrease: %v", err)
	}
	if item.Quantity != 12 {
		t.Errorf("expected 12, got %d", item.Quantity)
	}
}

func TestAdjustStock_RejectsForeignSeller(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "i1", "seller@x.com", 10)

	_, err := f.svc.AdjustStock(context.Background(), "other@x.com", "i1", 5, DirectionIncrease)
	if !errors.Is(err, catalog.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestAdjustStock_InvalidInput(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, "i1", "seller@x.com", 10)
	ctx := context.Background()

	if _, err := f.svc.AdjustStock(ctx, "seller@x.com", "i1", 0, DirectionIncrease); apperr.KindOf(err) != apperr.KindInvalid {
		t.Errorf("zero quantity: expected validation error, got %v", err)
	}
	if _, err := f.svc.AdjustStock(ctx, "seller@x.com", "i1", 5, Direction("sideways")); apperr.KindOf(err) != apperr.KindInvalid {
		t.Errorf("bad direction: expected validation error, got %v", err)
	}
}
