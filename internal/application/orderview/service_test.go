package orderview

import (
	"context"
	"testing"

	"github.com/plantnet/backend/internal/domain/catalog"
	domain "github.com/plantnet/backend/internal/domain/order"
	"github.com/plantnet/backend/internal/infrastructure/memory"
)

func seed(t *testing.T) (*memory.ItemRepository, *memory.OrderRepository, *Service) {
	t.Helper()
	items := memory.NewItemRepository()
	orders := memory.NewOrderRepository(items)
	return items, orders, NewService(orders)
}

func seedItem(t *testing.T, items *memory.ItemRepository, itemID, name, category, image string) {
	t.Helper()
	item, err := catalog.New(itemID, "seller@x.com", name, category, "", image, 500, 50)
	if err != nil {
		t.Fatalf("new item: %v", err)
	}
	if err := items.Insert(context.Background(), item); err != nil {
		t.Fatalf("seed item: %v", err)
	}
}

func seedOrder(t *testing.T, orders *memory.OrderRepository, orderID, customerEmail, itemID string) {
	t.Helper()
	o, err := domain.New(orderID, customerEmail, itemID, 1, 500)
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	if err := orders.Insert(context.Background(), o); err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func TestListCustomerOrders_EmptyIsNotAnError(t *testing.T) {
	_, _, svc := seed(t)

	got, err := svc.ListCustomerOrders(context.Background(), "nobody@x.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("expected no orders, got %d", len(got))
	}
}

func TestListCustomerOrders_SnapshotsItemMetadata(t *testing.T) {
	items, orders, svc := seed(t)
	seedItem(t, items, "i1", "Monstera", "indoor", "monstera.png")
	seedItem(t, items, "i2", "Cactus", "succulent", "cactus.png")
	seedOrder(t, orders, "o1", "c1@x.com", "i1")
	seedOrder(t, orders, "o2", "c1@x.com", "i2")
	seedOrder(t, orders, "o3", "other@x.com", "i1")

	got, err := svc.ListCustomerOrders(context.Background(), "c1@x.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(got))
	}
	// Insertion order is preserved.
	if got[0].ID != "o1" || got[1].ID != "o2" {
		t.Errorf("expected order o1,o2; got %s,%s", got[0].ID, got[1].ID)
	}
	if got[0].ItemName != "Monstera" || got[0].ItemCategory != "indoor" || got[0].ItemImage != "monstera.png" {
		t.Errorf("unexpected snapshot for o1: %+v", got[0])
	}
}

func TestListCustomerOrders_DropsDanglingItems(t *testing.T) {
	items, orders, svc := seed(t)
	seedItem(t, items, "i1", "Monstera", "indoor", "monstera.png")
	seedItem(t, items, "i2", "Cactus", "succulent", "cactus.png")
	seedOrder(t, orders, "o1", "c1@x.com", "i1")
	seedOrder(t, orders, "o2", "c1@x.com", "i2")

	if err := items.Delete(context.Background(), "i2"); err != nil {
		t.Fatalf("delete item: %v", err)
	}

	got, err := svc.ListCustomerOrders(context.Background(), "c1@x.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 order after item deletion, got %d", len(got))
	}
	if got[0].ID != "o1" {
		t.Errorf("expected o1 to survive, got %s", got[0].ID)
	}
}

func TestListCustomerOrders_RequiresEmail(t *testing.T) {
	_, _, svc := seed(t)

	if _, err := svc.ListCustomerOrders(context.Background(), ""); err == nil {
		t.Fatal("expected validation error for empty email")
	}
}
