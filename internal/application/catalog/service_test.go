package catalog

import (
	"context"
	"errors"
	"testing"

	domain "github.com/plantnet/backend/internal/domain/catalog"
	"github.com/plantnet/backend/internal/infrastructure/id"
	"github.com/plantnet/backend/internal/infrastructure/memory"
	"github.com/plantnet/backend/internal/platform/apperr"
)

func newService() (*memory.ItemRepository, *Service) {
	repo := memory.NewItemRepository()
	return repo, NewService(repo, id.NewUUIDGenerator())
}

func TestAdd_AndListBySeller(t *testing.T) {
	_, svc := newService()
	ctx := context.Background()

	if _, err := svc.Add(ctx, "a@x.com", AddItemInput{Name: "Monstera", Category: "indoor", Price: 1500, Quantity: 10}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Add(ctx, "b@x.com", AddItemInput{Name: "Cactus", Price: 500, Quantity: 3}); err != nil {
		t.Fatalf("add: %v", err)
	}

	mine, err := svc.SellerItems(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("seller items: %v", err)
	}
	if len(mine) != 1 || mine[0].Name != "Monstera" {
		t.Fatalf("expected only Monstera for a@x.com, got %+v", mine)
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 items, got %d", len(all))
	}
}

func TestAdd_Validation(t *testing.T) {
	_, svc := newService()
	ctx := context.Background()

	if _, err := svc.Add(ctx, "a@x.com", AddItemInput{Name: "", Price: 100}); apperr.KindOf(err) != apperr.KindInvalid {
		t.Errorf("missing name: expected validation error, got %v", err)
	}
	if _, err := svc.Add(ctx, "a@x.com", AddItemInput{Name: "Fern", Quantity: -1}); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Errorf("negative quantity: expected ErrInvalidQuantity, got %v", err)
	}
}

func TestDelete_OwnerOnly(t *testing.T) {
	_, svc := newService()
	ctx := context.Background()

	item, err := svc.Add(ctx, "a@x.com", AddItemInput{Name: "Monstera", Price: 1500, Quantity: 10})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Delete(ctx, "b@x.com", item.ID); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := svc.Delete(ctx, "a@x.com", item.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.Get(ctx, item.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
