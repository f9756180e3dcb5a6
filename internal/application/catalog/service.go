// Package catalog manages sellable items' descriptive fields. Quantity
// is deliberately absent from every mutation here except initial
// listing; later stock changes belong to the inventory ledger.
package catalog

import (
	"context"

	domain "github.com/plantnet/backend/internal/domain/catalog"
	"github.com/plantnet/backend/internal/pkg/logging"
	"github.com/plantnet/backend/internal/platform/apperr"
	"go.uber.org/zap"
)

type IDGenerator interface {
	NewID() string
}

type Service struct {
	items domain.Repository
	ids   IDGenerator
}

func NewService(items domain.Repository, ids IDGenerator) *Service {
	return &Service{items: items, ids: ids}
}

type AddItemInput struct {
	Name        string
	Category    string
	Description string
	ImageURL    string
	Price       int64
	Quantity    int
}

func (s *Service) Add(ctx context.Context, sellerEmail string, in AddItemInput) (*domain.Item, error) {
	if in.Name == "" {
		return nil, apperr.New(apperr.KindInvalid, "catalog: item name is required")
	}
	if in.Price < 0 {
		return nil, apperr.New(apperr.KindInvalid, "catalog: price must be zero or greater")
	}

	item, err := domain.New(s.ids.NewID(), sellerEmail, in.Name, in.Category, in.Description, in.ImageURL, in.Price, in.Quantity)
	if err != nil {
		return nil, err
	}
	if err := s.items.Insert(ctx, item); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("item_added",
		zap.String("item_id", item.ID),
		zap.String("seller", sellerEmail),
	)
	return item, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.Item, error) {
	return s.items.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Item, error) {
	return s.items.Get(ctx, id)
}

// SellerItems lists the seller's own inventory.
func (s *Service) SellerItems(ctx context.Context, sellerEmail string) ([]*domain.Item, error) {
	return s.items.ListBySeller(ctx, sellerEmail)
}

// Delete removes a seller's own item. Existing orders keep their item
// id; enriched reads drop them once the item is gone.
func (s *Service) Delete(ctx context.Context, sellerEmail, id string) error {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return err
	}
	if !item.OwnedBy(sellerEmail) {
		return domain.ErrNotOwner
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}

	logging.FromContext(ctx).Info("item_deleted",
		zap.String("item_id", id),
		zap.String("seller", sellerEmail),
	)
	return nil
}
