// Package orderview is the read side for customer orders: each order is
// joined with a snapshot of its item's display metadata at read time.
// Pure reads, no side effects.
package orderview

import (
	"context"

	domain "github.com/plantnet/backend/internal/domain/order"
	"github.com/plantnet/backend/internal/platform/apperr"
)

type Service struct {
	orders domain.Repository
}

func NewService(orders domain.Repository) *Service {
	return &Service{orders: orders}
}

// ListCustomerOrders returns the customer's orders in creation order.
// Orders referencing a deleted item are dropped; a customer with no
// orders gets an empty slice, never an error.
func (s *Service) ListCustomerOrders(ctx context.Context, customerEmail string) ([]*domain.CustomerOrder, error) {
	if customerEmail == "" {
		return nil, apperr.New(apperr.KindInvalid, "orderview: customer email is required")
	}
	orders, err := s.orders.ListByCustomer(ctx, customerEmail)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []*domain.CustomerOrder{}
	}
	return orders, nil
}
