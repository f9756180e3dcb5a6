package catalog

import (
	"time"

	"github.com/plantnet/backend/internal/platform/apperr"
)

var (
	ErrNotFound          = apperr.New(apperr.KindNotFound, "catalog: item not found")
	ErrInvalidQuantity   = apperr.New(apperr.KindInvalid, "catalog: quantity must be greater than zero")
	ErrInsufficientStock = apperr.New(apperr.KindInvalid, "catalog: insufficient stock")
	ErrNotOwner          = apperr.New(apperr.KindUnauthorized, "catalog: item belongs to another seller")
)

// Item is a sellable catalog entry with finite stock. Descriptive
// fields belong to the owning seller; Quantity is written exclusively
// by the inventory ledger.
type Item struct {
	ID          string
	Name        string
	Category    string
	Description string
	ImageURL    string
	Price       int64
	Quantity    int
	SellerEmail string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New validates initial stock; a seller may list an item with zero
// stock and restock later.
func New(id, sellerEmail, name, category, description, imageURL string, price int64, quantity int) (*Item, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now().UTC()
	return &Item{
		ID:          id,
		Name:        name,
		Category:    category,
		Description: description,
		ImageURL:    imageURL,
		Price:       price,
		Quantity:    quantity,
		SellerEmail: sellerEmail,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// OwnedBy reports whether the seller owns this item.
func (i *Item) OwnedBy(sellerEmail string) bool {
	return i.SellerEmail == sellerEmail
}

func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	clone := *i
	return &clone
}
