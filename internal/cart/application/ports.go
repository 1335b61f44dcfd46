package application

import (
	"context"

	"github.com/mousegear/store/internal/cart/domain"
	catalogdomain "github.com/mousegear/store/internal/catalog/domain"
)

type CartRepository interface {
	// Items returns the raw lines, oldest first, without creating a cart.
	Items(ctx context.Context, userID string) ([]domain.Item, error)
	// UpsertItem lazily creates the cart and either appends the line or adds
	// delta to an existing one.
	UpsertItem(ctx context.Context, userID, productID string, delta int) error
	SetQuantity(ctx context.Context, userID, productID string, qty int) error
	RemoveItem(ctx context.Context, userID, productID string) error
	// Resolve joins the lines against live products (name, price, image,
	// current stock).
	Resolve(ctx context.Context, userID string) ([]domain.Line, error)
	Clear(ctx context.Context, userID string) error
}

type ProductDirectory interface {
	FindByID(ctx context.Context, id string) (catalogdomain.Product, error)
}
