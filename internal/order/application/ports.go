package application

import (
	"context"

	cartdomain "github.com/mousegear/store/internal/cart/domain"
	"github.com/mousegear/store/internal/order/domain"
	userdomain "github.com/mousegear/store/internal/user/domain"
)

type OrderRepository interface {
	// Create persists the order, its frozen items, and an OrderPlaced outbox
	// event in the ambient transaction.
	Create(ctx context.Context, o domain.Order) error
	Get(ctx context.Context, id string) (domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	// UpdateStatus applies the provided fields and records an
	// OrderStatusChanged outbox event.
	UpdateStatus(ctx context.Context, id string, u domain.StatusUpdate) (domain.Order, error)
}

type CartSnapshotter interface {
	Snapshot(ctx context.Context, userID string) ([]cartdomain.Line, error)
	Clear(ctx context.Context, userID string) error
}

type StockReserver interface {
	Reserve(ctx context.Context, productID string, qty int) error
}

type UserDirectory interface {
	FindByID(ctx context.Context, id string) (userdomain.User, error)
}

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
