package application

import (
	"context"

	cartdomain "github.com/mousegear/store/internal/cart/domain"
	orderdomain "github.com/mousegear/store/internal/order/domain"
	userdomain "github.com/mousegear/store/internal/user/domain"
)

type UserDirectory interface {
	FindByID(ctx context.Context, id string) (userdomain.User, error)
}

// Ledger moves money. Debit fails with userdomain.ErrInsufficientFunds
// rather than letting a balance go negative.
type Ledger interface {
	Debit(ctx context.Context, userID string, amount int64) (int64, error)
	Credit(ctx context.Context, userID string, amount int64) (int64, error)
}

// Inventory reserves stock. Reserve fails with
// catalogdomain.ErrInsufficientStock rather than overselling.
type Inventory interface {
	Reserve(ctx context.Context, productID string, qty int) error
}

type Cart interface {
	Snapshot(ctx context.Context, userID string) ([]cartdomain.Line, error)
	Clear(ctx context.Context, userID string) error
}

type Orders interface {
	Create(ctx context.Context, o orderdomain.Order) error
}

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
