package application

import (
	"context"

	"github.com/mousegear/store/internal/user/domain"
)

type UserRepository interface {
	Create(ctx context.Context, u domain.User) error
	FindByID(ctx context.Context, id string) (domain.User, error)
	FindByName(ctx context.Context, name string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id string, p domain.PartialUpdate) (domain.User, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
	MarkDeleted(ctx context.Context, id string) error
	Restore(ctx context.Context, name string) (domain.User, error)

	// Credit and Debit are the only balance mutations. Debit is conditional:
	// it fails with domain.ErrInsufficientFunds instead of going negative.
	Credit(ctx context.Context, id string, amount int64) (int64, error)
	Debit(ctx context.Context, id string, amount int64) (int64, error)
}

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
