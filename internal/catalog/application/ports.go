package application

import (
	"context"

	"github.com/mousegear/store/internal/catalog/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, p domain.Product) error
	FindByID(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	SearchByName(ctx context.Context, partial string) ([]domain.Product, error)
	FilterByCategory(ctx context.Context, c domain.Category) ([]domain.Product, error)
	Update(ctx context.Context, id string, p domain.PartialUpdate) (domain.Product, error)
	MarkDeleted(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) (domain.Product, error)

	// ReserveStock decrements conditionally; it never drives quantity below
	// zero. AddStock is the compensating / restock increment.
	ReserveStock(ctx context.Context, id string, qty int) error
	AddStock(ctx context.Context, id string, qty int) error
}
