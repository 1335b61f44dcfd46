package application

import (
	"context"
	"errors"
	"log/slog"
)

// Inventory owns the stock count. Reservations are single conditional
// decrements, so two concurrent checkouts can never oversell a product.
type Inventory struct {
	log  *slog.Logger
	repo ProductRepository
}

func NewInventory(log *slog.Logger, repo ProductRepository) *Inventory {
	return &Inventory{log: log, repo: repo}
}

var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

// CheckAvailability reports whether a live product can cover qty. This is
// advisory; Reserve re-checks at commit time.
func (i *Inventory) CheckAvailability(ctx context.Context, productID string, qty int) (bool, error) {
	if qty < 1 {
		return false, ErrInvalidQuantity
	}
	p, err := i.repo.FindByID(ctx, productID)
	if err != nil {
		return false, err
	}
	return p.Quantity >= qty, nil
}

// Reserve decrements stock by qty if and only if enough remains.
func (i *Inventory) Reserve(ctx context.Context, productID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	return i.repo.ReserveStock(ctx, productID, qty)
}

// Restock puts qty units back, used by admin restock and compensations.
func (i *Inventory) Restock(ctx context.Context, productID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if err := i.repo.AddStock(ctx, productID, qty); err != nil {
		return err
	}
	i.log.Info("stock added", "product_id", productID, "qty", qty)
	return nil
}
