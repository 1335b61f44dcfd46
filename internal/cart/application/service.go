package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mousegear/store/internal/cart/domain"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// ErrExceedsStock is the advisory update-time bound; the authoritative stock
// check happens again at checkout.
var ErrExceedsStock = errors.New("quantity is greater than available stock")

type Service struct {
	log      *slog.Logger
	repo     CartRepository
	products ProductDirectory
}

func NewService(log *slog.Logger, repo CartRepository, products ProductDirectory) *Service {
	return &Service{log: log, repo: repo, products: products}
}

// Get returns the resolved cart lines. Reading never creates a cart; a user
// without one just sees an empty list.
func (s *Service) Get(ctx context.Context, userID string) ([]domain.Line, error) {
	lines, err := s.repo.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []domain.Line{}
	}
	return lines, nil
}

func (s *Service) AddItem(ctx context.Context, userID, productID string, qty int) ([]domain.Line, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	// Product must exist and be live.
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	if err := s.repo.UpsertItem(ctx, userID, productID, qty); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *Service) UpdateItem(ctx context.Context, userID, productID string, qty int) ([]domain.Line, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if qty > p.Quantity {
		return nil, ErrExceedsStock
	}
	if err := s.repo.SetQuantity(ctx, userID, productID, qty); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// RemoveItem deletes the line; removing something that is not there is fine.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) ([]domain.Line, error) {
	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// Snapshot resolves the lines with live name/price for order materialization.
// Clearing is the caller's last step inside its transaction, so a cart is
// never observably "cleared but not checked out".
func (s *Service) Snapshot(ctx context.Context, userID string) ([]domain.Line, error) {
	return s.repo.Resolve(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.repo.Clear(ctx, userID)
}
