package application

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mousegear/store/internal/order/domain"
)

type Service struct {
	log   *slog.Logger
	repo  OrderRepository
	carts CartSnapshotter
	stock StockReserver
	users UserDirectory
	tx    TxRunner
}

func NewService(log *slog.Logger, repo OrderRepository, carts CartSnapshotter, stock StockReserver, users UserDirectory, tx TxRunner) *Service {
	return &Service{log: log, repo: repo, carts: carts, stock: stock, users: users, tx: tx}
}

// Place is the direct-order path: it converts the cart into an unpaid order
// without touching the ledger. Stock reservation, order creation, and cart
// clearing commit together or not at all.
func (s *Service) Place(ctx context.Context, userID, shippingAddress string) (domain.Order, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.Order{}, err
	}
	address := strings.TrimSpace(shippingAddress)
	if address == "" {
		address = strings.TrimSpace(user.Address)
	}
	if address == "" {
		return domain.Order{}, domain.ErrMissingAddress
	}

	lines, err := s.carts.Snapshot(ctx, userID)
	if err != nil {
		return domain.Order{}, err
	}
	if len(lines) == 0 {
		return domain.Order{}, domain.ErrEmptyOrder
	}

	items := make([]domain.Item, 0, len(lines))
	for _, ln := range lines {
		items = append(items, domain.Item{
			ProductID: ln.ProductID,
			Name:      ln.Name,
			Price:     ln.Price,
			Quantity:  ln.Quantity,
		})
	}
	order, err := domain.New(userID, items, address, domain.PaymentUnpaid)
	if err != nil {
		return domain.Order{}, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, it := range items {
			if err := s.stock.Reserve(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		if err := s.repo.Create(ctx, order); err != nil {
			return err
		}
		return s.carts.Clear(ctx, userID)
	})
	if err != nil {
		return domain.Order{}, err
	}
	s.log.Info("order placed", "order_id", order.ID, "user_id", userID, "total", order.TotalAmount)
	return order, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAll(ctx)
}

// UpdateStatus sets status and paymentStatus independently. Any valid value
// may follow any other; there is no forward-only state machine here.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, u domain.StatusUpdate) (domain.Order, error) {
	if err := u.Validate(); err != nil {
		return domain.Order{}, err
	}
	// The status row and its outbox event must commit together.
	var order domain.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.repo.UpdateStatus(ctx, orderID, u)
		return err
	})
	if err != nil {
		return domain.Order{}, err
	}
	s.log.Info("order status updated", "order_id", orderID,
		"status", order.Status, "payment_status", order.PaymentStatus)
	return order, nil
}
