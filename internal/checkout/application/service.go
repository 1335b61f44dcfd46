package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	cartdomain "github.com/mousegear/store/internal/cart/domain"
	catalogdomain "github.com/mousegear/store/internal/catalog/domain"
	orderdomain "github.com/mousegear/store/internal/order/domain"
	userdomain "github.com/mousegear/store/internal/user/domain"
)

// ErrTransactionAborted wraps any mid-commit failure. By the time a caller
// sees it the transaction has been rolled back in full.
var ErrTransactionAborted = errors.New("checkout transaction aborted")

// Service turns a cart into a paid order: one all-or-nothing transaction
// that reserves stock, debits the buyer, credits the system account,
// materializes the order, and clears the cart.
type Service struct {
	log             *slog.Logger
	users           UserDirectory
	ledger          Ledger
	inventory       Inventory
	carts           Cart
	orders          Orders
	tx              TxRunner
	systemAccountID string
}

func NewService(log *slog.Logger, users UserDirectory, ledger Ledger, inventory Inventory,
	carts Cart, orders Orders, tx TxRunner, systemAccountID string) *Service {
	return &Service{
		log:             log,
		users:           users,
		ledger:          ledger,
		inventory:       inventory,
		carts:           carts,
		orders:          orders,
		tx:              tx,
		systemAccountID: systemAccountID,
	}
}

// Result is the post-commit view returned to the buyer.
type Result struct {
	Order   orderdomain.Order
	Balance int64
}

// Checkout validates the cart against live stock and the buyer's balance,
// then commits the whole purchase atomically. Steps before the commit
// mutate nothing; any failure inside the commit rolls every sub-step back.
func (s *Service) Checkout(ctx context.Context, userID, shippingAddress string) (Result, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	lines, err := s.carts.Snapshot(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if len(lines) == 0 {
		return Result{}, cartdomain.ErrEmptyCart
	}

	// Stock validation against the live product records the snapshot was
	// resolved with; the commit re-checks via conditional decrements.
	items := make([]orderdomain.Item, 0, len(lines))
	var total int64
	for _, ln := range lines {
		if ln.Stock < ln.Quantity {
			return Result{}, fmt.Errorf("not enough stock for %s: %w", ln.Name, catalogdomain.ErrInsufficientStock)
		}
		total += ln.Price * int64(ln.Quantity)
		items = append(items, orderdomain.Item{
			ProductID: ln.ProductID,
			Name:      ln.Name,
			Price:     ln.Price,
			Quantity:  ln.Quantity,
		})
	}

	if user.Balance < total {
		return Result{}, userdomain.ErrInsufficientFunds
	}

	// Address resolution happens before any mutation: an explicit value wins
	// over the stored default, and neither present is a hard failure.
	address := strings.TrimSpace(shippingAddress)
	if address == "" {
		address = strings.TrimSpace(user.Address)
	}
	if address == "" {
		return Result{}, orderdomain.ErrMissingAddress
	}

	order, err := orderdomain.New(userID, items, address, orderdomain.PaymentPaid)
	if err != nil {
		return Result{}, err
	}

	var balance int64
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, it := range items {
			if err := s.inventory.Reserve(ctx, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("reserve %s: %w", it.Name, err)
			}
		}

		// A zero total (all free products) has nothing to move; the ledger
		// rejects zero amounts, so skip it rather than abort.
		balance = user.Balance
		if total > 0 {
			balance, err = s.ledger.Debit(ctx, userID, total)
			if err != nil {
				return err
			}
			if s.systemAccountID == "" {
				s.log.Warn("no system account configured, sale proceeds not credited", "order_id", order.ID)
			} else if _, err := s.ledger.Credit(ctx, s.systemAccountID, total); err != nil {
				// A missing system account is an ops concern, not a reason to
				// fail the buyer's checkout.
				if !errors.Is(err, userdomain.ErrNotFound) {
					return err
				}
				s.log.Warn("system account not found, sale proceeds not credited",
					"system_account_id", s.systemAccountID, "order_id", order.ID)
			}
		}

		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}
		return s.carts.Clear(ctx, userID)
	})
	if err != nil {
		return Result{}, commitError(err)
	}

	s.log.Info("checkout committed", "order_id", order.ID, "user_id", userID,
		"total", total, "balance", balance)
	return Result{Order: order, Balance: balance}, nil
}

// commitError keeps late validation failures client-facing and wraps
// everything else as an aborted transaction.
func commitError(err error) error {
	for _, sentinel := range []error{
		catalogdomain.ErrInsufficientStock,
		userdomain.ErrInsufficientFunds,
		orderdomain.ErrMissingAddress,
		orderdomain.ErrEmptyOrder,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrTransactionAborted, err)
}
