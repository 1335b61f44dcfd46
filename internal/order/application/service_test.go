package application_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdomain "github.com/mousegear/store/internal/cart/domain"
	catalogdomain "github.com/mousegear/store/internal/catalog/domain"
	"github.com/mousegear/store/internal/order/application"
	"github.com/mousegear/store/internal/order/domain"
	userdomain "github.com/mousegear/store/internal/user/domain"
)

type orderWorld struct {
	users   map[string]userdomain.User
	carts   map[string][]cartdomain.Line
	stock   map[string]int
	orders  map[string]domain.Order
	cleared []string

	inTx          bool
	statusUpdated bool
	statusWasInTx bool
	createWasInTx bool
}

func newOrderWorld() *orderWorld {
	return &orderWorld{
		users:  map[string]userdomain.User{},
		carts:  map[string][]cartdomain.Line{},
		stock:  map[string]int{},
		orders: map[string]domain.Order{},
	}
}

func (w *orderWorld) FindByID(_ context.Context, id string) (userdomain.User, error) {
	u, ok := w.users[id]
	if !ok {
		return userdomain.User{}, userdomain.ErrNotFound
	}
	return u, nil
}

func (w *orderWorld) Snapshot(_ context.Context, userID string) ([]cartdomain.Line, error) {
	return w.carts[userID], nil
}

func (w *orderWorld) Clear(_ context.Context, userID string) error {
	delete(w.carts, userID)
	w.cleared = append(w.cleared, userID)
	return nil
}

func (w *orderWorld) Reserve(_ context.Context, productID string, qty int) error {
	if w.stock[productID] < qty {
		return catalogdomain.ErrInsufficientStock
	}
	w.stock[productID] -= qty
	return nil
}

func (w *orderWorld) Create(_ context.Context, o domain.Order) error {
	w.createWasInTx = w.inTx
	w.orders[o.ID] = o
	return nil
}

func (w *orderWorld) Get(_ context.Context, id string) (domain.Order, error) {
	o, ok := w.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	return o, nil
}

func (w *orderWorld) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range w.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (w *orderWorld) ListAll(_ context.Context) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range w.orders {
		out = append(out, o)
	}
	return out, nil
}

func (w *orderWorld) UpdateStatus(_ context.Context, id string, u domain.StatusUpdate) (domain.Order, error) {
	w.statusUpdated = true
	w.statusWasInTx = w.inTx
	o, ok := w.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	if u.Status != nil {
		o.Status = *u.Status
	}
	if u.PaymentStatus != nil {
		o.PaymentStatus = *u.PaymentStatus
	}
	w.orders[id] = o
	return o, nil
}

func (w *orderWorld) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	w.inTx = true
	defer func() { w.inTx = false }()
	return fn(ctx)
}

func newOrderService(w *orderWorld) *application.Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return application.NewService(log, w, w, w, w, w)
}

func TestPlaceOrder(t *testing.T) {
	w := newOrderWorld()
	w.users["alice"] = userdomain.User{ID: "alice", Address: "1 Main St"}
	w.stock["mouse-1"] = 5
	w.carts["alice"] = []cartdomain.Line{
		{ProductID: "mouse-1", Name: "GX Mouse", Price: 2_500, Quantity: 2},
	}

	o, err := newOrderService(w).Place(context.Background(), "alice", "")
	require.NoError(t, err)

	assert.Equal(t, int64(5_000), o.TotalAmount)
	assert.Equal(t, domain.PaymentUnpaid, o.PaymentStatus, "direct orders are unpaid")
	assert.Equal(t, "1 Main St", o.ShippingAddress)
	assert.Equal(t, 3, w.stock["mouse-1"])
	assert.Equal(t, []string{"alice"}, w.cleared)
	assert.Len(t, w.orders, 1)
}

func TestPlaceOrderExplicitAddress(t *testing.T) {
	w := newOrderWorld()
	w.users["alice"] = userdomain.User{ID: "alice", Address: "1 Main St"}
	w.stock["mouse-1"] = 5
	w.carts["alice"] = []cartdomain.Line{
		{ProductID: "mouse-1", Name: "GX Mouse", Price: 100, Quantity: 1},
	}

	o, err := newOrderService(w).Place(context.Background(), "alice", "9 Elm Rd")
	require.NoError(t, err)
	assert.Equal(t, "9 Elm Rd", o.ShippingAddress)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	w := newOrderWorld()
	w.users["alice"] = userdomain.User{ID: "alice", Address: "1 Main St"}

	_, err := newOrderService(w).Place(context.Background(), "alice", "")
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)
}

func TestPlaceOrderMissingAddress(t *testing.T) {
	w := newOrderWorld()
	w.users["alice"] = userdomain.User{ID: "alice"}
	w.carts["alice"] = []cartdomain.Line{
		{ProductID: "mouse-1", Name: "GX Mouse", Price: 100, Quantity: 1},
	}

	_, err := newOrderService(w).Place(context.Background(), "alice", "  ")
	assert.ErrorIs(t, err, domain.ErrMissingAddress)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	w := newOrderWorld()
	w.users["alice"] = userdomain.User{ID: "alice", Address: "1 Main St"}
	w.stock["mouse-1"] = 1
	w.carts["alice"] = []cartdomain.Line{
		{ProductID: "mouse-1", Name: "GX Mouse", Price: 100, Quantity: 2},
	}

	_, err := newOrderService(w).Place(context.Background(), "alice", "")
	assert.ErrorIs(t, err, catalogdomain.ErrInsufficientStock)
	assert.Empty(t, w.orders)
	assert.Empty(t, w.cleared, "cart survives a failed order")
}

func TestUpdateStatus(t *testing.T) {
	w := newOrderWorld()
	w.orders["o1"] = domain.Order{ID: "o1", Status: domain.StatusPending, PaymentStatus: domain.PaymentUnpaid}
	svc := newOrderService(w)

	shipped := domain.StatusShipped
	o, err := svc.UpdateStatus(context.Background(), "o1", domain.StatusUpdate{Status: &shipped})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, o.Status)
	assert.Equal(t, domain.PaymentUnpaid, o.PaymentStatus, "unset fields stay put")

	bogus := domain.Status("lost")
	_, err = svc.UpdateStatus(context.Background(), "o1", domain.StatusUpdate{Status: &bogus})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = svc.UpdateStatus(context.Background(), "missing", domain.StatusUpdate{Status: &shipped})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// The repository writes the status row and its outbox event through the
// ambient querier, so the service must open the unit of work.
func TestUpdateStatusRunsInTransaction(t *testing.T) {
	w := newOrderWorld()
	w.orders["o1"] = domain.Order{ID: "o1", Status: domain.StatusPending, PaymentStatus: domain.PaymentUnpaid}

	delivered := domain.StatusDelivered
	_, err := newOrderService(w).UpdateStatus(context.Background(), "o1", domain.StatusUpdate{Status: &delivered})
	require.NoError(t, err)
	require.True(t, w.statusUpdated)
	assert.True(t, w.statusWasInTx)
}

func TestPlaceOrderRunsInTransaction(t *testing.T) {
	w := newOrderWorld()
	w.users["alice"] = userdomain.User{ID: "alice", Address: "1 Main St"}
	w.stock["mouse-1"] = 5
	w.carts["alice"] = []cartdomain.Line{
		{ProductID: "mouse-1", Name: "GX Mouse", Price: 100, Quantity: 1},
	}

	_, err := newOrderService(w).Place(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.True(t, w.createWasInTx)
}
