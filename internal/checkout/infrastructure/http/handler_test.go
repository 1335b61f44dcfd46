package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdomain "github.com/mousegear/store/internal/cart/domain"
	"github.com/mousegear/store/internal/checkout/application"
	orderdomain "github.com/mousegear/store/internal/order/domain"
	userdomain "github.com/mousegear/store/internal/user/domain"
	"github.com/mousegear/store/pkg/auth"
	"github.com/mousegear/store/pkg/metrics"
)

// stubWorld satisfies every checkout port with a single happy-path account.
type stubWorld struct {
	user   userdomain.User
	lines  []cartdomain.Line
	orders []orderdomain.Order
}

func (s *stubWorld) FindByID(_ context.Context, id string) (userdomain.User, error) {
	if id != s.user.ID {
		return userdomain.User{}, userdomain.ErrNotFound
	}
	return s.user, nil
}

func (s *stubWorld) Debit(_ context.Context, _ string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, userdomain.ErrInvalidAmount
	}
	s.user.Balance -= amount
	return s.user.Balance, nil
}

func (s *stubWorld) Credit(_ context.Context, _ string, amount int64) (int64, error) {
	return amount, nil
}

func (s *stubWorld) Reserve(_ context.Context, _ string, _ int) error { return nil }

func (s *stubWorld) Snapshot(_ context.Context, _ string) ([]cartdomain.Line, error) {
	return s.lines, nil
}

func (s *stubWorld) Clear(_ context.Context, _ string) error {
	s.lines = nil
	return nil
}

func (s *stubWorld) Create(_ context.Context, o orderdomain.Order) error {
	s.orders = append(s.orders, o)
	return nil
}

func (s *stubWorld) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type staticRole string

func (r staticRole) ResolveRole(_ context.Context, _ string) (string, error) {
	return string(r), nil
}

var handlerMetrics = metrics.NewServerMetrics("checkout_handler_test")

func newTestRouter(t *testing.T, world *stubWorld) (http.Handler, string) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := application.NewService(log, world, world, world, world, world, world, "")
	tokens := auth.NewManager("test-secret", time.Hour, nil)
	mw := auth.NewMiddleware(tokens, staticRole("user"))

	h := NewHandler(log, svc, nil, mw, nil, handlerMetrics)
	r := chi.NewRouter()
	h.Register(r)

	token, err := tokens.Issue(world.user.ID, world.user.Name, "user")
	require.NoError(t, err)
	return r, token
}

func checkoutRequest(token, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCheckoutAcceptsUseDefaultAddress(t *testing.T) {
	world := &stubWorld{
		user: userdomain.User{ID: "u1", Name: "alice", Address: "1 Main St", Balance: 10_000},
		lines: []cartdomain.Line{
			{ProductID: "mouse-1", Name: "GX Mouse", Price: 2_500, Quantity: 1, Stock: 5},
		},
	}
	router, token := newTestRouter(t, world)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, checkoutRequest(token, `{"shippingAddress":"","useDefaultAddress":true}`))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Message string            `json:"message"`
		Order   orderdomain.Order `json:"order"`
		Balance int64             `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Payment successful, order created", resp.Message)
	assert.Equal(t, "1 Main St", resp.Order.ShippingAddress)
	assert.Equal(t, int64(7_500), resp.Balance)
}

func TestCheckoutUseDefaultAddressOverridesTyped(t *testing.T) {
	world := &stubWorld{
		user: userdomain.User{ID: "u1", Name: "alice", Address: "1 Main St", Balance: 10_000},
		lines: []cartdomain.Line{
			{ProductID: "mouse-1", Name: "GX Mouse", Price: 100, Quantity: 1, Stock: 5},
		},
	}
	router, token := newTestRouter(t, world)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, checkoutRequest(token, `{"shippingAddress":"9 Elm Rd","useDefaultAddress":true}`))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Order orderdomain.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1 Main St", resp.Order.ShippingAddress)
}

func TestCheckoutRejectsTrulyUnknownFields(t *testing.T) {
	world := &stubWorld{
		user: userdomain.User{ID: "u1", Name: "alice", Address: "1 Main St", Balance: 10_000},
	}
	router, token := newTestRouter(t, world)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, checkoutRequest(token, `{"shipingAdress":"typo"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid body")
}
