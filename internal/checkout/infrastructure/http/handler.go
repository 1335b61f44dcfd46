package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	cartdomain "github.com/mousegear/store/internal/cart/domain"
	catalogdomain "github.com/mousegear/store/internal/catalog/domain"
	"github.com/mousegear/store/internal/checkout/application"
	orderdomain "github.com/mousegear/store/internal/order/domain"
	"github.com/mousegear/store/internal/platform/web"
	userapp "github.com/mousegear/store/internal/user/application"
	userdomain "github.com/mousegear/store/internal/user/domain"
	"github.com/mousegear/store/pkg/auth"
	"github.com/mousegear/store/pkg/idempotency"
	"github.com/mousegear/store/pkg/metrics"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	ledger  *userapp.Ledger
	auth    *auth.Middleware
	idem    *idempotency.Store
	metrics *metrics.ServerMetrics
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service, ledger *userapp.Ledger,
	auth *auth.Middleware, idem *idempotency.Store, m *metrics.ServerMetrics) *Handler {
	return &Handler{
		log:     log,
		service: service,
		ledger:  ledger,
		auth:    auth,
		idem:    idem,
		metrics: m,
		tracer:  otel.Tracer("checkout-http"),
	}
}

func (h *Handler) Register(r chi.Router) {
	r.With(h.auth.Require(""), idempotency.Middleware(h.idem)).Post("/checkout", h.checkout)
	r.With(h.auth.Require("admin")).Patch("/addBalance", h.addBalance)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Checkout")
	defer span.End()

	session, _ := auth.FromContext(ctx)
	var req struct {
		ShippingAddress   string `json:"shippingAddress"`
		UseDefaultAddress bool   `json:"useDefaultAddress"`
	}
	// Body is optional: an empty request falls back to the stored address.
	if r.ContentLength > 0 {
		if err := web.Decode(r, &req); err != nil {
			web.Error(w, http.StatusBadRequest, "invalid body")
			return
		}
	}
	if req.UseDefaultAddress {
		// Asking for the stored address wins over anything typed in.
		req.ShippingAddress = ""
	}

	result, err := h.service.Checkout(ctx, session.UserID, req.ShippingAddress)
	if err != nil {
		h.metrics.Checkouts.WithLabelValues(checkoutResult(err)).Inc()
		h.fail(w, r, err)
		return
	}
	h.metrics.Checkouts.WithLabelValues("success").Inc()

	web.JSON(w, http.StatusOK, map[string]any{
		"message": "Payment successful, order created",
		"order":   result.Order,
		"balance": result.Balance,
	})
}

func (h *Handler) addBalance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string `json:"id"`
		Amount int64  `json:"amount"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid amount format")
		return
	}
	balance, err := h.ledger.Credit(r.Context(), req.ID, req.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, map[string]any{
		"message": "Balance updated successfully",
		"balance": balance,
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, cartdomain.ErrEmptyCart),
		errors.Is(err, catalogdomain.ErrInsufficientStock),
		errors.Is(err, userdomain.ErrInsufficientFunds),
		errors.Is(err, orderdomain.ErrMissingAddress):
		web.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, userdomain.ErrInvalidAmount):
		web.Error(w, http.StatusBadRequest, "Invalid amount format")
	case errors.Is(err, userdomain.ErrNotFound):
		web.Error(w, http.StatusNotFound, "User not found")
	default:
		h.log.Error("checkout handler error", "path", r.URL.Path, "err", err)
		web.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}

func checkoutResult(err error) string {
	switch {
	case errors.Is(err, cartdomain.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, catalogdomain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, userdomain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, orderdomain.ErrMissingAddress):
		return "missing_address"
	case errors.Is(err, application.ErrTransactionAborted):
		return "aborted"
	default:
		return "error"
	}
}
