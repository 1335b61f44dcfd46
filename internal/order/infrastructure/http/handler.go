package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	catalogdomain "github.com/mousegear/store/internal/catalog/domain"
	"github.com/mousegear/store/internal/order/application"
	"github.com/mousegear/store/internal/order/domain"
	"github.com/mousegear/store/internal/platform/web"
	userdomain "github.com/mousegear/store/internal/user/domain"
	"github.com/mousegear/store/pkg/auth"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	auth    *auth.Middleware
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service, auth *auth.Middleware) *Handler {
	return &Handler{
		log:     log,
		service: service,
		auth:    auth,
		tracer:  otel.Tracer("order-http"),
	}
}

func (h *Handler) Register(r chi.Router) {
	r.With(h.auth.Require("")).Post("/order", h.place)
	r.With(h.auth.Require("")).Get("/orders", h.listMine)
	r.With(h.auth.Require("admin")).Get("/allOrders", h.listAll)
	r.With(h.auth.Require("admin")).Patch("/updateOrderStatus", h.updateStatus)
}

func (h *Handler) place(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PlaceOrder")
	defer span.End()

	session, _ := auth.FromContext(ctx)
	var req struct {
		ShippingAddress string `json:"shippingAddress"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	order, err := h.service.Place(ctx, session.UserID, req.ShippingAddress)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusCreated, order)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.FromContext(r.Context())
	orders, err := h.service.ListByUser(r.Context(), session.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, orders)
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListAll(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, orders)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID       string                `json:"orderId"`
		Status        *domain.Status        `json:"status"`
		PaymentStatus *domain.PaymentStatus `json:"paymentStatus"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	order, err := h.service.UpdateStatus(r.Context(), req.OrderID, domain.StatusUpdate{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, order)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrMissingAddress),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, catalogdomain.ErrInsufficientStock):
		web.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		web.Error(w, http.StatusBadRequest, "Failed to update order status: "+err.Error())
	case errors.Is(err, userdomain.ErrNotFound):
		web.Error(w, http.StatusNotFound, "User not found")
	default:
		h.log.Error("order handler error", "path", r.URL.Path, "err", err)
		web.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
