package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/mousegear/store/internal/cart/application"
	"github.com/mousegear/store/internal/cart/domain"
	catalogdomain "github.com/mousegear/store/internal/catalog/domain"
	"github.com/mousegear/store/internal/platform/web"
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
		tracer:  otel.Tracer("cart-http"),
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Require(""))
		r.Get("/cart", h.get)
		r.Post("/addToCart", h.add)
		r.Patch("/updateCart", h.update)
		r.Delete("/removeFromCart", h.remove)
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.FromContext(r.Context())
	lines, err := h.service.Get(r.Context(), session.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, lines)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AddToCart")
	defer span.End()

	session, _ := auth.FromContext(ctx)
	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.ProductID == "" || req.Quantity == 0 {
		web.Error(w, http.StatusBadRequest, "Product ID and quantity required")
		return
	}
	lines, err := h.service.AddItem(ctx, session.UserID, req.ProductID, req.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, map[string]any{"message": "Added to cart successfully", "cart": lines})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.FromContext(r.Context())
	productID := r.URL.Query().Get("id")
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	if productID == "" {
		web.Error(w, http.StatusBadRequest, "Product ID and quantity required")
		return
	}
	lines, err := h.service.UpdateItem(r.Context(), session.UserID, productID, req.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, lines)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.FromContext(r.Context())
	var req struct {
		ProductID string `json:"productId"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	lines, err := h.service.RemoveItem(r.Context(), session.UserID, req.ProductID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, map[string]any{"message": "Removed from cart successfully", "cart": lines})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalogdomain.ErrNotFound):
		web.Error(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, domain.ErrItemNotFound):
		web.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, application.ErrInvalidQuantity), errors.Is(err, application.ErrExceedsStock):
		web.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("cart handler error", "path", r.URL.Path, "err", err)
		web.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
