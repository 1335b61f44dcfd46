package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/mousegear/store/internal/catalog/application"
	"github.com/mousegear/store/internal/catalog/domain"
	"github.com/mousegear/store/internal/platform/web"
	"github.com/mousegear/store/pkg/auth"
)

type Handler struct {
	log       *slog.Logger
	service   *application.Service
	inventory *application.Inventory
	auth      *auth.Middleware
	tracer    trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service, inventory *application.Inventory, auth *auth.Middleware) *Handler {
	return &Handler{
		log:       log,
		service:   service,
		inventory: inventory,
		auth:      auth,
		tracer:    otel.Tracer("catalog-http"),
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/detail", h.detail)
	r.Get("/search", h.search)
	r.Get("/filter", h.filter)
	r.With(h.auth.Require("admin")).Get("/product", h.list)
	r.With(h.auth.Require("admin")).Post("/create", h.create)
	r.With(h.auth.Require("admin")).Patch("/update", h.update)
	r.With(h.auth.Require("admin")).Delete("/product", h.softDelete)
	r.With(h.auth.Require("admin")).Patch("/restore", h.restore)
	r.With(h.auth.Require("admin")).Patch("/restock", h.restock)
}

type productView struct {
	ID          string          `json:"id"`
	ProductName string          `json:"productName"`
	Price       int64           `json:"price"`
	Brand       string          `json:"brand"`
	Quantity    int             `json:"quantity"`
	Category    domain.Category `json:"category"`
	Description string          `json:"description"`
	ImgURL      string          `json:"imgUrl"`
}

func viewOf(p domain.Product) productView {
	return productView{
		ID:          p.ID,
		ProductName: p.Name,
		Price:       p.Price,
		Brand:       p.Brand,
		Quantity:    p.Quantity,
		Category:    p.Category,
		Description: p.Description,
		ImgURL:      p.ImgURL,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, products)
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, viewOf(p))
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Search(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if len(products) == 0 {
		web.Error(w, http.StatusNotFound, "No products found")
		return
	}
	web.JSON(w, http.StatusOK, map[string]any{"products": views(products)})
}

func (h *Handler) filter(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.FilterByCategory(r.Context(), domain.Category(r.URL.Query().Get("category")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if len(products) == 0 {
		web.Error(w, http.StatusNotFound, "No products found")
		return
	}
	web.JSON(w, http.StatusOK, map[string]any{"products": views(products)})
}

func views(products []domain.Product) []productView {
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, viewOf(p))
	}
	return out
}

type createReq struct {
	Name        string          `json:"name"`
	Price       int64           `json:"price"`
	Quantity    int             `json:"quantity"`
	Brand       string          `json:"brand"`
	Category    domain.Category `json:"category"`
	Description string          `json:"description"`
	ImgURL      string          `json:"imgUrl"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateProduct")
	defer span.End()

	var req createReq
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	p, err := h.service.Create(ctx, application.CreateInput{
		Name: req.Name, Price: req.Price, Quantity: req.Quantity, Brand: req.Brand,
		Category: req.Category, Description: req.Description, ImgURL: req.ImgURL,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusCreated, map[string]any{"message": "Product created successfully", "product": p})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID          string           `json:"id"`
		Name        *string          `json:"name"`
		Price       *int64           `json:"price"`
		Quantity    *int             `json:"quantity"`
		Brand       *string          `json:"brand"`
		Category    *domain.Category `json:"category"`
		Description *string          `json:"description"`
		ImgURL      *string          `json:"imgUrl"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	p, err := h.service.Update(r.Context(), req.ID, domain.PartialUpdate{
		Name: req.Name, Price: req.Price, Quantity: req.Quantity, Brand: req.Brand,
		Category: req.Category, Description: req.Description, ImgURL: req.ImgURL,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, p)
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.service.SoftDelete(r.Context(), req.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	p, err := h.service.Restore(r.Context(), req.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, map[string]any{"message": "Product restored", "product": p})
}

func (h *Handler) restock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.inventory.Restock(r.Context(), req.ID, req.Quantity); err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, map[string]string{"message": "Stock updated"})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		web.Error(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, application.ErrInvalidInput),
		errors.Is(err, application.ErrInvalidQuantity):
		web.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("catalog handler error", "path", r.URL.Path, "err", err)
		web.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
