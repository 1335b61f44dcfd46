package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/mousegear/store/internal/platform/web"
	"github.com/mousegear/store/internal/user/application"
	"github.com/mousegear/store/internal/user/domain"
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
		tracer:  otel.Tracer("user-http"),
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.With(h.auth.Require("")).Post("/logout", h.logout)
	r.With(h.auth.Require("")).Get("/profile", h.profile)
	r.With(h.auth.Require("")).Patch("/updateUser", h.update)
	r.Patch("/changePassword", h.changePassword)
	r.With(h.auth.Require("")).Delete("/user", h.softDelete)
	r.With(h.auth.Require("admin")).Get("/user", h.list)
	r.With(h.auth.Require("admin")).Patch("/restoreUser", h.restore)
}

type registerReq struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (req registerReq) validate() string {
	switch {
	case len(req.Name) < 3:
		return "Username must have at least 3 characters"
	case !strings.Contains(req.Email, "@"):
		return "Invalid email address"
	case len(req.Phone) < 10:
		return "Phone number must have at least 10 characters"
	case len(req.Address) < 5:
		return "Address must have at least 5 characters"
	case len(req.Password) < 6:
		return "Password must have at least 6 characters"
	case req.Password != req.ConfirmPassword:
		return "Password not match"
	}
	return ""
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Register")
	defer span.End()

	var req registerReq
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	if msg := req.validate(); msg != "" {
		web.Error(w, http.StatusBadRequest, msg)
		return
	}
	u, err := h.service.Register(ctx, application.RegisterInput{
		Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address, Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNameTaken) {
			web.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusCreated, map[string]any{"message": "User registered successfully!", "user": u})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Login")
	defer span.End()

	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	token, err := h.service.Login(ctx, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			web.Error(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.fail(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "token", Value: token, Path: "/", HttpOnly: true})
	web.JSON(w, http.StatusOK, map[string]string{"message": "User logged in successfully!", "token": token})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), auth.TokenFromRequest(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "token", Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	web.JSON(w, http.StatusOK, map[string]string{"message": "User logged out"})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.FromContext(r.Context())
	u, err := h.service.Profile(r.Context(), session.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, u)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, users)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.FromContext(r.Context())
	var req struct {
		Email   *string `json:"email"`
		Phone   *string `json:"phone"`
		Address *string `json:"address"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	u, err := h.service.Update(r.Context(), session.UserID, domain.PartialUpdate{
		Email: req.Email, Phone: req.Phone, Address: req.Address,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, u)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	if len(req.NewPassword) < 6 {
		web.Error(w, http.StatusBadRequest, "Password must have at least 6 characters")
		return
	}
	if err := h.service.ChangePassword(r.Context(), req.Name, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			web.Error(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.FromContext(r.Context())
	if err := h.service.SoftDelete(r.Context(), session.UserID); err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	u, err := h.service.Restore(r.Context(), req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	web.JSON(w, http.StatusOK, map[string]any{"message": "User restored", "user": u})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		web.Error(w, http.StatusNotFound, "User not found")
		return
	}
	h.log.Error("user handler error", "path", r.URL.Path, "err", err)
	web.Error(w, http.StatusInternalServerError, "Internal server error")
}
