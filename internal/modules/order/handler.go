package order

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
	"github.com/chandamvula/pharmalink-backend/internal/httpx"
	"github.com/chandamvula/pharmalink-backend/internal/modules/auth"
)

// Handler exposes order lifecycle endpoints.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *chi.Mux) {
	router.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleUser))
			r.Post("/create", h.create)
			r.Get("/user/orders", h.listUserOrders)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RolePharmacy))
			r.Get("/pharmacy/orders", h.listPharmacyOrders)
			r.Patch("/{orderId}/approve", h.transition(h.service.Approve))
			r.Patch("/{orderId}/decline", h.transition(h.service.Decline))
			r.Patch("/{orderId}/allocate-to-delivery", h.transition(h.service.AllocateToDelivery))
			r.Patch("/{orderId}/complete", h.transition(h.service.Complete))
		})

		r.Get("/{orderId}", h.get)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	pharmacyID := r.URL.Query().Get("pharmacyId")
	if pharmacyID == "" {
		httpx.Error(w, r, apperr.InvalidInput("pharmacyId query parameter is required"))
		return
	}
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, r, apperr.InvalidInput("invalid request body"))
		return
	}
	o, err := h.service.Create(r.Context(), p.ID, pharmacyID, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, o)
}

// transition adapts one of the pharmacy-side lifecycle methods into a handler.
func (h *Handler) transition(op func(ctx context.Context, pharmacyID, orderID string) (*Order, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.FromContext(r.Context())
		o, err := op(r.Context(), p.ID, chi.URLParam(r, "orderId"))
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, o)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	o, err := h.service.GetOrder(r.Context(), p.ID, string(p.Role), chi.URLParam(r, "orderId"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *Handler) listUserOrders(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	orders, err := h.service.ListUserOrders(r.Context(), p.ID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) listPharmacyOrders(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	orders, err := h.service.ListPharmacyOrders(r.Context(), p.ID, Status(r.URL.Query().Get("status")))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}
