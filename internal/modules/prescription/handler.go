package prescription

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
	"github.com/chandamvula/pharmalink-backend/internal/httpx"
	"github.com/chandamvula/pharmalink-backend/internal/modules/auth"
)

var validate = validator.New()

// Handler exposes prescription request endpoints.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *chi.Mux) {
	router.Route("/api/v1/prescription-requests", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleUser))
			r.Post("/create", h.create)
			r.Get("/user/requests", h.listUserRequests)
			r.Patch("/{requestId}/approve-by-user", h.approveByUser)
			r.Patch("/{requestId}/decline-by-user", h.declineByUser)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RolePharmacy))
			r.Get("/pharmacy/requests", h.listPharmacyRequests)
			r.Patch("/{requestId}/approve-by-pharmacy", h.approveByPharmacy)
			r.Patch("/{requestId}/decline-by-pharmacy", h.declineByPharmacy)
			r.Patch("/{requestId}/cancel", h.cancelByPharmacy)
		})

		r.Get("/{requestId}", h.get)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, r, apperr.InvalidInput("invalid request body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Error(w, r, apperr.InvalidInput("%v", err))
		return
	}
	pr, err := h.service.Create(r.Context(), p.ID, r.URL.Query().Get("pharmacyId"), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, pr)
}

func (h *Handler) approveByPharmacy(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, r, apperr.InvalidInput("invalid request body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Error(w, r, apperr.InvalidInput("%v", err))
		return
	}
	pr, err := h.service.ApproveByPharmacy(r.Context(), p.ID, chi.URLParam(r, "requestId"), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pr)
}

func (h *Handler) declineByPharmacy(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	var req DeclineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, r, apperr.InvalidInput("invalid request body"))
		return
	}
	pr, err := h.service.DeclineByPharmacy(r.Context(), p.ID, chi.URLParam(r, "requestId"), req.Reason)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pr)
}

func (h *Handler) cancelByPharmacy(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	pr, err := h.service.CancelByPharmacy(r.Context(), p.ID, chi.URLParam(r, "requestId"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pr)
}

func (h *Handler) approveByUser(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	pr, o, err := h.service.ApproveByUser(r.Context(), p.ID, chi.URLParam(r, "requestId"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"request": pr, "order": o})
}

func (h *Handler) declineByUser(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	pr, err := h.service.DeclineByUser(r.Context(), p.ID, chi.URLParam(r, "requestId"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pr)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	pr, err := h.service.GetRequest(r.Context(), p.ID, string(p.Role), chi.URLParam(r, "requestId"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pr)
}

func (h *Handler) listUserRequests(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	requests, err := h.service.ListUserRequests(r.Context(), p.ID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, requests)
}

func (h *Handler) listPharmacyRequests(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	requests, err := h.service.ListPharmacyRequests(r.Context(), p.ID, Status(r.URL.Query().Get("status")))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, requests)
}
