package rating

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

// Handler exposes rating endpoints.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *chi.Mux) {
	router.Route("/api/v1/ratings", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleUser))
			r.Post("/add", h.add)
			r.Get("/user/ratings", h.listUserRatings)
		})

		r.Get("/pharmacy/{pharmacyId}", h.listPharmacyRatings)
		r.Get("/pharmacy/{pharmacyId}/average", h.average)
	})
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
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
	rt, err := h.service.Add(r.Context(), p.ID, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rt)
}

func (h *Handler) listPharmacyRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.service.ListPharmacyRatings(r.Context(), chi.URLParam(r, "pharmacyId"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ratings)
}

func (h *Handler) listUserRatings(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	ratings, err := h.service.ListUserRatings(r.Context(), p.ID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ratings)
}

func (h *Handler) average(w http.ResponseWriter, r *http.Request) {
	avg, err := h.service.Average(r.Context(), chi.URLParam(r, "pharmacyId"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]float64{"average": avg})
}
