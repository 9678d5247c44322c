package medicine

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

// Handler exposes medicine catalog endpoints.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *chi.Mux) {
	router.Route("/api/v1/medicines", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RolePharmacy))
			r.Post("/create", h.create)
			r.Patch("/{medicineId}", h.edit)
			r.Delete("/{medicineId}", h.delete)
		})

		r.Get("/search", h.search)
		r.Get("/{medicineId}", h.get)
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
	m, err := h.service.Create(r.Context(), p.ID, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		httpx.Error(w, r, apperr.InvalidInput("name query parameter is required"))
		return
	}
	results, err := h.service.SearchByName(r.Context(), name)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, results)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.GetMedicine(r.Context(), chi.URLParam(r, "medicineId"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	var req UpdateRequest
	if err := httpx.DecodePatch(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	m, err := h.service.Update(r.Context(), p.ID, chi.URLParam(r, "medicineId"), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	if err := h.service.Delete(r.Context(), p.ID, chi.URLParam(r, "medicineId")); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "medicine deleted successfully"})
}
