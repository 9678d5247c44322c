package pharmacy

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
	"github.com/chandamvula/pharmalink-backend/internal/httpx"
	"github.com/chandamvula/pharmalink-backend/internal/modules/auth"
)

var validate = validator.New()

// Handler exposes pharmacy account and discovery endpoints.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *chi.Mux) {
	router.Post("/api/v1/pharmacies/sign-up", h.signUp)

	router.Route("/api/v1/pharmacies", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RolePharmacy))
			r.Patch("/edit", h.edit)
			r.Delete("/delete", h.delete)
			r.Get("/medicine", h.ownStock)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleUser))
			r.Get("/nearby", h.nearby)
			r.Get("/search", h.search)
			r.Get("/details", h.details)
			r.Get("/search-by-medicine", h.searchByMedicine)
		})
	})
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, r, apperr.InvalidInput("invalid request body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Error(w, r, apperr.InvalidInput("%v", err))
		return
	}
	p, err := h.service.SignUp(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "pharmacy registered successfully",
		"pharmacy": p,
	})
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	var req UpdateRequest
	if err := httpx.DecodePatch(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	updated, err := h.service.UpdateProfile(r.Context(), p.ID, req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, r, apperr.InvalidInput("invalid request body"))
		return
	}
	if err := h.service.DeleteAccount(r.Context(), p.ID, req.Password); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "pharmacy and associated data deleted successfully"})
}

func (h *Handler) ownStock(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	medicines, err := h.service.OwnStock(r.Context(), p.ID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, medicines)
}

func (h *Handler) nearby(w http.ResponseWriter, r *http.Request) {
	lat, lng, maxDistance, err := geoParams(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	pharmacies, err := h.service.Nearby(r.Context(), lat, lng, maxDistance)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pharmacies)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	lat, lng, maxDistance, err := geoParams(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	pharmacies, err := h.service.SearchNearby(r.Context(), r.URL.Query().Get("name"), lat, lng, maxDistance)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pharmacies)
}

func (h *Handler) details(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("pharmacyId")
	if id == "" {
		httpx.Error(w, r, apperr.InvalidInput("pharmacy ID is required"))
		return
	}
	details, err := h.service.GetDetails(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *Handler) searchByMedicine(w http.ResponseWriter, r *http.Request) {
	lat, lng, maxDistance, err := geoParams(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	groups, err := h.service.SearchByMedicine(r.Context(), r.URL.Query().Get("name"), lat, lng, maxDistance)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, groups)
}

func geoParams(r *http.Request) (lat, lng, maxDistance float64, err error) {
	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		return 0, 0, 0, apperr.InvalidInput("latitude and longitude are required")
	}
	maxDistance, _ = strconv.ParseFloat(q.Get("maxDistance"), 64)
	return lat, lng, maxDistance, nil
}
