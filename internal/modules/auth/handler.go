package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
	"github.com/chandamvula/pharmalink-backend/internal/httpx"
)

// Handler exposes the login endpoints.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *chi.Mux) {
	router.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/user/login", h.login(RoleUser))
		r.Post("/pharmacy/login", h.login(RolePharmacy))
	})
}

func (h *Handler) login(role Role) http.HandlerFunc {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, r, apperr.InvalidInput("invalid request body"))
			return
		}

		token, account, err := h.service.Login(r.Context(), role, req.Email, req.Password)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}

		httpx.JSON(w, http.StatusOK, map[string]interface{}{
			"message": "login successful",
			"token":   token,
			"account": map[string]string{
				"id":   account.AccountID(),
				"role": string(account.AccountRole()),
			},
		})
	}
}
