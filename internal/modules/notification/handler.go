package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chandamvula/pharmalink-backend/internal/httpx"
	"github.com/chandamvula/pharmalink-backend/internal/modules/auth"
)

// Handler exposes the notification inbox endpoints.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *chi.Mux) {
	router.Route("/api/v1/notifications", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Get("/", h.list)
		r.Patch("/{notificationId}/read", h.markRead)
		r.Delete("/{notificationId}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	out, err := h.service.ListMine(r.Context(), string(p.Role), p.ID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	n, err := h.service.MarkRead(r.Context(), chi.URLParam(r, "notificationId"), string(p.Role), p.ID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"message":      "notification marked as read",
		"notification": n,
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "notificationId"), string(p.Role), p.ID); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "notification deleted successfully"})
}
