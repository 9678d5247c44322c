package prescription

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/chandamvula/pharmalink-backend/internal/modules/order"
)

type stubService struct{}

func (stubService) Create(context.Context, string, string, CreateRequest) (*Request, error) {
	return nil, nil
}
func (stubService) ApproveByPharmacy(context.Context, string, string, ApproveRequest) (*Request, error) {
	return nil, nil
}
func (stubService) DeclineByPharmacy(context.Context, string, string, string) (*Request, error) {
	return nil, nil
}
func (stubService) CancelByPharmacy(context.Context, string, string) (*Request, error) {
	return nil, nil
}
func (stubService) ApproveByUser(context.Context, string, string) (*Request, *order.Order, error) {
	return nil, nil, nil
}
func (stubService) DeclineByUser(context.Context, string, string) (*Request, error) {
	return nil, nil
}
func (stubService) GetRequest(context.Context, string, string, string) (*Request, error) {
	return nil, nil
}
func (stubService) ListUserRequests(context.Context, string) ([]*Request, error) {
	return nil, nil
}
func (stubService) ListPharmacyRequests(context.Context, string, Status) ([]*Request, error) {
	return nil, nil
}

func TestRegisterRoutes_ServesDocumentedPaths(t *testing.T) {
	router := chi.NewRouter()
	NewHandler(stubService{}).RegisterRoutes(router)

	registered := map[string]bool{}
	walker := func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		registered[method+" "+route] = true
		return nil
	}
	if err := chi.Walk(router, walker); err != nil {
		t.Fatalf("walking routes: %v", err)
	}

	want := []string{
		"POST /api/v1/prescription-requests/create",
		"PATCH /api/v1/prescription-requests/{requestId}/approve-by-pharmacy",
		"PATCH /api/v1/prescription-requests/{requestId}/approve-by-user",
		"PATCH /api/v1/prescription-requests/{requestId}/decline-by-pharmacy",
		"PATCH /api/v1/prescription-requests/{requestId}/decline-by-user",
		"PATCH /api/v1/prescription-requests/{requestId}/cancel",
		"GET /api/v1/prescription-requests/{requestId}",
	}
	for _, route := range want {
		if !registered[route] {
			t.Errorf("route %s is not served; got %v", route, registered)
		}
	}
}
