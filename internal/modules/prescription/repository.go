package prescription

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository defines data access for prescription requests.
type Repository interface {
	// CreateRequest persists a new request and fills in its request number.
	CreateRequest(ctx context.Context, req *Request) error

	// GetRequestByID retrieves a request with its curated list.
	GetRequestByID(ctx context.Context, id string) (*Request, error)

	// ListByUser returns a user's requests, newest first.
	ListByUser(ctx context.Context, userID string) ([]*Request, error)

	// ListByPharmacy returns a pharmacy's requests, optionally filtered by
	// status, newest first.
	ListByPharmacy(ctx context.Context, pharmacyID string, status Status) ([]*Request, error)

	// UpdateStatusIf advances the status only when the current status is one
	// of from. The guard runs inside the store so racing transitions cannot
	// both succeed.
	UpdateStatusIf(ctx context.Context, id string, from []Status, to Status) (ok bool, err error)

	// SetApproval stores the curated list and estimated price and moves the
	// request to PHARMACY_APPROVED, guarded on the current status being
	// PENDING.
	SetApproval(ctx context.Context, id string, items []CuratedItem, price decimal.Decimal) (ok bool, err error)

	// SetRejection stores the reason and moves the request to
	// PHARMACY_REJECTED, guarded on the current status being PENDING.
	SetRejection(ctx context.Context, id, reason string) (ok bool, err error)
}
