package order

import "context"

// Repository defines data access for orders.
type Repository interface {
	// CreateOrder persists a new order and fills in its order number.
	CreateOrder(ctx context.Context, o *Order) error

	// GetOrderByID retrieves an order with its items.
	GetOrderByID(ctx context.Context, id string) (*Order, error)

	// ListByUser returns a user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]*Order, error)

	// ListByPharmacy returns a pharmacy's orders, optionally filtered by
	// status, newest first.
	ListByPharmacy(ctx context.Context, pharmacyID string, status Status) ([]*Order, error)

	// UpdateStatusIf advances the status only when the current status is one
	// of from. The guard runs inside the store so two racing transitions
	// cannot both succeed.
	UpdateStatusIf(ctx context.Context, id string, from []Status, to Status) (ok bool, err error)
}
