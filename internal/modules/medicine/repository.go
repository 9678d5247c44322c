package medicine

import (
	"context"
	"time"
)

// Pool identifies which stock counter a ledger operation acts on.
type Pool string

const (
	// PoolAvailable is the available-to-sell counter.
	PoolAvailable Pool = "quantity"
	// PoolOnHold is the counter reserved against approved prescription
	// requests.
	PoolOnHold Pool = "on_hold_quantity"
)

// Repository defines data access for medicines, including the atomic stock
// mutations the ledger builds on.
type Repository interface {
	// CreateMedicine persists a new medicine and fills in its number.
	CreateMedicine(ctx context.Context, m *Medicine) error

	// GetMedicineByID retrieves a medicine.
	GetMedicineByID(ctx context.Context, id string) (*Medicine, error)

	// ListByPharmacy returns a pharmacy's catalog.
	ListByPharmacy(ctx context.Context, pharmacyID string) ([]*Medicine, error)

	// ListAll returns the whole catalog, for in-process search ranking.
	ListAll(ctx context.Context) ([]*Medicine, error)

	// UpdateMedicine persists the editable fields and stock counters.
	UpdateMedicine(ctx context.Context, m *Medicine) error

	// DeleteMedicine removes one medicine.
	DeleteMedicine(ctx context.Context, id string) error

	// DeleteByPharmacy removes a pharmacy's whole catalog, returning the
	// removed ids for cascade cleanup.
	DeleteByPharmacy(ctx context.Context, pharmacyID string) ([]string, error)

	// AdjustPool atomically applies delta to one pool, refusing to drive it
	// negative. ok is false when the guard failed (or the row is missing).
	AdjustPool(ctx context.Context, id string, pool Pool, delta int) (ok bool, err error)

	// MoveToHold atomically moves qty from the available pool to the hold
	// pool. ok is false when available stock is insufficient.
	MoveToHold(ctx context.Context, id string, qty int) (ok bool, err error)

	// SetNotifiedFlags persists the per-threshold notification latches.
	SetNotifiedFlags(ctx context.Context, id string, lowStock, outOfStock, expiry bool) error

	// ListExpired returns medicines past their expiry date whose expiry
	// alert has not fired yet.
	ListExpired(ctx context.Context, now time.Time) ([]*Medicine, error)
}
