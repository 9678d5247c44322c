package pharmacy

import "context"

// Repository defines data access for pharmacy accounts.
type Repository interface {
	// CreatePharmacy persists a new pharmacy and fills in its number.
	CreatePharmacy(ctx context.Context, p *Pharmacy) error

	// GetPharmacyByID retrieves a pharmacy.
	GetPharmacyByID(ctx context.Context, id string) (*Pharmacy, error)

	// GetPharmacyByNumber retrieves a pharmacy by its human-facing number.
	GetPharmacyByNumber(ctx context.Context, number int64) (*Pharmacy, error)

	// GetPharmacyByEmail retrieves a pharmacy by unique email.
	GetPharmacyByEmail(ctx context.Context, email string) (*Pharmacy, error)

	// UpdatePharmacy persists the editable fields.
	UpdatePharmacy(ctx context.Context, p *Pharmacy) error

	// UpdateRating stores a freshly computed average rating.
	UpdateRating(ctx context.Context, id string, rating float64) error

	// DeletePharmacy removes the account.
	DeletePharmacy(ctx context.Context, id string) error

	// ListNearby returns pharmacies within maxDistance meters of the given
	// point, closest first. The distance computation is delegated to the
	// store.
	ListNearby(ctx context.Context, lat, lng, maxDistance float64) ([]*Pharmacy, error)
}
