package rating

import "context"

// Repository defines data access for ratings.
type Repository interface {
	// CreateRating persists a rating. Fails with Conflict when the order has
	// already been rated.
	CreateRating(ctx context.Context, rt *Rating) error

	// ListByPharmacy returns a pharmacy's ratings, newest first.
	ListByPharmacy(ctx context.Context, pharmacyID string) ([]*Rating, error)

	// ListByUser returns the ratings a user has left, newest first.
	ListByUser(ctx context.Context, userID string) ([]*Rating, error)

	// AverageForPharmacy computes the current mean score, zero when unrated.
	AverageForPharmacy(ctx context.Context, pharmacyID string) (float64, error)
}
