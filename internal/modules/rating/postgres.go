package rating

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
)

type postgresRepo struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL rating repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) CreateRating(ctx context.Context, rt *Rating) error {
	query := `
		INSERT INTO ratings (id, order_id, user_id, pharmacy_id, score, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		rt.ID, rt.OrderID, rt.UserID, rt.PharmacyID, rt.Score, rt.Comment,
	).Scan(&rt.CreatedAt)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return apperr.Conflict("order has already been rated")
	}
	if err != nil {
		return fmt.Errorf("inserting rating: %w", err)
	}
	return nil
}

func (r *postgresRepo) ListByPharmacy(ctx context.Context, pharmacyID string) ([]*Rating, error) {
	return r.list(ctx, `pharmacy_id`, pharmacyID)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]*Rating, error) {
	return r.list(ctx, `user_id`, userID)
}

func (r *postgresRepo) list(ctx context.Context, column, id string) ([]*Rating, error) {
	query := `SELECT id, order_id, user_id, pharmacy_id, score, comment, created_at
		FROM ratings WHERE ` + column + ` = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("querying ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]*Rating, 0)
	for rows.Next() {
		var rt Rating
		var comment sql.NullString
		if err := rows.Scan(&rt.ID, &rt.OrderID, &rt.UserID, &rt.PharmacyID,
			&rt.Score, &comment, &rt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning rating: %w", err)
		}
		rt.Comment = comment.String
		ratings = append(ratings, &rt)
	}
	return ratings, rows.Err()
}

func (r *postgresRepo) AverageForPharmacy(ctx context.Context, pharmacyID string) (float64, error) {
	var avg sql.NullFloat64
	query := `SELECT AVG(score) FROM ratings WHERE pharmacy_id = $1`
	if err := r.db.QueryRowContext(ctx, query, pharmacyID).Scan(&avg); err != nil {
		return 0, fmt.Errorf("computing rating average: %w", err)
	}
	return avg.Float64, nil
}
