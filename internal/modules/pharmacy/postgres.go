package pharmacy

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const pharmacyColumns = `id, pharmacy_number, email, password_hash, name, phone,
	latitude, longitude, suggested_address, opening_days, opening_time, closing_time,
	active_status, delivery_availability, rating, created_at, updated_at`

func (r *postgresRepo) CreatePharmacy(ctx context.Context, p *Pharmacy) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO pharmacies
		  (id, email, password_hash, name, phone, latitude, longitude, suggested_address,
		   opening_days, opening_time, closing_time, active_status, delivery_availability, rating)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING pharmacy_number, created_at, updated_at`,
		p.ID, p.Email, p.PasswordHash, p.Name, p.Phone, p.Latitude, p.Longitude,
		p.SuggestedAddress, pq.Array(p.OpeningDays), p.OpeningTime, p.ClosingTime,
		p.ActiveStatus, p.DeliveryAvailability, p.Rating).
		Scan(&p.PharmacyNumber, &p.CreatedAt, &p.UpdatedAt)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return apperr.Conflict("pharmacy already registered")
	}
	if err != nil {
		return fmt.Errorf("insert pharmacy: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetPharmacyByID(ctx context.Context, id string) (*Pharmacy, error) {
	return r.scanPharmacy(r.db.QueryRowContext(ctx,
		`SELECT `+pharmacyColumns+` FROM pharmacies WHERE id=$1`, id))
}

func (r *postgresRepo) GetPharmacyByNumber(ctx context.Context, number int64) (*Pharmacy, error) {
	return r.scanPharmacy(r.db.QueryRowContext(ctx,
		`SELECT `+pharmacyColumns+` FROM pharmacies WHERE pharmacy_number=$1`, number))
}

func (r *postgresRepo) GetPharmacyByEmail(ctx context.Context, email string) (*Pharmacy, error) {
	return r.scanPharmacy(r.db.QueryRowContext(ctx,
		`SELECT `+pharmacyColumns+` FROM pharmacies WHERE email=$1`, email))
}

func (r *postgresRepo) UpdatePharmacy(ctx context.Context, p *Pharmacy) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE pharmacies
		SET name=$1, phone=$2, latitude=$3, longitude=$4, suggested_address=$5,
		    opening_days=$6, opening_time=$7, closing_time=$8,
		    active_status=$9, delivery_availability=$10, updated_at=$11
		WHERE id=$12`,
		p.Name, p.Phone, p.Latitude, p.Longitude, p.SuggestedAddress,
		pq.Array(p.OpeningDays), p.OpeningTime, p.ClosingTime,
		p.ActiveStatus, p.DeliveryAvailability, time.Now().UTC(), p.ID)
	return err
}

func (r *postgresRepo) UpdateRating(ctx context.Context, id string, rating float64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE pharmacies SET rating=$1, updated_at=$2 WHERE id=$3`,
		rating, time.Now().UTC(), id)
	return err
}

func (r *postgresRepo) DeletePharmacy(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pharmacies WHERE id=$1`, id)
	return err
}

// ListNearby ranks by haversine distance computed in SQL so the store's
// planner does the proximity work.
func (r *postgresRepo) ListNearby(ctx context.Context, lat, lng, maxDistance float64) ([]*Pharmacy, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+pharmacyColumns+`,
		  6371000 * 2 * asin(sqrt(
		    power(sin(radians(($1 - latitude) / 2)), 2) +
		    cos(radians(latitude)) * cos(radians($1)) *
		    power(sin(radians(($2 - longitude) / 2)), 2)
		  )) AS distance
		FROM pharmacies
		WHERE active_status = true
		AND 6371000 * 2 * asin(sqrt(
		    power(sin(radians(($1 - latitude) / 2)), 2) +
		    cos(radians(latitude)) * cos(radians($1)) *
		    power(sin(radians(($2 - longitude) / 2)), 2)
		  )) <= $3
		ORDER BY distance ASC`, lat, lng, maxDistance)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Pharmacy
	for rows.Next() {
		p := &Pharmacy{}
		if err := rows.Scan(&p.ID, &p.PharmacyNumber, &p.Email, &p.PasswordHash, &p.Name, &p.Phone,
			&p.Latitude, &p.Longitude, &p.SuggestedAddress, pq.Array(&p.OpeningDays),
			&p.OpeningTime, &p.ClosingTime, &p.ActiveStatus, &p.DeliveryAvailability,
			&p.Rating, &p.CreatedAt, &p.UpdatedAt, &p.Distance); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postgresRepo) scanPharmacy(row *sql.Row) (*Pharmacy, error) {
	p := &Pharmacy{}
	err := row.Scan(&p.ID, &p.PharmacyNumber, &p.Email, &p.PasswordHash, &p.Name, &p.Phone,
		&p.Latitude, &p.Longitude, &p.SuggestedAddress, pq.Array(&p.OpeningDays),
		&p.OpeningTime, &p.ClosingTime, &p.ActiveStatus, &p.DeliveryAvailability,
		&p.Rating, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("pharmacy not found")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
