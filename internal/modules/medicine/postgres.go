package medicine

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

const medicineColumns = `id, medicine_number, pharmacy_id, identification_code, name, brand,
	description, price, quantity, on_hold_quantity, dosage, category, expiry_date,
	prescription_required, low_stock_notified, out_of_stock_notified, expiry_notified,
	created_at, updated_at`

func (r *postgresRepo) CreateMedicine(ctx context.Context, m *Medicine) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO medicines
		  (id, pharmacy_id, identification_code, name, brand, description, price,
		   quantity, on_hold_quantity, dosage, category, expiry_date, prescription_required)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING medicine_number, created_at, updated_at`,
		m.ID, m.PharmacyID, m.IdentificationCode, m.Name, m.Brand, m.Description,
		m.Price, m.Quantity, m.OnHoldQuantity, m.Dosage, m.Category,
		m.ExpiryDate, m.PrescriptionRequired).
		Scan(&m.MedicineNumber, &m.CreatedAt, &m.UpdatedAt)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return apperr.Conflict("identification code must be unique")
	}
	if err != nil {
		return fmt.Errorf("insert medicine: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetMedicineByID(ctx context.Context, id string) (*Medicine, error) {
	m := &Medicine{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+medicineColumns+` FROM medicines WHERE id=$1`, id).
		Scan(scanTargets(m)...)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("medicine not found")
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *postgresRepo) ListByPharmacy(ctx context.Context, pharmacyID string) ([]*Medicine, error) {
	return r.queryMedicines(ctx,
		`SELECT `+medicineColumns+` FROM medicines WHERE pharmacy_id=$1 ORDER BY name ASC`,
		pharmacyID)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]*Medicine, error) {
	return r.queryMedicines(ctx,
		`SELECT ` + medicineColumns + ` FROM medicines ORDER BY name ASC`)
}

func (r *postgresRepo) UpdateMedicine(ctx context.Context, m *Medicine) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE medicines
		SET name=$1, brand=$2, description=$3, price=$4, quantity=$5, dosage=$6,
		    category=$7, expiry_date=$8, prescription_required=$9,
		    low_stock_notified=$10, out_of_stock_notified=$11, expiry_notified=$12,
		    updated_at=$13
		WHERE id=$14`,
		m.Name, m.Brand, m.Description, m.Price, m.Quantity, m.Dosage,
		m.Category, m.ExpiryDate, m.PrescriptionRequired,
		m.LowStockNotified, m.OutOfStockNotified, m.ExpiryNotified,
		time.Now().UTC(), m.ID)
	return err
}

func (r *postgresRepo) DeleteMedicine(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM medicines WHERE id=$1`, id)
	return err
}

func (r *postgresRepo) DeleteByPharmacy(ctx context.Context, pharmacyID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`DELETE FROM medicines WHERE pharmacy_id=$1 RETURNING id`, pharmacyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AdjustPool is the atomic check-and-mutate the ledger relies on: a negative
// delta only applies when the pool can cover it, guarded inside one UPDATE so
// concurrent reservations cannot oversell.
func (r *postgresRepo) AdjustPool(ctx context.Context, id string, pool Pool, delta int) (bool, error) {
	col := string(pool)
	res, err := r.db.ExecContext(ctx, `
		UPDATE medicines
		SET `+col+` = `+col+` + $1, updated_at = $2
		WHERE id = $3 AND `+col+` + $1 >= 0`,
		delta, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *postgresRepo) MoveToHold(ctx context.Context, id string, qty int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medicines
		SET quantity = quantity - $1, on_hold_quantity = on_hold_quantity + $1, updated_at = $2
		WHERE id = $3 AND quantity >= $1`,
		qty, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *postgresRepo) SetNotifiedFlags(ctx context.Context, id string, lowStock, outOfStock, expiry bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE medicines
		SET low_stock_notified=$1, out_of_stock_notified=$2, expiry_notified=$3
		WHERE id=$4`,
		lowStock, outOfStock, expiry, id)
	return err
}

func (r *postgresRepo) ListExpired(ctx context.Context, now time.Time) ([]*Medicine, error) {
	return r.queryMedicines(ctx,
		`SELECT `+medicineColumns+` FROM medicines WHERE expiry_date < $1 AND expiry_notified = false`,
		now)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *postgresRepo) queryMedicines(ctx context.Context, query string, args ...interface{}) ([]*Medicine, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Medicine
	for rows.Next() {
		m := &Medicine{}
		if err := rows.Scan(scanTargets(m)...); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanTargets(m *Medicine) []interface{} {
	return []interface{}{
		&m.ID, &m.MedicineNumber, &m.PharmacyID, &m.IdentificationCode, &m.Name, &m.Brand,
		&m.Description, &m.Price, &m.Quantity, &m.OnHoldQuantity, &m.Dosage, &m.Category,
		&m.ExpiryDate, &m.PrescriptionRequired,
		&m.LowStockNotified, &m.OutOfStockNotified, &m.ExpiryNotified,
		&m.CreatedAt, &m.UpdatedAt,
	}
}
