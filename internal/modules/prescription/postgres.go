package prescription

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
)

type postgresRepo struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL prescription request repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

const requestColumns = `id, request_number, user_id, pharmacy_id, filepath, notes,
	available_medicines, estimated_price, rejection_reason, order_type, status, created_at, updated_at`

func (r *postgresRepo) CreateRequest(ctx context.Context, req *Request) error {
	query := `
		INSERT INTO prescription_requests (id, user_id, pharmacy_id, filepath, notes, order_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING request_number, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		req.ID, req.UserID, req.PharmacyID, req.Filepath, req.Notes, req.OrderType, req.Status,
	).Scan(&req.RequestNumber, &req.CreatedAt, &req.UpdatedAt)
}

func (r *postgresRepo) GetRequestByID(ctx context.Context, id string) (*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM prescription_requests WHERE id = $1`

	req, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("prescription request not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying prescription request: %w", err)
	}
	return req, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM prescription_requests
		WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user prescription requests: %w", err)
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *postgresRepo) ListByPharmacy(ctx context.Context, pharmacyID string, status Status) ([]*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM prescription_requests WHERE pharmacy_id = $1`
	args := []interface{}{pharmacyID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying pharmacy prescription requests: %w", err)
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *postgresRepo) UpdateStatusIf(ctx context.Context, id string, from []Status, to Status) (bool, error) {
	states := make([]string, len(from))
	for i, s := range from {
		states[i] = string(s)
	}

	query := `
		UPDATE prescription_requests
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = ANY($3)`

	res, err := r.db.ExecContext(ctx, query, to, id, pq.Array(states))
	if err != nil {
		return false, fmt.Errorf("updating prescription request status: %w", err)
	}
	return oneRowAffected(res)
}

func (r *postgresRepo) SetApproval(ctx context.Context, id string, items []CuratedItem, price decimal.Decimal) (bool, error) {
	list, err := json.Marshal(items)
	if err != nil {
		return false, fmt.Errorf("marshaling curated list: %w", err)
	}

	query := `
		UPDATE prescription_requests
		SET available_medicines = $1, estimated_price = $2, status = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5`

	res, err := r.db.ExecContext(ctx, query, list, price, StatusPharmacyApproved, id, StatusPending)
	if err != nil {
		return false, fmt.Errorf("storing prescription approval: %w", err)
	}
	return oneRowAffected(res)
}

func (r *postgresRepo) SetRejection(ctx context.Context, id, reason string) (bool, error) {
	query := `
		UPDATE prescription_requests
		SET rejection_reason = $1, status = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4`

	res, err := r.db.ExecContext(ctx, query, reason, StatusPharmacyRejected, id, StatusPending)
	if err != nil {
		return false, fmt.Errorf("storing prescription rejection: %w", err)
	}
	return oneRowAffected(res)
}

func oneRowAffected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n == 1, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*Request, error) {
	var req Request
	var list []byte
	var notes, price, reason sql.NullString
	err := row.Scan(&req.ID, &req.RequestNumber, &req.UserID, &req.PharmacyID,
		&req.Filepath, &notes, &list, &price, &reason,
		&req.OrderType, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	req.Notes = notes.String
	req.RejectionReason = reason.String
	// estimated_price stays NULL until the pharmacy prices the curated list
	if price.Valid {
		req.EstimatedPrice, err = decimal.NewFromString(price.String)
		if err != nil {
			return nil, fmt.Errorf("parsing estimated price: %w", err)
		}
	}
	if len(list) > 0 {
		if err := json.Unmarshal(list, &req.AvailableMedicines); err != nil {
			return nil, fmt.Errorf("unmarshaling curated list: %w", err)
		}
	}
	return &req, nil
}

func collectRequests(rows *sql.Rows) ([]*Request, error) {
	requests := make([]*Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning prescription request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
