package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
)

type postgresRepo struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL order repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

const orderColumns = `id, order_number, user_id, pharmacy_id, items, status, order_type, created_at, updated_at`

func (r *postgresRepo) CreateOrder(ctx context.Context, o *Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	query := `
		INSERT INTO orders (id, user_id, pharmacy_id, items, status, order_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING order_number, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		o.ID, o.UserID, o.PharmacyID, items, o.Status, o.OrderType,
	).Scan(&o.OrderNumber, &o.CreatedAt, &o.UpdatedAt)
}

func (r *postgresRepo) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying order: %w", err)
	}
	return o, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *postgresRepo) ListByPharmacy(ctx context.Context, pharmacyID string, status Status) ([]*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE pharmacy_id = $1`
	args := []interface{}{pharmacyID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying pharmacy orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *postgresRepo) UpdateStatusIf(ctx context.Context, id string, from []Status, to Status) (bool, error) {
	states := make([]string, len(from))
	for i, s := range from {
		states[i] = string(s)
	}

	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = ANY($3)`

	res, err := r.db.ExecContext(ctx, query, to, id, pq.Array(states))
	if err != nil {
		return false, fmt.Errorf("updating order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n == 1, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	var items []byte
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.PharmacyID, &items,
		&o.Status, &o.OrderType, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshaling order items: %w", err)
	}
	return &o, nil
}

func collectOrders(rows *sql.Rows) ([]*Order, error) {
	orders := make([]*Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
