package notification

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, n *Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications
		  (id, role, user_id, pharmacy_id, medicine_id, title, message, read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		n.ID, n.Role, n.UserID, n.PharmacyID, n.MedicineID, n.Title, n.Message, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *postgresRepo) ListForTarget(ctx context.Context, role, targetID string) ([]*Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, role, user_id, pharmacy_id, medicine_id, title, message, read, created_at
		FROM notifications
		WHERE role=$1 AND `+targetColumn(role)+`=$2
		ORDER BY created_at DESC`, role, targetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Notification
	for rows.Next() {
		n := &Notification{}
		if err := rows.Scan(&n.ID, &n.Role, &n.UserID, &n.PharmacyID, &n.MedicineID,
			&n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *postgresRepo) GetForTarget(ctx context.Context, id, role, targetID string) (*Notification, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("notification not found")
	}
	n := &Notification{}
	err = r.db.QueryRowContext(ctx, `
		SELECT id, role, user_id, pharmacy_id, medicine_id, title, message, read, created_at
		FROM notifications
		WHERE id=$1 AND role=$2 AND `+targetColumn(role)+`=$3`, uid, role, targetID).
		Scan(&n.ID, &n.Role, &n.UserID, &n.PharmacyID, &n.MedicineID,
			&n.Title, &n.Message, &n.Read, &n.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("notification not found")
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *postgresRepo) MarkRead(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read=true WHERE id=$1`, id)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id=$1`, id)
	return err
}

func targetColumn(role string) string {
	if role == "pharmacy" {
		return "pharmacy_id"
	}
	return "user_id"
}
