package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const userColumns = `id, user_number, email, password_hash, name, phone,
	latitude, longitude, suggested_address, cart, wishlist, created_at, updated_at`

func (r *postgresRepo) CreateUser(ctx context.Context, u *User) error {
	cart, wishlist, err := marshalLists(u.Cart, u.Wishlist)
	if err != nil {
		return err
	}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO users
		  (id, email, password_hash, name, phone, latitude, longitude, suggested_address, cart, wishlist)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING user_number, created_at, updated_at`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Phone,
		u.Latitude, u.Longitude, u.SuggestedAddress, cart, wishlist).
		Scan(&u.UserNumber, &u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.Conflict("email already exists")
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetUserByID(ctx context.Context, id string) (*User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *postgresRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (r *postgresRepo) UpdateProfile(ctx context.Context, u *User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name=$1, phone=$2, latitude=$3, longitude=$4, suggested_address=$5, updated_at=$6
		WHERE id=$7`,
		u.Name, u.Phone, u.Latitude, u.Longitude, u.SuggestedAddress, time.Now().UTC(), u.ID)
	return err
}

func (r *postgresRepo) UpdateCart(ctx context.Context, id string, cart []CartItem) error {
	raw, err := json.Marshal(emptyIfNilCart(cart))
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE users SET cart=$1, updated_at=$2 WHERE id=$3`,
		raw, time.Now().UTC(), id)
	return err
}

func (r *postgresRepo) UpdateWishlist(ctx context.Context, id string, wishlist []WishlistItem) error {
	if wishlist == nil {
		wishlist = []WishlistItem{}
	}
	raw, err := json.Marshal(wishlist)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE users SET wishlist=$1, updated_at=$2 WHERE id=$3`,
		raw, time.Now().UTC(), id)
	return err
}

func (r *postgresRepo) DeleteUser(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	return err
}

func (r *postgresRepo) PullMedicineFromAll(ctx context.Context, medicineIDs []string) error {
	if len(medicineIDs) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET
		  cart = COALESCE(
		    (SELECT jsonb_agg(item) FROM jsonb_array_elements(cart) AS item
		     WHERE NOT (item->>'medicine_id' = ANY($1::text[]))), '[]'::jsonb),
		  wishlist = COALESCE(
		    (SELECT jsonb_agg(item) FROM jsonb_array_elements(wishlist) AS item
		     WHERE NOT (item->>'medicine_id' = ANY($1::text[]))), '[]'::jsonb),
		  updated_at = $2`,
		pq.Array(medicineIDs), time.Now().UTC())
	return err
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *postgresRepo) scanUser(row *sql.Row) (*User, error) {
	u := &User{}
	var cart, wishlist []byte
	err := row.Scan(&u.ID, &u.UserNumber, &u.Email, &u.PasswordHash, &u.Name, &u.Phone,
		&u.Latitude, &u.Longitude, &u.SuggestedAddress, &cart, &wishlist,
		&u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cart, &u.Cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if err := json.Unmarshal(wishlist, &u.Wishlist); err != nil {
		return nil, fmt.Errorf("decode wishlist: %w", err)
	}
	return u, nil
}

func marshalLists(cart []CartItem, wishlist []WishlistItem) ([]byte, []byte, error) {
	rawCart, err := json.Marshal(emptyIfNilCart(cart))
	if err != nil {
		return nil, nil, err
	}
	if wishlist == nil {
		wishlist = []WishlistItem{}
	}
	rawWishlist, err := json.Marshal(wishlist)
	if err != nil {
		return nil, nil, err
	}
	return rawCart, rawWishlist, nil
}

func emptyIfNilCart(cart []CartItem) []CartItem {
	if cart == nil {
		return []CartItem{}
	}
	return cart
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
