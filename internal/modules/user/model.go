package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/chandamvula/pharmalink-backend/internal/modules/auth"
)

// User is a customer account. Cart and wishlist are embedded line-item lists,
// persisted as a whole on every change.
type User struct {
	ID               uuid.UUID      `json:"id"`
	UserNumber       int64          `json:"user_number"`
	Email            string         `json:"email"`
	PasswordHash     string         `json:"-"`
	Name             string         `json:"name"`
	Phone            string         `json:"phone"`
	Latitude         float64        `json:"latitude"`
	Longitude        float64        `json:"longitude"`
	SuggestedAddress string         `json:"suggested_address"`
	Cart             []CartItem     `json:"cart"`
	Wishlist         []WishlistItem `json:"wishlist"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// CartItem is one staged medicine in a user's cart.
type CartItem struct {
	MedicineID string `json:"medicine_id"`
	Quantity   int    `json:"quantity"`
}

// WishlistItem references a medicine a user saved for later.
type WishlistItem struct {
	MedicineID string `json:"medicine_id"`
}

// Account capability, consumed by the auth module.

func (u *User) AccountID() string         { return u.ID.String() }
func (u *User) AccountEmail() string      { return u.Email }
func (u *User) AccountRole() auth.Role    { return auth.RoleUser }
func (u *User) PasswordHashValue() string { return u.PasswordHash }

// SignUpRequest is the payload for creating a user account.
type SignUpRequest struct {
	Email            string  `json:"email" validate:"required,email"`
	Password         string  `json:"password" validate:"required,min=8"`
	Name             string  `json:"name" validate:"required"`
	Phone            string  `json:"phone" validate:"required"`
	Latitude         float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude        float64 `json:"longitude" validate:"gte=-180,lte=180"`
	SuggestedAddress string  `json:"suggested_address" validate:"required"`
}

// UpdateRequest carries the editable profile fields. Restricted fields are
// rejected at decode time before this struct is populated.
type UpdateRequest struct {
	Name             *string  `json:"name"`
	Phone            *string  `json:"phone"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	SuggestedAddress *string  `json:"suggested_address"`
}
