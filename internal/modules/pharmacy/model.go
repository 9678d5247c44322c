package pharmacy

import (
	"time"

	"github.com/google/uuid"

	"github.com/chandamvula/pharmalink-backend/internal/modules/auth"
)

// Pharmacy is a vendor account. Rating is the stored average maintained by
// the rating module.
type Pharmacy struct {
	ID                   uuid.UUID `json:"id"`
	PharmacyNumber       int64     `json:"pharmacy_number"`
	Email                string    `json:"email"`
	PasswordHash         string    `json:"-"`
	Name                 string    `json:"name"`
	Phone                string    `json:"phone"`
	Latitude             float64   `json:"latitude"`
	Longitude            float64   `json:"longitude"`
	SuggestedAddress     string    `json:"suggested_address"`
	OpeningDays          []string  `json:"opening_days"`
	OpeningTime          string    `json:"opening_time"`
	ClosingTime          string    `json:"closing_time"`
	ActiveStatus         bool      `json:"active_status"`
	DeliveryAvailability bool      `json:"delivery_availability"`
	Rating               float64   `json:"rating"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`

	// Distance is only populated by proximity queries, in meters.
	Distance float64 `json:"distance,omitempty"`
}

// Account capability, consumed by the auth module.

func (p *Pharmacy) AccountID() string         { return p.ID.String() }
func (p *Pharmacy) AccountEmail() string      { return p.Email }
func (p *Pharmacy) AccountRole() auth.Role    { return auth.RolePharmacy }
func (p *Pharmacy) PasswordHashValue() string { return p.PasswordHash }

// SignUpRequest is the payload for registering a pharmacy.
type SignUpRequest struct {
	Email                string   `json:"email" validate:"required,email"`
	Password             string   `json:"password" validate:"required,min=8"`
	Name                 string   `json:"name" validate:"required"`
	Phone                string   `json:"phone" validate:"required"`
	Latitude             float64  `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude            float64  `json:"longitude" validate:"gte=-180,lte=180"`
	SuggestedAddress     string   `json:"suggested_address" validate:"required"`
	OpeningDays          []string `json:"opening_days" validate:"required,min=1,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	OpeningTime          string   `json:"opening_time" validate:"required,datetime=15:04"`
	ClosingTime          string   `json:"closing_time" validate:"required,datetime=15:04"`
	DeliveryAvailability bool     `json:"delivery_availability"`
}

// UpdateRequest carries the editable pharmacy fields.
type UpdateRequest struct {
	Name                 *string   `json:"name"`
	Phone                *string   `json:"phone"`
	Latitude             *float64  `json:"latitude"`
	Longitude            *float64  `json:"longitude"`
	SuggestedAddress     *string   `json:"suggested_address"`
	OpeningDays          *[]string `json:"opening_days"`
	OpeningTime          *string   `json:"opening_time"`
	ClosingTime          *string   `json:"closing_time"`
	ActiveStatus         *bool     `json:"active_status"`
	DeliveryAvailability *bool     `json:"delivery_availability"`
}
