package medicine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is the closed set of medicine forms.
type Category string

const CategoryOther Category = "Other"

var categories = map[Category]bool{
	"Tablet": true, "Syrup": true, "Capsule": true, "Injection": true,
	"Ointment": true, "Cream": true, "Gel": true, "Lotion": true,
	"Drops": true, "Inhaler": true, "Patch": true, "Powder": true,
	"Solution": true, "Suspension": true, "Elixir": true, "Suppository": true,
	"Spray": true, "Lozenge": true, "Nebulizer Solution": true,
	"Chewable Tablet": true, "Oral Film": true, CategoryOther: true,
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool { return categories[c] }

// Medicine is one catalog entry owned by a pharmacy. Quantity is the
// available-to-sell pool; OnHoldQuantity is stock reserved against
// pharmacy-approved prescription requests. Both are always >= 0 and a
// reservation only moves stock between them.
type Medicine struct {
	ID                   uuid.UUID       `json:"id"`
	MedicineNumber       int64           `json:"medicine_number"`
	PharmacyID           uuid.UUID       `json:"pharmacy_id"`
	IdentificationCode   string          `json:"identification_code"`
	Name                 string          `json:"name"`
	Brand                string          `json:"brand,omitempty"`
	Description          string          `json:"description,omitempty"`
	Price                decimal.Decimal `json:"price"`
	Quantity             int             `json:"quantity"`
	OnHoldQuantity       int             `json:"on_hold_quantity"`
	Dosage               string          `json:"dosage"`
	Category             Category        `json:"category"`
	ExpiryDate           time.Time       `json:"expiry_date"`
	PrescriptionRequired bool            `json:"prescription_required"`

	// Per-threshold latches so each alert fires once per crossing.
	LowStockNotified   bool `json:"-"`
	OutOfStockNotified bool `json:"-"`
	ExpiryNotified     bool `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest is the payload for adding a medicine.
type CreateRequest struct {
	IdentificationCode   string          `json:"identification_code" validate:"required"`
	Name                 string          `json:"name" validate:"required"`
	Brand                string          `json:"brand"`
	Description          string          `json:"description"`
	Price                decimal.Decimal `json:"price" validate:"required"`
	Quantity             int             `json:"quantity" validate:"gte=0"`
	Dosage               string          `json:"dosage" validate:"required"`
	Category             Category        `json:"category"`
	ExpiryDate           time.Time       `json:"expiry_date" validate:"required"`
	PrescriptionRequired bool            `json:"prescription_required"`
}

// UpdateRequest carries the editable medicine fields. Restricted fields are
// rejected at decode time.
type UpdateRequest struct {
	Name                 *string          `json:"name"`
	Brand                *string          `json:"brand"`
	Description          *string          `json:"description"`
	Price                *decimal.Decimal `json:"price"`
	Quantity             *int             `json:"quantity"`
	Dosage               *string          `json:"dosage"`
	Category             *Category        `json:"category"`
	ExpiryDate           *time.Time       `json:"expiry_date"`
	PrescriptionRequired *bool            `json:"prescription_required"`
}
