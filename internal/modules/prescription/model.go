package prescription

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chandamvula/pharmalink-backend/internal/modules/order"
)

// Status is the lifecycle state of a prescription request.
type Status string

const (
	StatusPending          Status = "PENDING"
	StatusPharmacyApproved Status = "PHARMACY_APPROVED"
	StatusPharmacyRejected Status = "PHARMACY_REJECTED"
	StatusUserApproved     Status = "USER_APPROVED"
	StatusUserRejected     Status = "USER_REJECTED"
	StatusCancelled        Status = "CANCELLED"
)

// CuratedItem is one line of the pharmacy's curated availability list. The
// quantity is held against the medicine's on-hold pool while the request
// awaits the user's confirmation.
type CuratedItem struct {
	MedicineID string          `json:"medicine_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// Request is a user-submitted prescription routed to one pharmacy for review.
// OrderType is fixed at submission and carries through to the resulting order.
type Request struct {
	ID                 uuid.UUID       `json:"id"`
	RequestNumber      int64           `json:"request_number"`
	UserID             uuid.UUID       `json:"user_id"`
	PharmacyID         uuid.UUID       `json:"pharmacy_id"`
	Filepath           string          `json:"filepath"`
	Notes              string          `json:"notes,omitempty"`
	AvailableMedicines []CuratedItem   `json:"available_medicines,omitempty"`
	EstimatedPrice     decimal.Decimal `json:"estimated_price"`
	RejectionReason    string          `json:"rejection_reason,omitempty"`
	OrderType          order.Type      `json:"order_type"`
	Status             Status          `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// CreateRequest is the payload for submitting a prescription. The target
// pharmacy arrives as the pharmacyId query parameter, not in the body.
type CreateRequest struct {
	Filepath  string `json:"filepath" validate:"required"`
	Notes     string `json:"notes"`
	OrderType string `json:"orderType" validate:"required,oneof=PICKUP DELIVERY"`
}

// ApproveRequest is the pharmacy's curated response.
type ApproveRequest struct {
	Items []ApproveItem `json:"items" validate:"required,min=1,dive"`
}

// ApproveItem is one entry of the curated list as submitted by the pharmacy.
type ApproveItem struct {
	MedicineID string `json:"medicine_id" validate:"required,uuid4"`
	Quantity   int    `json:"quantity" validate:"required,min=1"`
}

// DeclineRequest carries the mandatory rejection reason.
type DeclineRequest struct {
	Reason string `json:"reason" validate:"required"`
}
