package rating

import (
	"time"

	"github.com/google/uuid"
)

// Rating is a user's score for a completed order's pharmacy. One per order.
type Rating struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	UserID     uuid.UUID `json:"user_id"`
	PharmacyID uuid.UUID `json:"pharmacy_id"`
	Score      int       `json:"score"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateRequest is the payload for rating an order.
type CreateRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid4"`
	Score   int    `json:"score" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}
