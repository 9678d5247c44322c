package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a stored, user- or pharmacy-facing event record. It is
// produced as a side effect of lifecycle transitions and never read back by
// business logic.
type Notification struct {
	ID         uuid.UUID  `json:"id"`
	Role       string     `json:"role"` // "user" or "pharmacy"
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	PharmacyID *uuid.UUID `json:"pharmacy_id,omitempty"`
	MedicineID *uuid.UUID `json:"medicine_id,omitempty"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	Read       bool       `json:"read"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Event is what lifecycle code publishes. TargetID is interpreted according
// to Role.
type Event struct {
	Role       string
	TargetID   string
	MedicineID string // optional, ties stock/expiry alerts to a medicine
	Title      string
	Message    string
}
