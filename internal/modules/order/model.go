package order

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPendingApproval    Status = "PENDING_APPROVAL"
	StatusApproved           Status = "APPROVED"
	StatusDeclined           Status = "DECLINED"
	StatusAllottedToDelivery Status = "ALLOTTED_TO_DELIVERY"
	StatusCompleted          Status = "COMPLETED"
)

// Type determines whether delivery allocation is a valid transition.
type Type string

const (
	TypePickup   Type = "PICKUP"
	TypeDelivery Type = "DELIVERY"
)

// LineItem is one medicine and quantity within an order.
type LineItem struct {
	MedicineID string `json:"medicine_id"`
	Quantity   int    `json:"quantity"`
}

// Order is a reserved purchase a pharmacy drives through the lifecycle.
// Every line item's medicine belongs to PharmacyID, and the quantities here
// match the inventory decrement performed at creation.
type Order struct {
	ID          uuid.UUID  `json:"id"`
	OrderNumber int64      `json:"order_number"`
	UserID      uuid.UUID  `json:"user_id"`
	PharmacyID  uuid.UUID  `json:"pharmacy_id"`
	Items       []LineItem `json:"items"`
	Status      Status     `json:"status"`
	OrderType   Type       `json:"order_type"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateRequest is the payload for placing an order.
type CreateRequest struct {
	Items     []LineItem `json:"items"`
	OrderType string     `json:"order_type"`
}
