package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
	"github.com/chandamvula/pharmalink-backend/internal/modules/medicine"
	"github.com/chandamvula/pharmalink-backend/internal/modules/notification"
)

// Inventory is the slice of the medicine ledger the state machine drives.
type Inventory interface {
	GetMedicine(ctx context.Context, id string) (*medicine.Medicine, error)
	Reserve(ctx context.Context, id string, qty int, pool medicine.Pool) error
	Release(ctx context.Context, id string, qty int, pool medicine.Pool) error
}

// Carts reconciles a user's cart after an order consumed staged items.
type Carts interface {
	ConsumeFromCart(ctx context.Context, userID string, consumed map[string]int) error
}

// Notifier is the dispatch hook: fire-and-forget, never fails a transition.
type Notifier interface {
	Publish(e notification.Event)
}

// Service defines the order lifecycle state machine.
type Service interface {
	// Create validates the whole item list, reserves stock, reconciles the
	// user's cart, and persists the order in PENDING_APPROVAL.
	Create(ctx context.Context, userID, pharmacyID string, req CreateRequest) (*Order, error)

	// CreateFromPrescription converts a pharmacy-approved hold into an order,
	// drawing from the on-hold pool and starting directly in APPROVED.
	CreateFromPrescription(ctx context.Context, userID, pharmacyID string, items []LineItem, orderType Type) (*Order, error)

	Approve(ctx context.Context, pharmacyID, orderID string) (*Order, error)
	Decline(ctx context.Context, pharmacyID, orderID string) (*Order, error)
	AllocateToDelivery(ctx context.Context, pharmacyID, orderID string) (*Order, error)
	Complete(ctx context.Context, pharmacyID, orderID string) (*Order, error)

	// GetOrder returns an order to one of its two parties.
	GetOrder(ctx context.Context, actorID, actorRole, orderID string) (*Order, error)
	ListUserOrders(ctx context.Context, userID string) ([]*Order, error)
	ListPharmacyOrders(ctx context.Context, pharmacyID string, status Status) ([]*Order, error)
}

type service struct {
	repo      Repository
	inventory Inventory
	carts     Carts
	notifier  Notifier
}

// NewService creates a new order service.
func NewService(repo Repository, inventory Inventory, carts Carts, notifier Notifier) Service {
	return &service{repo: repo, inventory: inventory, carts: carts, notifier: notifier}
}

// validTransitions is the whole lifecycle: pickup orders may complete straight
// from APPROVED, delivery orders pass through ALLOTTED_TO_DELIVERY.
var validTransitions = map[Status][]Status{
	StatusPendingApproval:    {StatusApproved, StatusDeclined},
	StatusApproved:           {StatusAllottedToDelivery, StatusCompleted},
	StatusAllottedToDelivery: {StatusCompleted},
	StatusDeclined:           {},
	StatusCompleted:          {},
}

func (s *service) Create(ctx context.Context, userID, pharmacyID string, req CreateRequest) (*Order, error) {
	orderType, err := parseOrderType(req.OrderType)
	if err != nil {
		return nil, err
	}
	o, err := s.create(ctx, userID, pharmacyID, req.Items, orderType, medicine.PoolAvailable, StatusPendingApproval)
	if err != nil {
		return nil, err
	}

	// staged cart lines the order just consumed are settled in one write;
	// the order already stands, so a failure here leaves stale cart lines
	// rather than voiding it
	consumed := make(map[string]int, len(o.Items))
	for _, item := range o.Items {
		consumed[item.MedicineID] += item.Quantity
	}
	if err := s.carts.ConsumeFromCart(ctx, userID, consumed); err != nil {
		logrus.WithError(err).WithField("order_number", o.OrderNumber).Warn("cart reconciliation failed")
	}

	s.notifier.Publish(notification.Event{
		Role:     "pharmacy",
		TargetID: pharmacyID,
		Title:    "New order received",
		Message:  fmt.Sprintf("Order #%d is awaiting your approval", o.OrderNumber),
	})
	return o, nil
}

func (s *service) CreateFromPrescription(ctx context.Context, userID, pharmacyID string, items []LineItem, orderType Type) (*Order, error) {
	return s.create(ctx, userID, pharmacyID, items, orderType, medicine.PoolOnHold, StatusApproved)
}

// create is the shared all-or-nothing creation path: the whole item list is
// validated before any stock moves, and a reservation that fails mid-sequence
// (a concurrent racer drained the pool) releases what was already taken.
func (s *service) create(ctx context.Context, userID, pharmacyID string, items []LineItem, orderType Type, pool medicine.Pool, initial Status) (*Order, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.InvalidInput("invalid user id")
	}
	pid, err := uuid.Parse(pharmacyID)
	if err != nil {
		return nil, apperr.InvalidInput("invalid pharmacy id")
	}
	if len(items) == 0 {
		return nil, apperr.InvalidInput("item list cannot be empty")
	}

	// pre-validate every line before touching any counter
	for _, item := range items {
		if item.MedicineID == "" || item.Quantity < 1 {
			return nil, apperr.InvalidInput("each item must have a valid medicine ID and quantity greater than 0")
		}
		m, err := s.inventory.GetMedicine(ctx, item.MedicineID)
		if err != nil {
			return nil, err
		}
		if m.PharmacyID != pid {
			return nil, apperr.InvalidInput("medicine %s does not belong to the specified pharmacy", item.MedicineID)
		}
		available := m.Quantity
		if pool == medicine.PoolOnHold {
			available = m.OnHoldQuantity
		}
		if available < item.Quantity {
			return nil, apperr.InsufficientStock("insufficient stock for medicine %s", item.MedicineID)
		}
	}

	reserved := make([]LineItem, 0, len(items))
	for _, item := range items {
		if err := s.inventory.Reserve(ctx, item.MedicineID, item.Quantity, pool); err != nil {
			s.releaseAll(ctx, reserved, pool)
			return nil, err
		}
		reserved = append(reserved, item)
	}

	o := &Order{
		ID:         uuid.New(),
		UserID:     uid,
		PharmacyID: pid,
		Items:      items,
		Status:     initial,
		OrderType:  orderType,
	}
	if err := s.repo.CreateOrder(ctx, o); err != nil {
		s.releaseAll(ctx, reserved, pool)
		return nil, apperr.Internal(err, "could not persist order")
	}
	return o, nil
}

func (s *service) Approve(ctx context.Context, pharmacyID, orderID string) (*Order, error) {
	o, err := s.transition(ctx, pharmacyID, orderID, []Status{StatusPendingApproval}, StatusApproved)
	if err != nil {
		return nil, err
	}
	s.notifyUser(o, "Order approved", fmt.Sprintf("Order #%d has been approved by the pharmacy", o.OrderNumber))
	return o, nil
}

func (s *service) Decline(ctx context.Context, pharmacyID, orderID string) (*Order, error) {
	o, err := s.transition(ctx, pharmacyID, orderID, []Status{StatusPendingApproval}, StatusDeclined)
	if err != nil {
		return nil, err
	}
	// restock every reserved line; the conditional status update above ran
	// first, so a second decline cannot double-restock
	s.releaseAll(ctx, o.Items, medicine.PoolAvailable)
	s.notifyUser(o, "Order declined", fmt.Sprintf("Order #%d has been declined by the pharmacy", o.OrderNumber))
	return o, nil
}

func (s *service) AllocateToDelivery(ctx context.Context, pharmacyID, orderID string) (*Order, error) {
	current, err := s.ownedOrder(ctx, pharmacyID, orderID)
	if err != nil {
		return nil, err
	}
	if current.OrderType != TypeDelivery {
		return nil, apperr.InvalidState("order #%d is a pickup order and cannot be allotted to delivery", current.OrderNumber)
	}
	o, err := s.transition(ctx, pharmacyID, orderID, []Status{StatusApproved}, StatusAllottedToDelivery)
	if err != nil {
		return nil, err
	}
	s.notifyUser(o, "Order out for delivery", fmt.Sprintf("Order #%d has been allotted to delivery", o.OrderNumber))
	return o, nil
}

func (s *service) Complete(ctx context.Context, pharmacyID, orderID string) (*Order, error) {
	o, err := s.transition(ctx, pharmacyID, orderID, []Status{StatusApproved, StatusAllottedToDelivery}, StatusCompleted)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Order #%d has been delivered", o.OrderNumber)
	if o.OrderType == TypePickup {
		msg = fmt.Sprintf("Order #%d is ready and has been picked up", o.OrderNumber)
	}
	s.notifyUser(o, "Order completed", msg)
	return o, nil
}

func (s *service) GetOrder(ctx context.Context, actorID, actorRole, orderID string) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch actorRole {
	case "pharmacy":
		if o.PharmacyID.String() != actorID {
			return nil, apperr.Forbidden("order belongs to another pharmacy")
		}
	default:
		if o.UserID.String() != actorID {
			return nil, apperr.Forbidden("order belongs to another user")
		}
	}
	return o, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID string) ([]*Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListPharmacyOrders(ctx context.Context, pharmacyID string, status Status) ([]*Order, error) {
	return s.repo.ListByPharmacy(ctx, pharmacyID, status)
}

// transition performs the guarded status advance shared by every lifecycle
// operation: ownership check, then a store-side compare-and-set on status.
func (s *service) transition(ctx context.Context, pharmacyID, orderID string, from []Status, to Status) (*Order, error) {
	o, err := s.ownedOrder(ctx, pharmacyID, orderID)
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.UpdateStatusIf(ctx, orderID, from, to)
	if err != nil {
		return nil, apperr.Internal(err, "could not update order status")
	}
	if !ok {
		return nil, apperr.InvalidState("cannot transition order #%d from %s to %s", o.OrderNumber, o.Status, to)
	}
	o.Status = to
	return o, nil
}

func (s *service) ownedOrder(ctx context.Context, pharmacyID, orderID string) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.PharmacyID.String() != pharmacyID {
		return nil, apperr.Forbidden("order belongs to another pharmacy")
	}
	return o, nil
}

func (s *service) releaseAll(ctx context.Context, items []LineItem, pool medicine.Pool) {
	for _, item := range items {
		// release never fails on valid input; a missing medicine here means
		// it was deleted mid-flight and there is nothing left to restock
		_ = s.inventory.Release(ctx, item.MedicineID, item.Quantity, pool)
	}
}

func (s *service) notifyUser(o *Order, title, message string) {
	s.notifier.Publish(notification.Event{
		Role:     "user",
		TargetID: o.UserID.String(),
		Title:    title,
		Message:  message,
	})
}

func parseOrderType(raw string) (Type, error) {
	switch Type(raw) {
	case TypePickup, "":
		return TypePickup, nil
	case TypeDelivery:
		return TypeDelivery, nil
	default:
		return "", apperr.InvalidInput("unknown order type %q", raw)
	}
}

// IsValidTransition reports whether the state machine permits from → to.
func IsValidTransition(from, to Status) bool {
	for _, t := range validTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}
