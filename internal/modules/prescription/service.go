package prescription

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
	"github.com/chandamvula/pharmalink-backend/internal/modules/medicine"
	"github.com/chandamvula/pharmalink-backend/internal/modules/notification"
	"github.com/chandamvula/pharmalink-backend/internal/modules/order"
)

// Inventory is the slice of the medicine ledger the request lifecycle drives.
// Approval moves curated quantities into the on-hold pool; declines and
// cancellations move them back.
type Inventory interface {
	GetMedicine(ctx context.Context, id string) (*medicine.Medicine, error)
	MoveToHold(ctx context.Context, id string, qty int) error
	Reserve(ctx context.Context, id string, qty int, pool medicine.Pool) error
	Release(ctx context.Context, id string, qty int, pool medicine.Pool) error
}

// Pharmacies guards request submission against unknown pharmacy ids.
type Pharmacies interface {
	PharmacyExists(ctx context.Context, id string) error
}

// Orders converts a user-approved request into an order drawing on-hold stock.
type Orders interface {
	CreateFromPrescription(ctx context.Context, userID, pharmacyID string, items []order.LineItem, orderType order.Type) (*order.Order, error)
}

// Notifier is the dispatch hook: fire-and-forget, never fails a transition.
type Notifier interface {
	Publish(e notification.Event)
}

// Service defines the prescription request state machine.
type Service interface {
	Create(ctx context.Context, userID, pharmacyID string, req CreateRequest) (*Request, error)

	// ApproveByPharmacy curates the availability list, holds the stock, and
	// computes the estimated price from the catalog.
	ApproveByPharmacy(ctx context.Context, pharmacyID, requestID string, req ApproveRequest) (*Request, error)

	// DeclineByPharmacy rejects a pending request with a mandatory reason.
	DeclineByPharmacy(ctx context.Context, pharmacyID, requestID, reason string) (*Request, error)

	// CancelByPharmacy withdraws an approval. Held stock is released only
	// while the request is still awaiting the user.
	CancelByPharmacy(ctx context.Context, pharmacyID, requestID string) (*Request, error)

	// ApproveByUser accepts the curated list and places the resulting order,
	// fulfilled the way the request asked for at submission.
	ApproveByUser(ctx context.Context, userID, requestID string) (*Request, *order.Order, error)

	// DeclineByUser turns down the curated list and releases the held stock.
	DeclineByUser(ctx context.Context, userID, requestID string) (*Request, error)

	GetRequest(ctx context.Context, actorID string, actorRole string, requestID string) (*Request, error)
	ListUserRequests(ctx context.Context, userID string) ([]*Request, error)
	ListPharmacyRequests(ctx context.Context, pharmacyID string, status Status) ([]*Request, error)
}

type service struct {
	repo       Repository
	inventory  Inventory
	pharmacies Pharmacies
	orders     Orders
	notifier   Notifier
}

// NewService creates a new prescription request service.
func NewService(repo Repository, inventory Inventory, pharmacies Pharmacies, orders Orders, notifier Notifier) Service {
	return &service{repo: repo, inventory: inventory, pharmacies: pharmacies, orders: orders, notifier: notifier}
}

func (s *service) Create(ctx context.Context, userID, pharmacyID string, req CreateRequest) (*Request, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.InvalidInput("invalid user id")
	}
	pid, err := uuid.Parse(pharmacyID)
	if err != nil {
		return nil, apperr.InvalidInput("invalid pharmacy id")
	}
	orderType := order.Type(req.OrderType)
	if orderType != order.TypePickup && orderType != order.TypeDelivery {
		return nil, apperr.InvalidInput("unknown order type %q", req.OrderType)
	}
	if err := s.pharmacies.PharmacyExists(ctx, pharmacyID); err != nil {
		return nil, err
	}

	pr := &Request{
		ID:         uuid.New(),
		UserID:     uid,
		PharmacyID: pid,
		Filepath:   req.Filepath,
		Notes:      req.Notes,
		OrderType:  orderType,
		Status:     StatusPending,
	}
	if err := s.repo.CreateRequest(ctx, pr); err != nil {
		return nil, apperr.Internal(err, "could not persist prescription request")
	}

	s.notifier.Publish(notification.Event{
		Role:     "pharmacy",
		TargetID: pharmacyID,
		Title:    "New prescription request",
		Message:  fmt.Sprintf("Prescription request #%d is awaiting your review", pr.RequestNumber),
	})
	return pr, nil
}

func (s *service) ApproveByPharmacy(ctx context.Context, pharmacyID, requestID string, req ApproveRequest) (*Request, error) {
	pr, err := s.pharmacyOwnedRequest(ctx, pharmacyID, requestID)
	if err != nil {
		return nil, err
	}
	if pr.Status != StatusPending {
		return nil, apperr.InvalidState("prescription request #%d is not pending review", pr.RequestNumber)
	}

	// the whole curated list is validated before any stock moves
	curated := make([]CuratedItem, 0, len(req.Items))
	total := decimal.Zero
	for _, item := range req.Items {
		m, err := s.inventory.GetMedicine(ctx, item.MedicineID)
		if err != nil {
			return nil, err
		}
		if m.PharmacyID.String() != pharmacyID {
			return nil, apperr.InvalidInput("medicine %s does not belong to your pharmacy", item.MedicineID)
		}
		if m.Quantity < item.Quantity {
			return nil, apperr.InsufficientStock("insufficient stock for medicine %s", item.MedicineID)
		}
		curated = append(curated, CuratedItem{
			MedicineID: item.MedicineID,
			Name:       m.Name,
			Quantity:   item.Quantity,
			UnitPrice:  m.Price,
		})
		total = total.Add(m.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	held := make([]CuratedItem, 0, len(curated))
	for _, item := range curated {
		if err := s.inventory.MoveToHold(ctx, item.MedicineID, item.Quantity); err != nil {
			s.releaseHolds(ctx, held)
			return nil, err
		}
		held = append(held, item)
	}

	ok, err := s.repo.SetApproval(ctx, requestID, curated, total)
	if err != nil {
		s.releaseHolds(ctx, held)
		return nil, apperr.Internal(err, "could not store prescription approval")
	}
	if !ok {
		// a racing transition won; undo the holds this attempt took
		s.releaseHolds(ctx, held)
		return nil, apperr.InvalidState("prescription request #%d is no longer pending", pr.RequestNumber)
	}

	pr.AvailableMedicines = curated
	pr.EstimatedPrice = total
	pr.Status = StatusPharmacyApproved
	s.notifyUser(pr, "Prescription request approved",
		fmt.Sprintf("Prescription request #%d has been approved, estimated price %s", pr.RequestNumber, total.StringFixed(2)))
	return pr, nil
}

func (s *service) DeclineByPharmacy(ctx context.Context, pharmacyID, requestID, reason string) (*Request, error) {
	if reason == "" {
		return nil, apperr.InvalidInput("a rejection reason is required")
	}
	pr, err := s.pharmacyOwnedRequest(ctx, pharmacyID, requestID)
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.SetRejection(ctx, requestID, reason)
	if err != nil {
		return nil, apperr.Internal(err, "could not store prescription rejection")
	}
	if !ok {
		return nil, apperr.InvalidState("prescription request #%d is not pending review", pr.RequestNumber)
	}
	pr.RejectionReason = reason
	pr.Status = StatusPharmacyRejected
	s.notifyUser(pr, "Prescription request declined",
		fmt.Sprintf("Prescription request #%d was declined: %s", pr.RequestNumber, reason))
	return pr, nil
}

func (s *service) CancelByPharmacy(ctx context.Context, pharmacyID, requestID string) (*Request, error) {
	pr, err := s.pharmacyOwnedRequest(ctx, pharmacyID, requestID)
	if err != nil {
		return nil, err
	}

	switch pr.Status {
	case StatusPharmacyApproved:
		ok, err := s.repo.UpdateStatusIf(ctx, requestID, []Status{StatusPharmacyApproved}, StatusCancelled)
		if err != nil {
			return nil, apperr.Internal(err, "could not cancel prescription request")
		}
		if !ok {
			return nil, apperr.InvalidState("prescription request #%d can no longer be cancelled", pr.RequestNumber)
		}
		// the user never confirmed, so the held stock goes back on sale
		s.releaseHolds(ctx, pr.AvailableMedicines)
	case StatusUserApproved:
		// the resulting order already owns the held stock
		ok, err := s.repo.UpdateStatusIf(ctx, requestID, []Status{StatusUserApproved}, StatusCancelled)
		if err != nil {
			return nil, apperr.Internal(err, "could not cancel prescription request")
		}
		if !ok {
			return nil, apperr.InvalidState("prescription request #%d can no longer be cancelled", pr.RequestNumber)
		}
	default:
		return nil, apperr.InvalidState("prescription request #%d cannot be cancelled from %s", pr.RequestNumber, pr.Status)
	}

	pr.Status = StatusCancelled
	s.notifyUser(pr, "Prescription request cancelled",
		fmt.Sprintf("Prescription request #%d was cancelled by the pharmacy", pr.RequestNumber))
	return pr, nil
}

func (s *service) ApproveByUser(ctx context.Context, userID, requestID string) (*Request, *order.Order, error) {
	pr, err := s.userOwnedRequest(ctx, userID, requestID)
	if err != nil {
		return nil, nil, err
	}

	ok, err := s.repo.UpdateStatusIf(ctx, requestID, []Status{StatusPharmacyApproved}, StatusUserApproved)
	if err != nil {
		return nil, nil, apperr.Internal(err, "could not update prescription request status")
	}
	if !ok {
		return nil, nil, apperr.InvalidState("prescription request #%d is not awaiting your approval", pr.RequestNumber)
	}

	items := make([]order.LineItem, len(pr.AvailableMedicines))
	for i, item := range pr.AvailableMedicines {
		items[i] = order.LineItem{MedicineID: item.MedicineID, Quantity: item.Quantity}
	}
	typ := pr.OrderType
	if typ != order.TypeDelivery {
		typ = order.TypePickup
	}
	o, err := s.orders.CreateFromPrescription(ctx, userID, pr.PharmacyID.String(), items, typ)
	if err != nil {
		// put the request back so the user can retry
		_, _ = s.repo.UpdateStatusIf(ctx, requestID, []Status{StatusUserApproved}, StatusPharmacyApproved)
		return nil, nil, err
	}

	pr.Status = StatusUserApproved
	s.notifier.Publish(notification.Event{
		Role:     "pharmacy",
		TargetID: pr.PharmacyID.String(),
		Title:    "Prescription request accepted",
		Message:  fmt.Sprintf("Prescription request #%d was accepted, order #%d created", pr.RequestNumber, o.OrderNumber),
	})
	return pr, o, nil
}

func (s *service) DeclineByUser(ctx context.Context, userID, requestID string) (*Request, error) {
	pr, err := s.userOwnedRequest(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.UpdateStatusIf(ctx, requestID, []Status{StatusPharmacyApproved}, StatusUserRejected)
	if err != nil {
		return nil, apperr.Internal(err, "could not update prescription request status")
	}
	if !ok {
		return nil, apperr.InvalidState("prescription request #%d is not awaiting your approval", pr.RequestNumber)
	}
	s.releaseHolds(ctx, pr.AvailableMedicines)

	pr.Status = StatusUserRejected
	s.notifier.Publish(notification.Event{
		Role:     "pharmacy",
		TargetID: pr.PharmacyID.String(),
		Title:    "Prescription request turned down",
		Message:  fmt.Sprintf("Prescription request #%d was turned down by the user", pr.RequestNumber),
	})
	return pr, nil
}

func (s *service) GetRequest(ctx context.Context, actorID, actorRole, requestID string) (*Request, error) {
	pr, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	switch actorRole {
	case "pharmacy":
		if pr.PharmacyID.String() != actorID {
			return nil, apperr.Forbidden("prescription request belongs to another pharmacy")
		}
	default:
		if pr.UserID.String() != actorID {
			return nil, apperr.Forbidden("prescription request belongs to another user")
		}
	}
	return pr, nil
}

func (s *service) ListUserRequests(ctx context.Context, userID string) ([]*Request, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListPharmacyRequests(ctx context.Context, pharmacyID string, status Status) ([]*Request, error) {
	return s.repo.ListByPharmacy(ctx, pharmacyID, status)
}

func (s *service) pharmacyOwnedRequest(ctx context.Context, pharmacyID, requestID string) (*Request, error) {
	pr, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if pr.PharmacyID.String() != pharmacyID {
		return nil, apperr.Forbidden("prescription request belongs to another pharmacy")
	}
	return pr, nil
}

func (s *service) userOwnedRequest(ctx context.Context, userID, requestID string) (*Request, error) {
	pr, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if pr.UserID.String() != userID {
		return nil, apperr.Forbidden("prescription request belongs to another user")
	}
	return pr, nil
}

// releaseHolds moves curated quantities out of the on-hold pool and back on
// sale. Each item is two atomic pool adjustments, same shape as the inverse
// of MoveToHold.
func (s *service) releaseHolds(ctx context.Context, items []CuratedItem) {
	for _, item := range items {
		if err := s.inventory.Reserve(ctx, item.MedicineID, item.Quantity, medicine.PoolOnHold); err != nil {
			continue
		}
		_ = s.inventory.Release(ctx, item.MedicineID, item.Quantity, medicine.PoolAvailable)
	}
}

func (s *service) notifyUser(pr *Request, title, message string) {
	s.notifier.Publish(notification.Event{
		Role:     "user",
		TargetID: pr.UserID.String(),
		Title:    title,
		Message:  message,
	})
}
