package medicine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
	"github.com/chandamvula/pharmalink-backend/internal/fuzzy"
	"github.com/chandamvula/pharmalink-backend/internal/modules/notification"
)

// lowStockThreshold is the quantity at or below which the pharmacy gets a
// restock alert.
const lowStockThreshold = 5

// Notifier is the dispatch hook: fire-and-forget, never fails the caller.
type Notifier interface {
	Publish(e notification.Event)
}

// CartScrubber removes deleted medicines from every user cart and wishlist.
type CartScrubber interface {
	PullMedicineFromAll(ctx context.Context, medicineIDs []string) error
}

// Service defines catalog business logic plus the inventory ledger consumed
// by the order and prescription state machines.
type Service interface {
	Create(ctx context.Context, pharmacyID string, req CreateRequest) (*Medicine, error)
	GetMedicine(ctx context.Context, id string) (*Medicine, error)
	Update(ctx context.Context, pharmacyID, id string, req UpdateRequest) (*Medicine, error)
	Delete(ctx context.Context, pharmacyID, id string) error
	ListByPharmacy(ctx context.Context, pharmacyID string) ([]*Medicine, error)

	// SearchByName fuzzy matches the catalog by name and description.
	SearchByName(ctx context.Context, name string) ([]*Medicine, error)

	// DeleteAllByPharmacy removes a pharmacy's catalog, returning removed ids.
	DeleteAllByPharmacy(ctx context.Context, pharmacyID string) ([]string, error)

	// MedicineExists verifies an id, for other modules' guards.
	MedicineExists(ctx context.Context, id string) error

	// Reserve atomically draws qty from the given pool. Fails with
	// InsufficientStock when the pool cannot cover it.
	Reserve(ctx context.Context, id string, qty int, pool Pool) error

	// Release returns qty to the given pool; the exact inverse of Reserve.
	Release(ctx context.Context, id string, qty int, pool Pool) error

	// MoveToHold reserves available stock against a prescription approval.
	MoveToHold(ctx context.Context, id string, qty int) error

	// SweepExpired fires the expiry alert for every newly expired medicine.
	SweepExpired(ctx context.Context) (int, error)
}

type service struct {
	repo     Repository
	scrubber CartScrubber
	notifier Notifier
}

// NewService creates a new medicine service.
func NewService(repo Repository, scrubber CartScrubber, notifier Notifier) Service {
	return &service{repo: repo, scrubber: scrubber, notifier: notifier}
}

func (s *service) Create(ctx context.Context, pharmacyID string, req CreateRequest) (*Medicine, error) {
	pid, err := uuid.Parse(pharmacyID)
	if err != nil {
		return nil, apperr.InvalidInput("invalid pharmacy id")
	}
	if req.Price.IsNegative() {
		return nil, apperr.InvalidInput("price must not be negative")
	}
	if req.Quantity < 0 {
		return nil, apperr.InvalidInput("quantity must not be negative")
	}
	category := req.Category
	if category == "" {
		category = CategoryOther
	}
	if !ValidCategory(category) {
		return nil, apperr.InvalidInput("unknown category %q", category)
	}

	m := &Medicine{
		ID:                   uuid.New(),
		PharmacyID:           pid,
		IdentificationCode:   req.IdentificationCode,
		Name:                 req.Name,
		Brand:                req.Brand,
		Description:          req.Description,
		Price:                req.Price,
		Quantity:             req.Quantity,
		Dosage:               req.Dosage,
		Category:             category,
		ExpiryDate:           req.ExpiryDate,
		PrescriptionRequired: req.PrescriptionRequired,
	}
	if err := s.repo.CreateMedicine(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) GetMedicine(ctx context.Context, id string) (*Medicine, error) {
	return s.repo.GetMedicineByID(ctx, id)
}

func (s *service) Update(ctx context.Context, pharmacyID, id string, req UpdateRequest) (*Medicine, error) {
	m, err := s.ownedMedicine(ctx, pharmacyID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.Brand != nil {
		m.Brand = *req.Brand
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, apperr.InvalidInput("price must not be negative")
		}
		m.Price = *req.Price
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, apperr.InvalidInput("quantity must not be negative")
		}
		m.Quantity = *req.Quantity
	}
	if req.Dosage != nil {
		m.Dosage = *req.Dosage
	}
	if req.Category != nil {
		if !ValidCategory(*req.Category) {
			return nil, apperr.InvalidInput("unknown category %q", *req.Category)
		}
		m.Category = *req.Category
	}
	if req.ExpiryDate != nil {
		m.ExpiryDate = *req.ExpiryDate
		m.ExpiryNotified = false
	}
	if req.PrescriptionRequired != nil {
		m.PrescriptionRequired = *req.PrescriptionRequired
	}
	if err := s.repo.UpdateMedicine(ctx, m); err != nil {
		return nil, err
	}
	s.checkThresholds(ctx, m.ID.String())
	return s.repo.GetMedicineByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, pharmacyID, id string) error {
	m, err := s.ownedMedicine(ctx, pharmacyID, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteMedicine(ctx, id); err != nil {
		return err
	}
	return s.scrubber.PullMedicineFromAll(ctx, []string{m.ID.String()})
}

func (s *service) ListByPharmacy(ctx context.Context, pharmacyID string) ([]*Medicine, error) {
	return s.repo.ListByPharmacy(ctx, pharmacyID)
}

func (s *service) SearchByName(ctx context.Context, name string) ([]*Medicine, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	matches := []*Medicine{}
	for _, m := range all {
		if fuzzy.Match(name, m.Name) || fuzzy.Match(name, m.Description) {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

func (s *service) DeleteAllByPharmacy(ctx context.Context, pharmacyID string) ([]string, error) {
	return s.repo.DeleteByPharmacy(ctx, pharmacyID)
}

func (s *service) MedicineExists(ctx context.Context, id string) error {
	_, err := s.repo.GetMedicineByID(ctx, id)
	return err
}

// ── inventory ledger ─────────────────────────────────────────────────────────

func (s *service) Reserve(ctx context.Context, id string, qty int, pool Pool) error {
	if qty < 1 {
		return apperr.InvalidInput("quantity must be at least 1")
	}
	ok, err := s.repo.AdjustPool(ctx, id, pool, -qty)
	if err != nil {
		return apperr.Internal(err, "could not reserve stock")
	}
	if !ok {
		// distinguish a missing medicine from an empty pool
		if _, err := s.repo.GetMedicineByID(ctx, id); err != nil {
			return err
		}
		return apperr.InsufficientStock("insufficient stock for medicine %s", id)
	}
	if pool == PoolAvailable {
		s.checkThresholds(ctx, id)
	}
	return nil
}

func (s *service) Release(ctx context.Context, id string, qty int, pool Pool) error {
	if qty < 1 {
		return apperr.InvalidInput("quantity must be at least 1")
	}
	ok, err := s.repo.AdjustPool(ctx, id, pool, qty)
	if err != nil {
		return apperr.Internal(err, "could not release stock")
	}
	if !ok {
		return apperr.NotFound("medicine not found")
	}
	if pool == PoolAvailable {
		s.checkThresholds(ctx, id)
	}
	return nil
}

func (s *service) MoveToHold(ctx context.Context, id string, qty int) error {
	if qty < 1 {
		return apperr.InvalidInput("quantity must be at least 1")
	}
	ok, err := s.repo.MoveToHold(ctx, id, qty)
	if err != nil {
		return apperr.Internal(err, "could not hold stock")
	}
	if !ok {
		if _, err := s.repo.GetMedicineByID(ctx, id); err != nil {
			return err
		}
		return apperr.InsufficientStock("insufficient stock for medicine %s", id)
	}
	s.checkThresholds(ctx, id)
	return nil
}

func (s *service) SweepExpired(ctx context.Context) (int, error) {
	expired, err := s.repo.ListExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	for _, m := range expired {
		s.notifier.Publish(notification.Event{
			Role:       "pharmacy",
			TargetID:   m.PharmacyID.String(),
			MedicineID: m.ID.String(),
			Title:      "Medicine expired",
			Message:    fmt.Sprintf("%s (code %s) passed its expiry date", m.Name, m.IdentificationCode),
		})
		m.ExpiryNotified = true
		if err := s.repo.SetNotifiedFlags(ctx, m.ID.String(), m.LowStockNotified, m.OutOfStockNotified, true); err != nil {
			return 0, err
		}
	}
	return len(expired), nil
}

// checkThresholds fires each stock/expiry alert exactly once per crossing,
// latched by the notified flags. A restock above the threshold re-arms the
// stock alerts. Best-effort: a failed read or flag write only skips the alert.
func (s *service) checkThresholds(ctx context.Context, id string) {
	m, err := s.repo.GetMedicineByID(ctx, id)
	if err != nil {
		return
	}
	changed := false

	if m.Quantity == 0 && !m.OutOfStockNotified {
		s.notify(m, "Medicine out of stock", fmt.Sprintf("%s (code %s) is out of stock", m.Name, m.IdentificationCode))
		m.OutOfStockNotified = true
		changed = true
	}
	if m.Quantity > 0 && m.Quantity <= lowStockThreshold && !m.LowStockNotified {
		s.notify(m, "Medicine low on stock", fmt.Sprintf("%s (code %s) is down to %d units", m.Name, m.IdentificationCode, m.Quantity))
		m.LowStockNotified = true
		changed = true
	}
	if m.Quantity > lowStockThreshold && (m.LowStockNotified || m.OutOfStockNotified) {
		m.LowStockNotified = false
		m.OutOfStockNotified = false
		changed = true
	}
	if m.Quantity > 0 && m.OutOfStockNotified {
		m.OutOfStockNotified = false
		changed = true
	}
	if !m.ExpiryNotified && m.ExpiryDate.Before(time.Now().UTC()) {
		s.notify(m, "Medicine expired", fmt.Sprintf("%s (code %s) passed its expiry date", m.Name, m.IdentificationCode))
		m.ExpiryNotified = true
		changed = true
	}

	if changed {
		_ = s.repo.SetNotifiedFlags(ctx, id, m.LowStockNotified, m.OutOfStockNotified, m.ExpiryNotified)
	}
}

func (s *service) notify(m *Medicine, title, message string) {
	s.notifier.Publish(notification.Event{
		Role:       "pharmacy",
		TargetID:   m.PharmacyID.String(),
		MedicineID: m.ID.String(),
		Title:      title,
		Message:    message,
	})
}

func (s *service) ownedMedicine(ctx context.Context, pharmacyID, id string) (*Medicine, error) {
	m, err := s.repo.GetMedicineByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.PharmacyID.String() != pharmacyID {
		return nil, apperr.Forbidden("medicine belongs to another pharmacy")
	}
	return m, nil
}
