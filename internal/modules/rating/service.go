package rating

import (
	"context"

	"github.com/google/uuid"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
	"github.com/chandamvula/pharmalink-backend/internal/modules/order"
)

// Orders resolves the order a rating is about, scoped to its owner.
type Orders interface {
	GetOrder(ctx context.Context, actorID, actorRole, orderID string) (*order.Order, error)
}

// Pharmacies stores the recomputed average on the pharmacy record.
type Pharmacies interface {
	SetAverageRating(ctx context.Context, id string, avg float64) error
}

// Service defines rating business logic.
type Service interface {
	// Add rates a completed order and refreshes the pharmacy's average.
	Add(ctx context.Context, userID string, req CreateRequest) (*Rating, error)

	ListPharmacyRatings(ctx context.Context, pharmacyID string) ([]*Rating, error)
	ListUserRatings(ctx context.Context, userID string) ([]*Rating, error)
	Average(ctx context.Context, pharmacyID string) (float64, error)
}

type service struct {
	repo       Repository
	orders     Orders
	pharmacies Pharmacies
}

// NewService creates a new rating service.
func NewService(repo Repository, orders Orders, pharmacies Pharmacies) Service {
	return &service{repo: repo, orders: orders, pharmacies: pharmacies}
}

func (s *service) Add(ctx context.Context, userID string, req CreateRequest) (*Rating, error) {
	o, err := s.orders.GetOrder(ctx, userID, "user", req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusCompleted {
		return nil, apperr.InvalidState("only completed orders can be rated")
	}

	rt := &Rating{
		ID:         uuid.New(),
		OrderID:    o.ID,
		UserID:     o.UserID,
		PharmacyID: o.PharmacyID,
		Score:      req.Score,
		Comment:    req.Comment,
	}
	if err := s.repo.CreateRating(ctx, rt); err != nil {
		return nil, err
	}

	// a stale average is harmless, the next rating refreshes it
	if avg, err := s.repo.AverageForPharmacy(ctx, o.PharmacyID.String()); err == nil {
		_ = s.pharmacies.SetAverageRating(ctx, o.PharmacyID.String(), avg)
	}
	return rt, nil
}

func (s *service) ListPharmacyRatings(ctx context.Context, pharmacyID string) ([]*Rating, error) {
	return s.repo.ListByPharmacy(ctx, pharmacyID)
}

func (s *service) ListUserRatings(ctx context.Context, userID string) ([]*Rating, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Average(ctx context.Context, pharmacyID string) (float64, error) {
	return s.repo.AverageForPharmacy(ctx, pharmacyID)
}
