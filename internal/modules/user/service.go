package user

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
	"github.com/chandamvula/pharmalink-backend/internal/modules/auth"
)

// Catalog is the slice of the medicine module this package needs: existence
// checks when staging cart or wishlist entries.
type Catalog interface {
	MedicineExists(ctx context.Context, id string) error
}

// Service defines user account, cart, and wishlist business logic.
type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (*User, error)
	GetProfile(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id string, req UpdateRequest) (*User, error)
	DeleteAccount(ctx context.Context, id, password string) error

	AddToCart(ctx context.Context, userID, medicineID string, quantity int) ([]CartItem, error)
	RemoveFromCart(ctx context.Context, userID, medicineID string) ([]CartItem, error)
	GetCart(ctx context.Context, userID string) ([]CartItem, error)

	AddToWishlist(ctx context.Context, userID, medicineID string) ([]WishlistItem, error)
	RemoveFromWishlist(ctx context.Context, userID, medicineID string) ([]WishlistItem, error)
	GetWishlist(ctx context.Context, userID string) ([]WishlistItem, error)

	// ConsumeFromCart reconciles the cart after an order consumed staged
	// items: one read, one batched write.
	ConsumeFromCart(ctx context.Context, userID string, consumed map[string]int) error

	// PullMedicineFromAll removes medicines from every cart and wishlist.
	PullMedicineFromAll(ctx context.Context, medicineIDs []string) error
}

type service struct {
	repo    Repository
	catalog Catalog
}

// NewService creates a new user service.
func NewService(repo Repository, catalog Catalog) Service {
	return &service{repo: repo, catalog: catalog}
}

func (s *service) SignUp(ctx context.Context, req SignUpRequest) (*User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err, "could not hash password")
	}

	u := &User{
		ID:               uuid.New(),
		Email:            req.Email,
		PasswordHash:     string(hashed),
		Name:             req.Name,
		Phone:            req.Phone,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		SuggestedAddress: req.SuggestedAddress,
		Cart:             []CartItem{},
		Wishlist:         []WishlistItem{},
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) GetProfile(ctx context.Context, id string) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, id string, req UpdateRequest) (*User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Latitude != nil {
		u.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		u.Longitude = *req.Longitude
	}
	if req.SuggestedAddress != nil {
		u.SuggestedAddress = *req.SuggestedAddress
	}
	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) DeleteAccount(ctx context.Context, id, password string) error {
	if password == "" {
		return apperr.InvalidInput("password is required")
	}
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return apperr.Forbidden("invalid password")
	}
	return s.repo.DeleteUser(ctx, id)
}

// ── cart & wishlist ──────────────────────────────────────────────────────────

func (s *service) AddToCart(ctx context.Context, userID, medicineID string, quantity int) ([]CartItem, error) {
	if quantity < 1 {
		return nil, apperr.InvalidInput("quantity must be at least 1")
	}
	if err := s.catalog.MedicineExists(ctx, medicineID); err != nil {
		return nil, err
	}
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range u.Cart {
		if u.Cart[i].MedicineID == medicineID {
			u.Cart[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		u.Cart = append(u.Cart, CartItem{MedicineID: medicineID, Quantity: quantity})
	}
	if err := s.repo.UpdateCart(ctx, userID, u.Cart); err != nil {
		return nil, err
	}
	return u.Cart, nil
}

func (s *service) RemoveFromCart(ctx context.Context, userID, medicineID string) ([]CartItem, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	next := u.Cart[:0]
	for _, item := range u.Cart {
		if item.MedicineID != medicineID {
			next = append(next, item)
		}
	}
	u.Cart = next
	if err := s.repo.UpdateCart(ctx, userID, u.Cart); err != nil {
		return nil, err
	}
	return u.Cart, nil
}

func (s *service) GetCart(ctx context.Context, userID string) ([]CartItem, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Cart, nil
}

func (s *service) AddToWishlist(ctx context.Context, userID, medicineID string) ([]WishlistItem, error) {
	if err := s.catalog.MedicineExists(ctx, medicineID); err != nil {
		return nil, err
	}
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, item := range u.Wishlist {
		if item.MedicineID == medicineID {
			return u.Wishlist, nil
		}
	}
	u.Wishlist = append(u.Wishlist, WishlistItem{MedicineID: medicineID})
	if err := s.repo.UpdateWishlist(ctx, userID, u.Wishlist); err != nil {
		return nil, err
	}
	return u.Wishlist, nil
}

func (s *service) RemoveFromWishlist(ctx context.Context, userID, medicineID string) ([]WishlistItem, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	next := u.Wishlist[:0]
	for _, item := range u.Wishlist {
		if item.MedicineID != medicineID {
			next = append(next, item)
		}
	}
	u.Wishlist = next
	if err := s.repo.UpdateWishlist(ctx, userID, u.Wishlist); err != nil {
		return nil, err
	}
	return u.Wishlist, nil
}

func (s *service) GetWishlist(ctx context.Context, userID string) ([]WishlistItem, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Wishlist, nil
}

func (s *service) ConsumeFromCart(ctx context.Context, userID string, consumed map[string]int) error {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	reconciled := ReconcileCart(u.Cart, consumed)
	return s.repo.UpdateCart(ctx, userID, reconciled)
}

func (s *service) PullMedicineFromAll(ctx context.Context, medicineIDs []string) error {
	return s.repo.PullMedicineFromAll(ctx, medicineIDs)
}

// ── directory for the auth module ────────────────────────────────────────────

// Directory adapts the repository to the auth account lookup.
type Directory struct{ Repo Repository }

func (d Directory) FindAccount(ctx context.Context, email string) (auth.Account, error) {
	u, err := d.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return u, nil
}
