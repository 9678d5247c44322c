package pharmacy

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
	"github.com/chandamvula/pharmalink-backend/internal/fuzzy"
	"github.com/chandamvula/pharmalink-backend/internal/modules/auth"
	"github.com/chandamvula/pharmalink-backend/internal/modules/medicine"
)

// Catalog is the slice of the medicine module this package needs.
type Catalog interface {
	ListByPharmacy(ctx context.Context, pharmacyID string) ([]*medicine.Medicine, error)
	SearchByName(ctx context.Context, name string) ([]*medicine.Medicine, error)
	DeleteAllByPharmacy(ctx context.Context, pharmacyID string) (removedIDs []string, err error)
}

// CartScrubber removes deleted medicines from every user cart and wishlist.
type CartScrubber interface {
	PullMedicineFromAll(ctx context.Context, medicineIDs []string) error
}

// Details is a pharmacy with its public stock.
type Details struct {
	*Pharmacy
	Medicines []*medicine.Medicine `json:"medicines"`
}

// MedicineGroup is one nearby pharmacy's matching medicines, used by
// search-by-medicine.
type MedicineGroup struct {
	Pharmacy  *Pharmacy            `json:"pharmacy"`
	Medicines []*medicine.Medicine `json:"medicines"`
}

// Service defines pharmacy account and discovery business logic.
type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (*Pharmacy, error)
	GetDetails(ctx context.Context, idOrNumber string) (*Details, error)
	UpdateProfile(ctx context.Context, id string, req UpdateRequest) (*Pharmacy, error)
	DeleteAccount(ctx context.Context, id, password string) error

	// OwnStock lists the acting pharmacy's medicines.
	OwnStock(ctx context.Context, pharmacyID string) ([]*medicine.Medicine, error)

	// Nearby returns active pharmacies within maxDistance meters, closest first.
	Nearby(ctx context.Context, lat, lng, maxDistance float64) ([]*Pharmacy, error)

	// SearchNearby filters nearby pharmacies by fuzzy name/address match,
	// name matches ranked before address-only matches.
	SearchNearby(ctx context.Context, name string, lat, lng, maxDistance float64) ([]*Pharmacy, error)

	// SearchByMedicine finds nearby pharmacies stocking medicines that fuzzy
	// match the given name, grouped per pharmacy, closest first.
	SearchByMedicine(ctx context.Context, name string, lat, lng, maxDistance float64) ([]*MedicineGroup, error)

	// PharmacyExists verifies a pharmacy id, for other modules' guards.
	PharmacyExists(ctx context.Context, id string) error

	// SetAverageRating stores a freshly computed rating average.
	SetAverageRating(ctx context.Context, id string, avg float64) error
}

type service struct {
	repo     Repository
	catalog  Catalog
	scrubber CartScrubber
}

// NewService creates a new pharmacy service.
func NewService(repo Repository, catalog Catalog, scrubber CartScrubber) Service {
	return &service{repo: repo, catalog: catalog, scrubber: scrubber}
}

func (s *service) SignUp(ctx context.Context, req SignUpRequest) (*Pharmacy, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err, "could not hash password")
	}
	p := &Pharmacy{
		ID:                   uuid.New(),
		Email:                req.Email,
		PasswordHash:         string(hashed),
		Name:                 req.Name,
		Phone:                req.Phone,
		Latitude:             req.Latitude,
		Longitude:            req.Longitude,
		SuggestedAddress:     req.SuggestedAddress,
		OpeningDays:          req.OpeningDays,
		OpeningTime:          req.OpeningTime,
		ClosingTime:          req.ClosingTime,
		ActiveStatus:         true,
		DeliveryAvailability: req.DeliveryAvailability,
	}
	if err := s.repo.CreatePharmacy(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetDetails accepts either the storage id or the human-facing pharmacy
// number.
func (s *service) GetDetails(ctx context.Context, idOrNumber string) (*Details, error) {
	var p *Pharmacy
	var err error
	if _, parseErr := uuid.Parse(idOrNumber); parseErr == nil {
		p, err = s.repo.GetPharmacyByID(ctx, idOrNumber)
	} else if number, convErr := strconv.ParseInt(idOrNumber, 10, 64); convErr == nil {
		p, err = s.repo.GetPharmacyByNumber(ctx, number)
	} else {
		return nil, apperr.InvalidInput("pharmacy id is required")
	}
	if err != nil {
		return nil, err
	}

	medicines, err := s.catalog.ListByPharmacy(ctx, p.ID.String())
	if err != nil {
		return nil, err
	}
	return &Details{Pharmacy: p, Medicines: medicines}, nil
}

func (s *service) UpdateProfile(ctx context.Context, id string, req UpdateRequest) (*Pharmacy, error) {
	p, err := s.repo.GetPharmacyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.Latitude != nil {
		p.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		p.Longitude = *req.Longitude
	}
	if req.SuggestedAddress != nil {
		p.SuggestedAddress = *req.SuggestedAddress
	}
	if req.OpeningDays != nil {
		p.OpeningDays = *req.OpeningDays
	}
	if req.OpeningTime != nil {
		p.OpeningTime = *req.OpeningTime
	}
	if req.ClosingTime != nil {
		p.ClosingTime = *req.ClosingTime
	}
	if req.ActiveStatus != nil {
		p.ActiveStatus = *req.ActiveStatus
	}
	if req.DeliveryAvailability != nil {
		p.DeliveryAvailability = *req.DeliveryAvailability
	}
	if err := s.repo.UpdatePharmacy(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteAccount removes the pharmacy together with its medicines and every
// cart/wishlist line referencing them.
func (s *service) DeleteAccount(ctx context.Context, id, password string) error {
	if password == "" {
		return apperr.InvalidInput("password is required")
	}
	p, err := s.repo.GetPharmacyByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return apperr.Forbidden("invalid password")
	}

	removed, err := s.catalog.DeleteAllByPharmacy(ctx, id)
	if err != nil {
		return err
	}
	if err := s.scrubber.PullMedicineFromAll(ctx, removed); err != nil {
		return err
	}
	return s.repo.DeletePharmacy(ctx, id)
}

func (s *service) OwnStock(ctx context.Context, pharmacyID string) ([]*medicine.Medicine, error) {
	return s.catalog.ListByPharmacy(ctx, pharmacyID)
}

func (s *service) Nearby(ctx context.Context, lat, lng, maxDistance float64) ([]*Pharmacy, error) {
	if maxDistance <= 0 {
		maxDistance = 10000
	}
	return s.repo.ListNearby(ctx, lat, lng, maxDistance)
}

func (s *service) SearchNearby(ctx context.Context, name string, lat, lng, maxDistance float64) ([]*Pharmacy, error) {
	nearby, err := s.Nearby(ctx, lat, lng, maxDistance)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nearby, nil
	}

	var nameMatches, addressMatches []*Pharmacy
	for _, p := range nearby {
		switch {
		case fuzzy.Match(name, p.Name):
			nameMatches = append(nameMatches, p)
		case fuzzy.Match(name, p.SuggestedAddress):
			addressMatches = append(addressMatches, p)
		}
	}
	sort.SliceStable(nameMatches, func(i, j int) bool { return nameMatches[i].Distance < nameMatches[j].Distance })
	sort.SliceStable(addressMatches, func(i, j int) bool { return addressMatches[i].Distance < addressMatches[j].Distance })
	return append(nameMatches, addressMatches...), nil
}

func (s *service) SearchByMedicine(ctx context.Context, name string, lat, lng, maxDistance float64) ([]*MedicineGroup, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.InvalidInput("medicine name is required")
	}
	matches, err := s.catalog.SearchByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return []*MedicineGroup{}, nil
	}

	byPharmacy := make(map[string][]*medicine.Medicine)
	for _, m := range matches {
		pid := m.PharmacyID.String()
		byPharmacy[pid] = append(byPharmacy[pid], m)
	}

	nearby, err := s.Nearby(ctx, lat, lng, maxDistance)
	if err != nil {
		return nil, err
	}

	groups := []*MedicineGroup{}
	for _, p := range nearby {
		if stocked, ok := byPharmacy[p.ID.String()]; ok {
			groups = append(groups, &MedicineGroup{Pharmacy: p, Medicines: stocked})
		}
	}
	return groups, nil
}

func (s *service) PharmacyExists(ctx context.Context, id string) error {
	_, err := s.repo.GetPharmacyByID(ctx, id)
	return err
}

func (s *service) SetAverageRating(ctx context.Context, id string, avg float64) error {
	return s.repo.UpdateRating(ctx, id, avg)
}

// ── directory for the auth module ────────────────────────────────────────────

// Directory adapts the repository to the auth account lookup.
type Directory struct{ Repo Repository }

func (d Directory) FindAccount(ctx context.Context, email string) (auth.Account, error) {
	p, err := d.Repo.GetPharmacyByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return p, nil
}
