package pharmacy

import (
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
	"github.com/chandamvula/pharmalink-backend/internal/modules/medicine"
)

type memRepo struct {
	pharmacies map[string]*Pharmacy
	seq        int64
}

func newMemRepo() *memRepo { return &memRepo{pharmacies: map[string]*Pharmacy{}} }

func (r *memRepo) CreatePharmacy(_ context.Context, p *Pharmacy) error {
	r.seq++
	p.PharmacyNumber = r.seq
	cp := *p
	r.pharmacies[p.ID.String()] = &cp
	return nil
}

func (r *memRepo) GetPharmacyByID(_ context.Context, id string) (*Pharmacy, error) {
	p, ok := r.pharmacies[id]
	if !ok {
		return nil, apperr.NotFound("pharmacy not found")
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) GetPharmacyByNumber(_ context.Context, number int64) (*Pharmacy, error) {
	for _, p := range r.pharmacies {
		if p.PharmacyNumber == number {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("pharmacy not found")
}

func (r *memRepo) GetPharmacyByEmail(_ context.Context, email string) (*Pharmacy, error) {
	for _, p := range r.pharmacies {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("pharmacy not found")
}

func (r *memRepo) UpdatePharmacy(_ context.Context, p *Pharmacy) error {
	if _, ok := r.pharmacies[p.ID.String()]; !ok {
		return apperr.NotFound("pharmacy not found")
	}
	cp := *p
	r.pharmacies[p.ID.String()] = &cp
	return nil
}

func (r *memRepo) UpdateRating(_ context.Context, id string, rating float64) error {
	p, ok := r.pharmacies[id]
	if !ok {
		return apperr.NotFound("pharmacy not found")
	}
	p.Rating = rating
	return nil
}

func (r *memRepo) DeletePharmacy(_ context.Context, id string) error {
	if _, ok := r.pharmacies[id]; !ok {
		return apperr.NotFound("pharmacy not found")
	}
	delete(r.pharmacies, id)
	return nil
}

// ListNearby fakes the store-side distance ranking using the Distance field
// pre-set on each seeded pharmacy.
func (r *memRepo) ListNearby(_ context.Context, _, _, maxDistance float64) ([]*Pharmacy, error) {
	var out []*Pharmacy
	for _, p := range r.pharmacies {
		if p.ActiveStatus && p.Distance <= maxDistance {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}

type stubCatalog struct {
	byPharmacy map[string][]*medicine.Medicine
	matches    []*medicine.Medicine
	deleted    []string
}

func (c *stubCatalog) ListByPharmacy(_ context.Context, pharmacyID string) ([]*medicine.Medicine, error) {
	return c.byPharmacy[pharmacyID], nil
}

func (c *stubCatalog) SearchByName(_ context.Context, _ string) ([]*medicine.Medicine, error) {
	return c.matches, nil
}

func (c *stubCatalog) DeleteAllByPharmacy(_ context.Context, pharmacyID string) ([]string, error) {
	c.deleted = append(c.deleted, pharmacyID)
	var ids []string
	for _, m := range c.byPharmacy[pharmacyID] {
		ids = append(ids, m.ID.String())
	}
	delete(c.byPharmacy, pharmacyID)
	return ids, nil
}

type stubScrubber struct{ pulled [][]string }

func (s *stubScrubber) PullMedicineFromAll(_ context.Context, ids []string) error {
	s.pulled = append(s.pulled, ids)
	return nil
}

func seedPharmacy(t *testing.T, repo *memRepo, name, address string, distance float64) *Pharmacy {
	t.Helper()
	p := &Pharmacy{
		ID:               uuid.New(),
		Email:            name + "@pharm.test",
		Name:             name,
		SuggestedAddress: address,
		ActiveStatus:     true,
		Distance:         distance,
	}
	if err := repo.CreatePharmacy(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestSearchNearby_RanksNameMatchesBeforeAddressMatches(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &stubCatalog{}, &stubScrubber{})

	// an address match that is closer than both name matches
	addrMatch := seedPharmacy(t, repo, "HealthPoint", "12 Greenwell Street", 100)
	farName := seedPharmacy(t, repo, "Greenwell Pharmacy", "90 Main Road", 900)
	nearName := seedPharmacy(t, repo, "Greenwell Chemist", "4 Hill Lane", 300)
	seedPharmacy(t, repo, "Unrelated Drugstore", "7 Other Street", 50)

	got, err := svc.SearchNearby(context.Background(), "greenwell", 0, 0, 10000)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("matches = %d, want 3", len(got))
	}
	wantOrder := []uuid.UUID{nearName.ID, farName.ID, addrMatch.ID}
	for i, p := range got {
		if p.ID != wantOrder[i] {
			t.Fatalf("position %d = %s, want %s", i, p.Name, wantOrder[i])
		}
	}
}

func TestSearchByMedicine_GroupsByNearbyPharmacy(t *testing.T) {
	repo := newMemRepo()
	near := seedPharmacy(t, repo, "Near Pharmacy", "1 A Street", 100)
	far := seedPharmacy(t, repo, "Far Pharmacy", "2 B Street", 50000)

	catalog := &stubCatalog{matches: []*medicine.Medicine{
		{ID: uuid.New(), PharmacyID: near.ID, Name: "Paracetamol"},
		{ID: uuid.New(), PharmacyID: near.ID, Name: "Paracetamol Extra"},
		{ID: uuid.New(), PharmacyID: far.ID, Name: "Paracetamol"},
	}}
	svc := NewService(repo, catalog, &stubScrubber{})

	groups, err := svc.SearchByMedicine(context.Background(), "paracetamol", 0, 0, 10000)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want only the nearby pharmacy", len(groups))
	}
	if groups[0].Pharmacy.ID != near.ID || len(groups[0].Medicines) != 2 {
		t.Fatalf("group = %+v", groups[0])
	}

	if _, err := svc.SearchByMedicine(context.Background(), "  ", 0, 0, 10000); apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("blank name: err = %v, want invalid input", err)
	}
}

func TestNearby_DefaultsRadiusAndSkipsInactive(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &stubCatalog{}, &stubScrubber{})

	active := seedPharmacy(t, repo, "Open Pharmacy", "1 A Street", 5000)
	inactive := seedPharmacy(t, repo, "Closed Pharmacy", "2 B Street", 5000)
	repo.pharmacies[inactive.ID.String()].ActiveStatus = false
	seedPharmacy(t, repo, "Distant Pharmacy", "3 C Street", 20000)

	got, err := svc.Nearby(context.Background(), 0, 0, 0)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(got) != 1 || got[0].ID != active.ID {
		t.Fatalf("nearby = %+v, want only the open pharmacy within 10km", got)
	}
}

func TestDeleteAccount_CascadesThroughCatalogAndCarts(t *testing.T) {
	repo := newMemRepo()
	scrubber := &stubScrubber{}

	svc := NewService(repo, &stubCatalog{}, scrubber)
	p, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:            "corner@pharm.test",
		Password:         "dispassword",
		Name:             "Corner Pharmacy",
		SuggestedAddress: "1 A Street",
	})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	medID := uuid.New()
	catalog := &stubCatalog{byPharmacy: map[string][]*medicine.Medicine{
		p.ID.String(): {{ID: medID, PharmacyID: p.ID, Name: "Paracetamol"}},
	}}
	svc = NewService(repo, catalog, scrubber)

	if err := svc.DeleteAccount(context.Background(), p.ID.String(), "wrong"); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("wrong password: err = %v, want forbidden", err)
	}
	if err := svc.DeleteAccount(context.Background(), p.ID.String(), "dispassword"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(catalog.deleted) != 1 || catalog.deleted[0] != p.ID.String() {
		t.Fatalf("catalog cascade = %v", catalog.deleted)
	}
	if len(scrubber.pulled) != 1 || scrubber.pulled[0][0] != medID.String() {
		t.Fatalf("cart scrub = %v", scrubber.pulled)
	}
	if err := svc.PharmacyExists(context.Background(), p.ID.String()); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("pharmacy still exists: %v", err)
	}
}

func TestGetDetails_AcceptsIDOrNumber(t *testing.T) {
	repo := newMemRepo()
	p := seedPharmacy(t, repo, "Corner Pharmacy", "1 A Street", 0)
	catalog := &stubCatalog{byPharmacy: map[string][]*medicine.Medicine{
		p.ID.String(): {{ID: uuid.New(), PharmacyID: p.ID, Name: "Paracetamol"}},
	}}
	svc := NewService(repo, catalog, &stubScrubber{})

	byID, err := svc.GetDetails(context.Background(), p.ID.String())
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	byNumber, err := svc.GetDetails(context.Background(), "1")
	if err != nil {
		t.Fatalf("by number: %v", err)
	}
	if byID.ID != byNumber.ID || len(byID.Medicines) != 1 {
		t.Fatalf("details mismatch: %+v vs %+v", byID.Pharmacy, byNumber.Pharmacy)
	}

	if _, err := svc.GetDetails(context.Background(), "not-an-id"); apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("garbage id: err = %v, want invalid input", err)
	}
}
