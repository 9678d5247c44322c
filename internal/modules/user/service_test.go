package user

import (
	"context"
	"testing"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
)

type memRepo struct {
	users map[string]*User
	seq   int64
}

func newMemRepo() *memRepo { return &memRepo{users: map[string]*User{}} }

func (r *memRepo) CreateUser(_ context.Context, u *User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return apperr.Conflict("email already registered")
		}
	}
	r.seq++
	u.UserNumber = r.seq
	cp := *u
	r.users[u.ID.String()] = &cp
	return nil
}

func (r *memRepo) GetUserByID(_ context.Context, id string) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	cp := *u
	cp.Cart = append([]CartItem(nil), u.Cart...)
	cp.Wishlist = append([]WishlistItem(nil), u.Wishlist...)
	return &cp, nil
}

func (r *memRepo) GetUserByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (r *memRepo) UpdateProfile(_ context.Context, u *User) error {
	if _, ok := r.users[u.ID.String()]; !ok {
		return apperr.NotFound("user not found")
	}
	cp := *u
	r.users[u.ID.String()] = &cp
	return nil
}

func (r *memRepo) UpdateCart(_ context.Context, id string, cart []CartItem) error {
	u, ok := r.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.Cart = append([]CartItem(nil), cart...)
	return nil
}

func (r *memRepo) UpdateWishlist(_ context.Context, id string, wishlist []WishlistItem) error {
	u, ok := r.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.Wishlist = append([]WishlistItem(nil), wishlist...)
	return nil
}

func (r *memRepo) DeleteUser(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return apperr.NotFound("user not found")
	}
	delete(r.users, id)
	return nil
}

func (r *memRepo) PullMedicineFromAll(_ context.Context, medicineIDs []string) error {
	gone := map[string]bool{}
	for _, id := range medicineIDs {
		gone[id] = true
	}
	for _, u := range r.users {
		cart := u.Cart[:0]
		for _, item := range u.Cart {
			if !gone[item.MedicineID] {
				cart = append(cart, item)
			}
		}
		u.Cart = cart
		wishlist := u.Wishlist[:0]
		for _, item := range u.Wishlist {
			if !gone[item.MedicineID] {
				wishlist = append(wishlist, item)
			}
		}
		u.Wishlist = wishlist
	}
	return nil
}

type stubCatalog struct{ known map[string]bool }

func (c stubCatalog) MedicineExists(_ context.Context, id string) error {
	if !c.known[id] {
		return apperr.NotFound("medicine not found")
	}
	return nil
}

func signUp(t *testing.T, svc Service, email string) *User {
	t.Helper()
	u, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:            email,
		Password:         "hunter2hunter2",
		Name:             "Jane",
		Phone:            "0970000000",
		SuggestedAddress: "1 A Street",
	})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	return u
}

func TestSignUp_RejectsDuplicateEmail(t *testing.T) {
	svc := NewService(newMemRepo(), stubCatalog{})
	signUp(t, svc, "jane@example.com")

	_, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:    "jane@example.com",
		Password: "hunter2hunter2",
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestCart_AddMergesAndRemoveDrops(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, stubCatalog{known: map[string]bool{"m1": true, "m2": true}})
	u := signUp(t, svc, "jane@example.com")
	ctx := context.Background()

	if _, err := svc.AddToCart(ctx, u.ID.String(), "m1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := svc.AddToCart(ctx, u.ID.String(), "m1", 3)
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if len(cart) != 1 || cart[0].Quantity != 5 {
		t.Fatalf("cart = %+v, want merged quantity 5", cart)
	}

	if _, err := svc.AddToCart(ctx, u.ID.String(), "m2", 1); err != nil {
		t.Fatalf("add m2: %v", err)
	}
	cart, err = svc.RemoveFromCart(ctx, u.ID.String(), "m1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(cart) != 1 || cart[0].MedicineID != "m2" {
		t.Fatalf("cart = %+v, want only m2", cart)
	}

	if _, err := svc.AddToCart(ctx, u.ID.String(), "ghost", 1); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("unknown medicine: err = %v, want not found", err)
	}
	if _, err := svc.AddToCart(ctx, u.ID.String(), "m2", 0); apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("zero quantity: err = %v, want invalid input", err)
	}
}

func TestWishlist_Deduplicates(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, stubCatalog{known: map[string]bool{"m1": true}})
	u := signUp(t, svc, "jane@example.com")
	ctx := context.Background()

	if _, err := svc.AddToWishlist(ctx, u.ID.String(), "m1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	wl, err := svc.AddToWishlist(ctx, u.ID.String(), "m1")
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if len(wl) != 1 {
		t.Fatalf("wishlist = %+v, want one entry", wl)
	}
}

func TestConsumeFromCart_AppliesReconciliationInOneWrite(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, stubCatalog{known: map[string]bool{"m1": true, "m2": true}})
	u := signUp(t, svc, "jane@example.com")
	ctx := context.Background()

	if _, err := svc.AddToCart(ctx, u.ID.String(), "m1", 5); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddToCart(ctx, u.ID.String(), "m2", 2); err != nil {
		t.Fatal(err)
	}

	if err := svc.ConsumeFromCart(ctx, u.ID.String(), map[string]int{"m1": 3, "m2": 2}); err != nil {
		t.Fatalf("consume: %v", err)
	}
	cart, err := svc.GetCart(ctx, u.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	if len(cart) != 1 || cart[0].MedicineID != "m1" || cart[0].Quantity != 2 {
		t.Fatalf("cart = %+v, want m1 x2", cart)
	}
}

func TestPullMedicineFromAll_ScrubsEveryAccount(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, stubCatalog{known: map[string]bool{"m1": true, "m2": true}})
	ctx := context.Background()

	a := signUp(t, svc, "a@example.com")
	b := signUp(t, svc, "b@example.com")
	if _, err := svc.AddToCart(ctx, a.ID.String(), "m1", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddToWishlist(ctx, b.ID.String(), "m1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddToCart(ctx, b.ID.String(), "m2", 1); err != nil {
		t.Fatal(err)
	}

	if err := svc.PullMedicineFromAll(ctx, []string{"m1"}); err != nil {
		t.Fatalf("pull: %v", err)
	}
	cartA, _ := svc.GetCart(ctx, a.ID.String())
	if len(cartA) != 0 {
		t.Fatalf("cart a = %+v, want empty", cartA)
	}
	wlB, _ := svc.GetWishlist(ctx, b.ID.String())
	if len(wlB) != 0 {
		t.Fatalf("wishlist b = %+v, want empty", wlB)
	}
	cartB, _ := svc.GetCart(ctx, b.ID.String())
	if len(cartB) != 1 || cartB[0].MedicineID != "m2" {
		t.Fatalf("cart b = %+v, want m2 kept", cartB)
	}
}

func TestDeleteAccount_RequiresMatchingPassword(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, stubCatalog{})
	u := signUp(t, svc, "jane@example.com")
	ctx := context.Background()

	if err := svc.DeleteAccount(ctx, u.ID.String(), ""); apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("empty password: err = %v, want invalid input", err)
	}
	if err := svc.DeleteAccount(ctx, u.ID.String(), "wrong"); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("wrong password: err = %v, want forbidden", err)
	}
	if err := svc.DeleteAccount(ctx, u.ID.String(), "hunter2hunter2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetProfile(ctx, u.ID.String()); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("profile after delete: err = %v, want not found", err)
	}
}
