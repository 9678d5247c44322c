package auth

import (
	"context"
	"os"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
)

type fakeAccount struct {
	id, email, hash string
	role            Role
}

func (a fakeAccount) AccountID() string         { return a.id }
func (a fakeAccount) AccountEmail() string      { return a.email }
func (a fakeAccount) AccountRole() Role         { return a.role }
func (a fakeAccount) PasswordHashValue() string { return a.hash }

type fakeDirectory map[string]fakeAccount

func (d fakeDirectory) FindAccount(_ context.Context, email string) (Account, error) {
	a, ok := d[email]
	if !ok {
		return nil, apperr.NotFound("account not found")
	}
	return a, nil
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return string(h)
}

func TestLogin(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	users := fakeDirectory{
		"jane@example.com": {id: "u1", email: "jane@example.com", role: RoleUser, hash: hash(t, "hunter2hunter2")},
	}
	pharmacies := fakeDirectory{
		"corner@pharm.com": {id: "p1", email: "corner@pharm.com", role: RolePharmacy, hash: hash(t, "dispassword")},
	}
	svc := NewService(users, pharmacies)
	ctx := context.Background()

	token, account, err := svc.Login(ctx, RoleUser, "jane@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if account.AccountID() != "u1" || account.AccountRole() != RoleUser {
		t.Fatalf("account = %v", account)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.Subject != "u1" || claims.Role != string(RoleUser) {
		t.Fatalf("claims = %+v", claims)
	}

	if _, _, err := svc.Login(ctx, RoleUser, "jane@example.com", "wrong"); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("wrong password: err = %v, want forbidden", err)
	}
	if _, _, err := svc.Login(ctx, RoleUser, "nobody@example.com", "x"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("unknown email: err = %v, want not found", err)
	}

	// the user directory must not satisfy a pharmacy login
	if _, _, err := svc.Login(ctx, RolePharmacy, "jane@example.com", "hunter2hunter2"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("cross-role login: err = %v, want not found", err)
	}
	if _, _, err := svc.Login(ctx, RolePharmacy, "corner@pharm.com", "dispassword"); err != nil {
		t.Fatalf("pharmacy login: %v", err)
	}
}
