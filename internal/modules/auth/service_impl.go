package auth

import (
	"context"
	"os"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
)

const tokenTTL = 8 * time.Hour

type service struct {
	directories map[Role]Directory
	jwtKey      []byte
}

// NewService creates a new auth service. One directory per role, chosen once
// here rather than re-resolved inside each operation.
func NewService(users, pharmacies Directory) Service {
	return &service{
		directories: map[Role]Directory{
			RoleUser:     users,
			RolePharmacy: pharmacies,
		},
		jwtKey: []byte(os.Getenv("JWT_SECRET")),
	}
}

// Claims is the JWT payload issued at login.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.StandardClaims
}

func (s *service) Login(ctx context.Context, role Role, email, password string) (string, Account, error) {
	dir, ok := s.directories[role]
	if !ok {
		return "", nil, apperr.InvalidInput("unknown role %q", role)
	}

	account, err := dir.FindAccount(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHashValue()), []byte(password)); err != nil {
		return "", nil, apperr.Forbidden("invalid email or password")
	}

	claims := &Claims{
		Email: account.AccountEmail(),
		Role:  string(account.AccountRole()),
		StandardClaims: jwt.StandardClaims{
			Subject:   account.AccountID(),
			ExpiresAt: time.Now().Add(tokenTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtKey)
	if err != nil {
		return "", nil, apperr.Internal(err, "could not sign token")
	}
	return signed, account, nil
}
