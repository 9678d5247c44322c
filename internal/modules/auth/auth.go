package auth

import "context"

// Role distinguishes the two account populations.
type Role string

const (
	RoleUser     Role = "user"
	RolePharmacy Role = "pharmacy"
)

// Account is the capability every authenticatable record exposes. User and
// Pharmacy each implement it; the concrete value is selected once at login and
// never re-derived per call.
type Account interface {
	AccountID() string
	AccountEmail() string
	AccountRole() Role
	PasswordHashValue() string
}

// Directory looks an account up by email within one role's population.
type Directory interface {
	FindAccount(ctx context.Context, email string) (Account, error)
}

// Service defines the interface for authentication-related business logic.
type Service interface {
	Login(ctx context.Context, role Role, email, password string) (token string, account Account, err error)
}
