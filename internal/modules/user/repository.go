package user

import "context"

// Repository defines data access for user accounts.
type Repository interface {
	// CreateUser persists a new user and fills in its assigned user number.
	CreateUser(ctx context.Context, u *User) error

	// GetUserByID retrieves a user with cart and wishlist.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByEmail retrieves a user by unique email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// UpdateProfile persists the editable profile fields.
	UpdateProfile(ctx context.Context, u *User) error

	// UpdateCart persists the whole cart in one write.
	UpdateCart(ctx context.Context, id string, cart []CartItem) error

	// UpdateWishlist persists the whole wishlist in one write.
	UpdateWishlist(ctx context.Context, id string, wishlist []WishlistItem) error

	// DeleteUser removes the account.
	DeleteUser(ctx context.Context, id string) error

	// PullMedicineFromAll removes the given medicines from every cart and
	// wishlist. Used when a medicine or pharmacy is deleted.
	PullMedicineFromAll(ctx context.Context, medicineIDs []string) error
}
