package notification

import "context"

// Repository defines data access for notifications.
type Repository interface {
	// Create persists a new notification record.
	Create(ctx context.Context, n *Notification) error

	// ListForTarget returns all notifications addressed to one account,
	// newest first.
	ListForTarget(ctx context.Context, role, targetID string) ([]*Notification, error)

	// GetForTarget fetches one notification if it is addressed to the account.
	GetForTarget(ctx context.Context, id, role, targetID string) (*Notification, error)

	// MarkRead flips the read flag.
	MarkRead(ctx context.Context, id string) error

	// Delete removes a notification.
	Delete(ctx context.Context, id string) error
}
