package notification

import "context"

// Service defines the notification inbox operations.
type Service interface {
	// ListMine returns the caller's notifications, newest first.
	ListMine(ctx context.Context, role, targetID string) ([]*Notification, error)

	// MarkRead marks one of the caller's notifications as read.
	MarkRead(ctx context.Context, id, role, targetID string) (*Notification, error)

	// Delete removes one of the caller's notifications.
	Delete(ctx context.Context, id, role, targetID string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListMine(ctx context.Context, role, targetID string) ([]*Notification, error) {
	return s.repo.ListForTarget(ctx, role, targetID)
}

func (s *service) MarkRead(ctx context.Context, id, role, targetID string) (*Notification, error) {
	n, err := s.repo.GetForTarget(ctx, id, role, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkRead(ctx, n.ID.String()); err != nil {
		return nil, err
	}
	n.Read = true
	return n, nil
}

func (s *service) Delete(ctx context.Context, id, role, targetID string) error {
	n, err := s.repo.GetForTarget(ctx, id, role, targetID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, n.ID.String())
}
