package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/schoolyard-api/internal/domain"
	"github.com/schoolyard-api/internal/pkg/id"
)

type Service interface {
	Notify(ctx context.Context, userID, kind, message string) error
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) error
}

type service struct {
	repo notificationStore
}

func NewService(repo notificationStore) Service {
	return &service{repo: repo}
}

func (s *service) Notify(ctx context.Context, userID, kind, message string) error {
	now := time.Now().UTC()
	return s.repo.Put(ctx, &domain.Notification{
		NotificationID: id.New(),
		UserID:         userID,
		Kind:           kind,
		Message:        message,
		Readed:         0,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

func (s *service) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.ListUnread(ctx, userID)
}

func (s *service) MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, fmt.Errorf("forbidden: %w", domain.ErrForbidden)
	}
	if err := s.repo.MarkAsRead(ctx, notificationID); err != nil {
		return nil, err
	}
	n.Readed = 1
	return n, nil
}
