package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

// Service is the append-only notification fan-out: create, filtered list,
// and read-state mutation. Notifications are never edited otherwise.
type Service interface {
	Notify(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, userID uuid.UUID, isRead *bool) ([]*model.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	repo repository.NotificationRepository
}

func NewService(repo repository.NotificationRepository) Service {
	return &service{repo: repo}
}

func (s *service) Notify(ctx context.Context, n *model.Notification) error {
	if n.UserID == uuid.Nil {
		return apperrors.BadRequest("notification recipient is required", nil)
	}
	if n.Type == "" {
		n.Type = model.NotificationTypeSystem
	}
	n.IsRead = false

	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, isRead *bool) ([]*model.Notification, error) {
	notifications, err := s.repo.List(ctx, &model.NotificationFilters{
		UserID: userID,
		IsRead: isRead,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead is idempotent: re-marking an already-read notification succeeds.
func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("notification", err)
		}
		return fmt.Errorf("failed to get notification: %w", err)
	}

	// Notifications are private to their recipient.
	if n.UserID != userID {
		return apperrors.NotFound("notification", nil)
	}

	if n.IsRead {
		return nil
	}
	return s.repo.MarkRead(ctx, notificationID)
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return count, nil
}
