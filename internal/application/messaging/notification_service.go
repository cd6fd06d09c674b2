package messaging

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/messaging"
	"github.com/ledgerly/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// NotificationService manages a user's in-app notifications
type NotificationService struct {
	repo   messaging.NotificationRepository
	logger *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo messaging.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger}
}

// Notify stores a notification for a user
func (s *NotificationService) Notify(
	ctx context.Context,
	tenantID, userID uuid.UUID,
	typ messaging.NotificationType,
	title, body string,
	ref *messaging.EntityRef,
) (*NotificationResponse, error) {
	n, err := messaging.NewNotification(tenantID, userID, typ, title, body, ref)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	resp := ToNotificationResponse(n)
	return &resp, nil
}

// List returns a page of the user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, tenantID, userID uuid.UUID, filter NotificationListFilter) ([]NotificationResponse, int64, error) {
	domainFilter := messaging.NotificationFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "created_at",
			OrderDir: "desc",
		}.Normalize(),
		UnreadOnly: filter.UnreadOnly,
	}
	if filter.Type != "" {
		typ := messaging.NotificationType(strings.ToUpper(filter.Type))
		if !typ.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_TYPE", fmt.Sprintf("Unknown notification type %q", filter.Type))
		}
		domainFilter.Type = &typ
	}

	items, total, err := s.repo.FindForUser(ctx, tenantID, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]NotificationResponse, len(items))
	for i, n := range items {
		out[i] = ToNotificationResponse(n)
	}
	return out, total, nil
}

// UnreadCount returns the number of unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context, tenantID, userID uuid.UUID) (*UnreadCountResponse, error) {
	count, err := s.repo.CountUnread(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	return &UnreadCountResponse{Count: count}, nil
}

// MarkRead marks one notification read
func (s *NotificationService) MarkRead(ctx context.Context, tenantID, userID, id uuid.UUID) (*NotificationResponse, error) {
	n, err := s.repo.FindByID(ctx, tenantID, userID, id)
	if err != nil {
		return nil, err
	}
	if n.MarkRead() {
		if err := s.repo.Save(ctx, n); err != nil {
			return nil, err
		}
	}
	resp := ToNotificationResponse(n)
	return &resp, nil
}

// MarkAllRead marks every unread notification of the user read
func (s *NotificationService) MarkAllRead(ctx context.Context, tenantID, userID uuid.UUID) (*MarkAllReadResponse, error) {
	updated, err := s.repo.MarkAllRead(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	return &MarkAllReadResponse{Updated: updated}, nil
}

// Delete removes one of the user's notifications
func (s *NotificationService) Delete(ctx context.Context, tenantID, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, tenantID, userID, id)
}
