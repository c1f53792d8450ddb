package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
)

const snippetLength = 80

// NotificationService creates and reads notifications. Creation is best-effort:
// failures are logged and never fail the action that triggered them.
type NotificationService struct {
	repo   repositories.NotificationRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewNotificationService(repo repositories.NotificationRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger, now: time.Now}
}

// Notify records that actor did something the recipient should hear about
func (s *NotificationService) Notify(ctx context.Context, actor *models.User, recipientID uint, kind string, post *models.Post, message string) {
	if actor.ID == recipientID {
		return
	}

	n := &models.Notification{
		RecipientID:      recipientID,
		Type:             kind,
		ActorID:          actor.ID,
		ActorHandle:      actor.Handle,
		ActorDisplayName: actor.DisplayName,
		ActorAvatarURL:   actor.AvatarURL,
		Message:          message,
		CreatedAt:        s.now().UTC(),
	}
	if post != nil {
		n.PostID = post.ID.Hex()
		n.PostSnippet = snippet(post.Content)
	}

	if err := s.repo.CreateNotification(ctx, n); err != nil {
		s.logger.Warn("failed to create notification",
			"type", kind,
			"actor_id", actor.ID,
			"recipient_id", recipientID,
			"error", err)
	}
}

func (s *NotificationService) List(ctx context.Context, recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	notifications, total, err := s.repo.GetByRecipientID(ctx, recipientID, page, limit)
	if err != nil {
		return nil, 0, storageErr(err, "list notifications")
	}
	return notifications, total, nil
}

func (s *NotificationService) Grouped(ctx context.Context, recipientID uint) (*models.GroupedNotifications, error) {
	grouped, err := s.repo.GetGrouped(ctx, recipientID, s.now())
	if err != nil {
		return nil, storageErr(err, "group notifications")
	}
	return grouped, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	count, err := s.repo.GetUnreadCount(ctx, recipientID)
	if err != nil {
		return 0, storageErr(err, "count unread notifications")
	}
	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, recipientID, notificationID uint) error {
	return storageErr(s.repo.MarkAsRead(ctx, recipientID, notificationID), "mark notification read")
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uint) error {
	return storageErr(s.repo.MarkAllAsRead(ctx, recipientID), "mark notifications read")
}

func snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= snippetLength {
		return content
	}
	return string(runes[:snippetLength]) + "…"
}
