package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/urbano-social/backend/internal/models"
	"github.com/urbano-social/backend/internal/realtime"
	"github.com/urbano-social/backend/internal/repositories"
)

// Pusher delivers events to live connections. Delivery is best-effort; a
// missed push is recovered by the client's next fetch.
type Pusher interface {
	Broadcast(channelKey string, event realtime.Event)
}

// NotificationService persists notifications and immediately attempts push
// delivery to the recipient's live connections.
type NotificationService struct {
	notifications repositories.NotificationRepository
	pusher        Pusher
	logger        *slog.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(notifications repositories.NotificationRepository, pusher Pusher, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{notifications: notifications, pusher: pusher, logger: logger}
}

// Notify writes the notification record and pushes it to the recipient's
// personal channel. Users are never notified about their own actions. Push
// failure is invisible here: the broadcaster prunes dead connections and the
// record remains queryable.
func (s *NotificationService) Notify(ctx context.Context, notification *models.Notification) error {
	if notification.UserID == notification.EmitterID {
		return nil
	}
	notification.Read = false
	notification.CreatedAt = time.Now().UTC()

	if err := s.notifications.CreateNotification(ctx, notification); err != nil {
		return err
	}

	s.pusher.Broadcast(realtime.UserChannel(notification.UserID), realtime.Event{
		Name: realtime.EventNewNotification,
		Data: notification,
	})
	return nil
}
