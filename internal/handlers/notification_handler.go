package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/urbano-social/backend/internal/models"
	"github.com/urbano-social/backend/internal/repositories"
)

// NotificationHandler exposes the notification query surface.
type NotificationHandler struct {
	notifications repositories.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes on the authenticated group.
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("", h.GetNotifications)
	g.GET("/unread-count", h.GetUnreadCount)
	g.POST("/mark-read", h.MarkAsRead)
}

// GetNotifications returns the authenticated user's notifications, newest
// first. unread_only=true narrows to unread ones.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	unreadOnly, _ := strconv.ParseBool(c.QueryParam("unread_only"))

	notifications, err := h.notifications.GetByRecipientID(c.Request().Context(), currentUser.ID, limit, unreadOnly)
	if err != nil {
		return toHTTPError(err)
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return c.JSON(http.StatusOK, notifications)
}

// GetUnreadCount returns how many unread notifications the user has.
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}
	count, err := h.notifications.GetUnreadCount(c.Request().Context(), currentUser.ID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"unread_count": count})
}

type markReadRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// MarkAsRead marks the given notifications as read. Only the recipient's own
// notifications are affected.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUser, err := requireUser(c)
	if err != nil {
		return err
	}

	req := new(markReadRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	modified, err := h.notifications.MarkManyAsRead(c.Request().Context(), currentUser.ID, req.IDs)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"marked_read": modified})
}
