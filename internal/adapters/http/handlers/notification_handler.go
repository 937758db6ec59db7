package handlers

import (
	"errors"

	"townhall-docflow/internal/adapters/http/middleware"
	"townhall-docflow/internal/adapters/persistence/repositories"
	"townhall-docflow/internal/core/domain"
	"townhall-docflow/internal/pkg/pagination"
	"townhall-docflow/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler handles in-app notification endpoints
type NotificationHandler struct {
	notifRepo repositories.NotificationRepository
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{
		notifRepo: notifRepo,
	}
}

// ListNotifications handles listing the caller's notifications
func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	var isRead *bool
	if c.Query("unread_only") == "true" {
		unread := false
		isRead = &unread
	}

	notifications, total, err := h.notifRepo.ListByUser(c.Context(), p.UserID, isRead, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list notifications")
	}

	return response.Success(c, "Notifications retrieved successfully", pagination.NewResponse(notifications, params, total))
}

// UnreadCount handles the unread badge counter
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	count, err := h.notifRepo.CountUnread(c.Context(), p.UserID)
	if err != nil {
		return response.InternalServerError(c, "Failed to count notifications")
	}

	return response.Success(c, "Unread count retrieved successfully", fiber.Map{
		"unread": count,
	})
}

// MarkRead handles acknowledging one notification
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.notifRepo.MarkRead(c.Context(), c.Params("id"), p.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "Notification not found")
		}
		return response.InternalServerError(c, "Failed to mark notification read")
	}

	return response.Success(c, "Notification marked read", nil)
}

// MarkAllRead handles acknowledging all of the caller's notifications
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.notifRepo.MarkAllRead(c.Context(), p.UserID); err != nil {
		return response.InternalServerError(c, "Failed to mark notifications read")
	}

	return response.Success(c, "All notifications marked read", nil)
}
