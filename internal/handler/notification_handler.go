package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mingle/mingle-backend/internal/common"
	"github.com/mingle/mingle-backend/internal/middleware"
	"github.com/mingle/mingle-backend/internal/service"
)

// NotificationHandler notification endpoints
type NotificationHandler struct {
	notifications service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// UnreadSummary godoc
// @Summary Unread notification count
// @Tags notifications
// @Produce json
// @Success 200 {object} common.APIResponse
// @Router /notifications/unread-count [get]
// @Security BearerAuth
func (h *NotificationHandler) UnreadSummary(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	summary, err := h.notifications.UnreadSummary(userID)
	if err != nil {
		common.DomainErrorResponse(c, err, "failed to load notification summary")
		return
	}
	common.SuccessResponse(c, summary)
}
