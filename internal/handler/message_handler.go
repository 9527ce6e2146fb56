package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mingle/mingle-backend/internal/common"
	"github.com/mingle/mingle-backend/internal/domain"
	"github.com/mingle/mingle-backend/internal/middleware"
	"github.com/mingle/mingle-backend/internal/service"
)

// MessageHandler message endpoints
type MessageHandler struct {
	messages service.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messages service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// Send godoc
// @Summary Send a message
// @Description Persists a message in a conversation and pushes it to connected participants
// @Tags messages
// @Accept json
// @Produce json
// @Param id path int true "conversation id"
// @Param request body domain.SendMessageRequest true "message payload"
// @Success 201 {object} common.APIResponse
// @Router /conversations/{id}/messages [post]
// @Security BearerAuth
func (h *MessageHandler) Send(c *gin.Context) {
	userID, conversationID, ok := identify(c)
	if !ok {
		return
	}

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	resp, err := h.messages.Send(userID, conversationID, &req)
	if err != nil {
		common.DomainErrorResponse(c, err, "failed to send message")
		return
	}
	common.CreatedResponse(c, resp)
}

// List godoc
// @Summary Message history
// @Description Lists messages newest first, optionally filtered by content
// @Tags messages
// @Produce json
// @Param id path int true "conversation id"
// @Param page query int false "page number"
// @Param limit query int false "items per page"
// @Param search query string false "content filter"
// @Success 200 {object} common.APIResponse
// @Router /conversations/{id}/messages [get]
// @Security BearerAuth
func (h *MessageHandler) List(c *gin.Context) {
	userID, conversationID, ok := identify(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	result, err := h.messages.List(userID, conversationID, page, limit, c.Query("search"))
	if err != nil {
		common.DomainErrorResponse(c, err, "failed to list messages")
		return
	}
	common.SuccessResponse(c, result)
}

// MediaGallery godoc
// @Summary Media gallery
// @Description Lists only image, video and audio messages of a conversation
// @Tags messages
// @Produce json
// @Param id path int true "conversation id"
// @Param page query int false "page number"
// @Param limit query int false "items per page"
// @Success 200 {object} common.APIResponse
// @Router /conversations/{id}/media [get]
// @Security BearerAuth
func (h *MessageHandler) MediaGallery(c *gin.Context) {
	userID, conversationID, ok := identify(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))

	result, err := h.messages.MediaGallery(userID, conversationID, page, limit)
	if err != nil {
		common.DomainErrorResponse(c, err, "failed to list media")
		return
	}
	common.SuccessResponse(c, result)
}

// Forward godoc
// @Summary Forward messages
// @Description Copies messages into direct conversations with each recipient
// @Tags messages
// @Accept json
// @Produce json
// @Param request body domain.ForwardMessagesRequest true "forward request"
// @Success 201 {object} common.APIResponse
// @Router /messages/forward [post]
// @Security BearerAuth
func (h *MessageHandler) Forward(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var req domain.ForwardMessagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	results, err := h.messages.Forward(userID, &req)
	if err != nil {
		common.DomainErrorResponse(c, err, "failed to forward messages")
		return
	}
	common.CreatedResponse(c, gin.H{
		"forwarded_count": len(results),
		"messages":        results,
	})
}

// Delete godoc
// @Summary Delete a message
// @Description Soft deletes a message; only the sender may delete
// @Tags messages
// @Produce json
// @Param id path int true "message id"
// @Success 200 {object} common.APIResponse
// @Router /messages/{id} [delete]
// @Security BearerAuth
func (h *MessageHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	messageID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || messageID == 0 {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid message id", err)
		return
	}

	if err := h.messages.Delete(userID, messageID); err != nil {
		common.DomainErrorResponse(c, err, "failed to delete message")
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": true})
}

// Typing godoc
// @Summary Typing signal
// @Description Relays a typing indicator to the conversation; nothing is persisted
// @Tags messages
// @Accept json
// @Produce json
// @Param id path int true "conversation id"
// @Param request body domain.TypingRequest true "typing state"
// @Success 200 {object} common.APIResponse
// @Router /conversations/{id}/typing [post]
// @Security BearerAuth
func (h *MessageHandler) Typing(c *gin.Context) {
	userID, conversationID, ok := identify(c)
	if !ok {
		return
	}

	var req domain.TypingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.messages.Typing(userID, conversationID, req.IsTyping); err != nil {
		common.DomainErrorResponse(c, err, "failed to send typing signal")
		return
	}
	common.SuccessResponse(c, gin.H{"sent": true})
}

// MarkRead godoc
// @Summary Mark messages read
// @Description Marks messages from other senders as read; with no ids the whole conversation is covered
// @Tags messages
// @Accept json
// @Produce json
// @Param id path int true "conversation id"
// @Param request body domain.MarkReadRequest false "message ids"
// @Success 200 {object} common.APIResponse
// @Router /conversations/{id}/read [post]
// @Security BearerAuth
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, conversationID, ok := identify(c)
	if !ok {
		return
	}

	var req domain.MarkReadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
			return
		}
	}

	count, err := h.messages.MarkRead(userID, conversationID, req.MessageIDs)
	if err != nil {
		common.DomainErrorResponse(c, err, "failed to mark messages read")
		return
	}
	common.SuccessResponse(c, gin.H{"read_count": count})
}

// identify extracts the caller and the :id path param shared by the
// conversation-scoped message routes
func identify(c *gin.Context) (userID, conversationID uint64, ok bool) {
	userID, authed := middleware.GetUserID(c)
	if !authed {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", nil)
		return 0, 0, false
	}

	conversationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || conversationID == 0 {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid conversation id", err)
		return 0, 0, false
	}
	return userID, conversationID, true
}
