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

// ConversationHandler conversation lifecycle endpoints
type ConversationHandler struct {
	conversations service.ConversationService
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(conversations service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// Create godoc
// @Summary Open a conversation
// @Description Opens a direct conversation with another user, returning the existing one when the pair already has a conversation
// @Tags conversations
// @Accept json
// @Produce json
// @Param request body domain.CreateConversationRequest true "conversation request"
// @Success 200 {object} common.APIResponse
// @Success 201 {object} common.APIResponse
// @Router /conversations [post]
// @Security BearerAuth
func (h *ConversationHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var req domain.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	resp, created, err := h.conversations.Create(userID, &req)
	if err != nil {
		common.DomainErrorResponse(c, err, "failed to create conversation")
		return
	}
	if created {
		common.CreatedResponse(c, resp)
		return
	}
	common.SuccessResponse(c, resp)
}

// List godoc
// @Summary List conversations
// @Description Lists the caller's active conversations, newest activity first
// @Tags conversations
// @Produce json
// @Param page query int false "page number"
// @Param limit query int false "items per page"
// @Param search query string false "filter by peer nickname or group name"
// @Param kind query string false "direct or group"
// @Success 200 {object} common.APIResponse
// @Router /conversations [get]
// @Security BearerAuth
func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	search := c.Query("search")

	var kind domain.ConversationKind
	switch c.Query("kind") {
	case "direct":
		kind = domain.KindDirect
	case "group":
		kind = domain.KindGroup
	case "":
	default:
		common.ErrorResponse(c, http.StatusBadRequest, "kind must be direct or group", nil)
		return
	}

	result, err := h.conversations.List(userID, page, limit, search, kind)
	if err != nil {
		common.DomainErrorResponse(c, err, "failed to list conversations")
		return
	}
	common.SuccessResponse(c, result)
}

// Get godoc
// @Summary Get a conversation
// @Description Returns one conversation annotated for the caller
// @Tags conversations
// @Produce json
// @Param id path int true "conversation id"
// @Success 200 {object} common.APIResponse
// @Router /conversations/{id} [get]
// @Security BearerAuth
func (h *ConversationHandler) Get(c *gin.Context) {
	userID, conversationID, ok := identify(c)
	if !ok {
		return
	}

	resp, err := h.conversations.Get(userID, conversationID)
	if err != nil {
		common.DomainErrorResponse(c, err, "failed to load conversation")
		return
	}
	common.SuccessResponse(c, resp)
}

// Counts godoc
// @Summary Conversation counts by kind
// @Tags conversations
// @Produce json
// @Success 200 {object} common.APIResponse
// @Router /conversations/categories [get]
// @Security BearerAuth
func (h *ConversationHandler) Counts(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	counts, err := h.conversations.Counts(userID)
	if err != nil {
		common.DomainErrorResponse(c, err, "failed to count conversations")
		return
	}
	common.SuccessResponse(c, counts)
}

// GetSettings godoc
// @Summary Chat settings
// @Description Returns the settings page data for one conversation
// @Tags conversations
// @Produce json
// @Param id path int true "conversation id"
// @Success 200 {object} common.APIResponse
// @Router /conversations/{id}/settings [get]
// @Security BearerAuth
func (h *ConversationHandler) GetSettings(c *gin.Context) {
	userID, conversationID, ok := identify(c)
	if !ok {
		return
	}

	settings, err := h.conversations.GetSettings(userID, conversationID)
	if err != nil {
		common.DomainErrorResponse(c, err, "failed to load chat settings")
		return
	}
	common.SuccessResponse(c, settings)
}

// UpdateSettings godoc
// @Summary Update chat settings
// @Description Updates mute, gift sound and display name for the caller only
// @Tags conversations
// @Accept json
// @Produce json
// @Param id path int true "conversation id"
// @Param request body domain.UpdateChatSettingsRequest true "settings patch"
// @Success 200 {object} common.APIResponse
// @Router /conversations/{id}/settings [patch]
// @Security BearerAuth
func (h *ConversationHandler) UpdateSettings(c *gin.Context) {
	userID, conversationID, ok := identify(c)
	if !ok {
		return
	}

	var req domain.UpdateChatSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.conversations.UpdateSettings(userID, conversationID, &req); err != nil {
		common.DomainErrorResponse(c, err, "failed to update chat settings")
		return
	}
	common.SuccessResponse(c, gin.H{"updated": true})
}

type notificationSettingRequest struct {
	IsMuted bool `json:"is_muted"`
}

// UpdateNotification godoc
// @Summary Mute or unmute a conversation
// @Tags conversations
// @Accept json
// @Produce json
// @Param id path int true "conversation id"
// @Param request body notificationSettingRequest true "mute state"
// @Success 200 {object} common.APIResponse
// @Router /conversations/{id}/notification [patch]
// @Security BearerAuth
func (h *ConversationHandler) UpdateNotification(c *gin.Context) {
	userID, conversationID, ok := identify(c)
	if !ok {
		return
	}

	var req notificationSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	err := h.conversations.UpdateSettings(userID, conversationID, &domain.UpdateChatSettingsRequest{
		IsMuted: &req.IsMuted,
	})
	if err != nil {
		common.DomainErrorResponse(c, err, "failed to update notification setting")
		return
	}
	common.SuccessResponse(c, gin.H{"is_muted": req.IsMuted})
}

type giftSoundSettingRequest struct {
	Enabled bool `json:"enabled"`
}

// UpdateGiftSounds godoc
// @Summary Toggle gift sounds
// @Tags conversations
// @Accept json
// @Produce json
// @Param id path int true "conversation id"
// @Param request body giftSoundSettingRequest true "gift sound state"
// @Success 200 {object} common.APIResponse
// @Router /conversations/{id}/gift-sounds [patch]
// @Security BearerAuth
func (h *ConversationHandler) UpdateGiftSounds(c *gin.Context) {
	userID, conversationID, ok := identify(c)
	if !ok {
		return
	}

	var req giftSoundSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	err := h.conversations.UpdateSettings(userID, conversationID, &domain.UpdateChatSettingsRequest{
		GiftSoundsEnabled: &req.Enabled,
	})
	if err != nil {
		common.DomainErrorResponse(c, err, "failed to update gift sound setting")
		return
	}
	common.SuccessResponse(c, gin.H{"gift_sounds_enabled": req.Enabled})
}

type displayNameRequest struct {
	DisplayName string `json:"display_name"`
}

// UpdateDisplayName godoc
// @Summary Set a custom display name
// @Description Sets the caller's private display name for the conversation
// @Tags conversations
// @Accept json
// @Produce json
// @Param id path int true "conversation id"
// @Param request body displayNameRequest true "display name"
// @Success 200 {object} common.APIResponse
// @Router /conversations/{id}/display-name [patch]
// @Security BearerAuth
func (h *ConversationHandler) UpdateDisplayName(c *gin.Context) {
	userID, conversationID, ok := identify(c)
	if !ok {
		return
	}

	var req displayNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	err := h.conversations.UpdateSettings(userID, conversationID, &domain.UpdateChatSettingsRequest{
		DisplayName: &req.DisplayName,
	})
	if err != nil {
		common.DomainErrorResponse(c, err, "failed to update display name")
		return
	}
	common.SuccessResponse(c, gin.H{"display_name": req.DisplayName})
}

// Delete godoc
// @Summary Delete a conversation
// @Description Removes the conversation from the caller's side; the other participant keeps their history
// @Tags conversations
// @Produce json
// @Param id path int true "conversation id"
// @Success 200 {object} common.APIResponse
// @Router /conversations/{id} [delete]
// @Security BearerAuth
func (h *ConversationHandler) Delete(c *gin.Context) {
	userID, conversationID, ok := identify(c)
	if !ok {
		return
	}

	if err := h.conversations.Delete(userID, conversationID); err != nil {
		common.DomainErrorResponse(c, err, "failed to delete conversation")
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": true})
}

type reportRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Report godoc
// @Summary Report a conversation
// @Tags conversations
// @Accept json
// @Produce json
// @Param id path int true "conversation id"
// @Param request body reportRequest true "report reason"
// @Success 200 {object} common.APIResponse
// @Router /conversations/{id}/report [post]
// @Security BearerAuth
func (h *ConversationHandler) Report(c *gin.Context) {
	userID, conversationID, ok := identify(c)
	if !ok {
		return
	}

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.conversations.Report(userID, conversationID, req.Reason); err != nil {
		common.DomainErrorResponse(c, err, "failed to report conversation")
		return
	}
	common.SuccessResponse(c, gin.H{"reported": true})
}
