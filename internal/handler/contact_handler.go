package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mingle/mingle-backend/internal/common"
	"github.com/mingle/mingle-backend/internal/middleware"
	"github.com/mingle/mingle-backend/internal/service"
)

// ContactHandler contact suggestion and search endpoints
type ContactHandler struct {
	contacts service.ContactService
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contacts service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// Suggestions godoc
// @Summary Contact suggestions
// @Description Blends recent conversation partners with recommended users
// @Tags contacts
// @Produce json
// @Param limit query int false "number of suggestions"
// @Param type query string false "message or group"
// @Success 200 {object} common.APIResponse
// @Router /contacts/suggestions [get]
// @Security BearerAuth
func (h *ContactHandler) Suggestions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	// Both suggestion flavors share the candidate pool; the type is kept
	// for client compatibility and validated only
	switch c.DefaultQuery("type", "message") {
	case "message", "group":
	default:
		common.ErrorResponse(c, http.StatusBadRequest, "type must be message or group", nil)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	suggestions, err := h.contacts.Suggestions(userID, limit)
	if err != nil {
		common.DomainErrorResponse(c, err, "failed to build suggestions")
		return
	}
	common.SuccessResponse(c, suggestions)
}

// Search godoc
// @Summary Search users
// @Description Finds users by nickname for starting new conversations; the suggestion list is always included
// @Tags contacts
// @Produce json
// @Param q query string true "nickname query"
// @Param page query int false "page number"
// @Param limit query int false "items per page"
// @Param suggestion_limit query int false "number of suggestions"
// @Success 200 {object} common.APIResponse
// @Router /contacts/search [get]
// @Security BearerAuth
func (h *ContactHandler) Search(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		common.ErrorResponse(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	query := c.Query("q")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	suggestionLimit, _ := strconv.Atoi(c.DefaultQuery("suggestion_limit", "5"))

	result, err := h.contacts.Search(c.Request.Context(), userID, query, page, limit, suggestionLimit)
	if err != nil {
		common.DomainErrorResponse(c, err, "failed to search users")
		return
	}
	common.SuccessResponse(c, result)
}
