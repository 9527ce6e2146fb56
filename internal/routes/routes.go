package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mingle/mingle-backend/internal/handler"
	"github.com/mingle/mingle-backend/internal/middleware"
	"github.com/mingle/mingle-backend/pkg/jwt"
	"github.com/redis/go-redis/v9"
)

// Handlers bundles the handlers wired by main
type Handlers struct {
	Conversations *handler.ConversationHandler
	Messages      *handler.MessageHandler
	Contacts      *handler.ContactHandler
	Notifications *handler.NotificationHandler
	WS            *handler.WSHandler
}

// Register mounts all API routes under /api/v1 plus the websocket endpoint
func Register(r *gin.Engine, h *Handlers, jwtManager *jwt.Manager, redisClient *redis.Client) {
	r.GET("/ws/chat", h.WS.Serve)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtManager))
	v1.Use(middleware.RateLimit(redisClient, 120, time.Minute))

	conversations := v1.Group("/conversations")
	{
		conversations.POST("", h.Conversations.Create)
		conversations.GET("", h.Conversations.List)
		conversations.GET("/categories", h.Conversations.Counts)
		conversations.GET("/:id", h.Conversations.Get)
		conversations.DELETE("/:id", h.Conversations.Delete)
		conversations.GET("/:id/settings", h.Conversations.GetSettings)
		conversations.PATCH("/:id/settings", h.Conversations.UpdateSettings)
		conversations.PATCH("/:id/notification", h.Conversations.UpdateNotification)
		conversations.PATCH("/:id/gift-sounds", h.Conversations.UpdateGiftSounds)
		conversations.PATCH("/:id/display-name", h.Conversations.UpdateDisplayName)
		conversations.POST("/:id/report", h.Conversations.Report)

		conversations.POST("/:id/messages", h.Messages.Send)
		conversations.GET("/:id/messages", h.Messages.List)
		conversations.GET("/:id/media", h.Messages.MediaGallery)
		conversations.POST("/:id/typing", h.Messages.Typing)
		conversations.POST("/:id/read", h.Messages.MarkRead)
	}

	messages := v1.Group("/messages")
	{
		messages.POST("/forward", h.Messages.Forward)
		messages.DELETE("/:id", h.Messages.Delete)
	}

	contacts := v1.Group("/contacts")
	{
		contacts.GET("/suggestions", h.Contacts.Suggestions)
		contacts.GET("/search", h.Contacts.Search)
	}

	v1.GET("/notifications/unread-count", h.Notifications.UnreadSummary)
}
