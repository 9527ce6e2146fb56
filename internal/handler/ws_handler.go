package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mingle/mingle-backend/internal/common"
	"github.com/mingle/mingle-backend/internal/middleware"
	"github.com/mingle/mingle-backend/internal/ws"
	"github.com/mingle/mingle-backend/pkg/jwt"
	"github.com/mingle/mingle-backend/pkg/logger"
)

// WSHandler upgrades authenticated requests to websocket connections
type WSHandler struct {
	hub            *ws.Hub
	jwtManager     *jwt.Manager
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *ws.Hub, jwtManager *jwt.Manager, allowedOrigins []string) *WSHandler {
	h := &WSHandler{
		hub:            hub,
		jwtManager:     jwtManager,
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *WSHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// extractToken pulls the access token from the request. The auth query
// field wins over the token query param, which wins over the
// Authorization header.
func extractToken(c *gin.Context) string {
	if token := c.Query("auth"); token != "" {
		return token
	}
	if token := c.Query("token"); token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if after := strings.TrimPrefix(header, "Bearer "); after != header {
		return after
	}
	return ""
}

// Serve godoc
// @Summary Websocket endpoint
// @Description Upgrades to a websocket connection for live chat events
// @Tags websocket
// @Param auth query string false "access token"
// @Router /ws [get]
func (h *WSHandler) Serve(c *gin.Context) {
	token := extractToken(c)
	if token == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "access token required", nil)
		return
	}

	// Authenticate before upgrading so bad credentials get a plain 401
	claims, err := h.jwtManager.Verify(token)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token", err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.GetLogger().Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn, claims.UserID, claims.Nickname)
	client.Register()

	middleware.WebsocketConnected(1)
	go client.WritePump()
	go func() {
		defer middleware.WebsocketConnected(-1)
		client.ReadPump()
	}()
}
