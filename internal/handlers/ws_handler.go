package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"bakery/internal/hub"
	"bakery/internal/models"
	"bakery/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gobwas/ws"
)

// WSHandler admits chef websocket sessions to the broadcast hub.
type WSHandler struct {
	hub         *hub.Hub
	authService services.AuthService
	coordinator services.StatusCoordinator
	logger      *slog.Logger
}

func NewWSHandler(h *hub.Hub, authService services.AuthService, coordinator services.StatusCoordinator, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		hub:         h,
		authService: authService,
		coordinator: coordinator,
		logger:      logger.With("component", "ws_handler"),
	}
}

// ChefOrders authenticates before upgrading. Rejected requests get a plain
// HTTP error and never join the hub.
func (h *WSHandler) ChefOrders(c *gin.Context) {
	user, err := h.authService.Authenticate(c.Request.Context(), bearerToken(c))
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to authenticate"})
		return
	}
	if !models.HasRole(user, models.RoleChef) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Chef role required"})
		return
	}

	conn, _, _, err := ws.UpgradeHTTP(c.Request, c.Writer)
	if err != nil {
		// the upgrader has already written the error response
		h.logger.Warn("websocket upgrade failed", "username", user.Username, "error", err)
		return
	}

	h.logger.Info("chef connected", "username", user.Username, "chefs", h.hub.Size(hub.GroupChefs)+1)
	h.hub.ServeChef(c.Request.Context(), conn, user, h.coordinator)
	h.logger.Info("chef disconnected", "username", user.Username)
}
