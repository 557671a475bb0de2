package handlers

import (
	"log/slog"
	"net/http"

	"bakery/internal/hub"
	"bakery/internal/models"
	"bakery/internal/services"

	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	AuthService  services.AuthService
	OrderService services.OrderService
	Coordinator  services.StatusCoordinator
	Hub          *hub.Hub
	Logger       *slog.Logger
}

// NewRouter wires every HTTP and websocket route of the backend.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(deps.Logger))

	authHandler := NewAuthHandler(deps.AuthService)
	orderHandler := NewOrderHandler(deps.OrderService, deps.Coordinator, deps.Logger)
	wsHandler := NewWSHandler(deps.Hub, deps.AuthService, deps.Coordinator, deps.Logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "chefs": deps.Hub.Size(hub.GroupChefs)})
	})

	// Chef websocket, authenticated before the upgrade
	router.GET("/ws/chef/orders", wsHandler.ChefOrders)

	api := router.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		authed := api.Group("")
		authed.Use(AuthMiddleware(deps.AuthService))
		{
			authed.POST("/auth/logout", authHandler.Logout)
			authed.PUT("/users/me/telegram", authHandler.SetTelegramChatID)

			authed.POST("/orders", orderHandler.CreateOrder)
			authed.GET("/orders/my", orderHandler.ListMyOrders)
			authed.GET("/orders/:id", orderHandler.GetOrder)

			staff := authed.Group("")
			staff.Use(RequireRole(models.RoleChef, models.RoleAdmin))
			{
				staff.GET("/orders", orderHandler.ListOrders)
				staff.PUT("/orders/:id/status", orderHandler.UpdateStatus)
			}
		}
	}

	return router
}
