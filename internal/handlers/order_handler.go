package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"bakery/internal/models"
	"bakery/internal/repository"
	"bakery/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService services.OrderService
	coordinator  services.StatusCoordinator
	logger       *slog.Logger
}

func NewOrderHandler(orderService services.OrderService, coordinator services.StatusCoordinator, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		coordinator:  coordinator,
		logger:       logger.With("component", "order_handler"),
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func parseOrderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order ID"})
		return 0, false
	}
	return uint(id), true
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), currentUser(c), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidOrder), errors.Is(err, services.ErrProductNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		}
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	orders, err := h.orderService.ListCustomerOrders(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	perPage, _ := strconv.Atoi(c.Query("per_page"))

	result, err := h.orderService.ListOrders(c.Request.Context(), repository.OrderFilter{
		Status:  models.OrderStatus(c.Query("status")),
		Sort:    c.Query("sort"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id, currentUser(c))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get order"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateStatus is the HTTP entry point of the status coordinator.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request format"})
		return
	}

	change, err := h.coordinator.UpdateStatus(c.Request.Context(), id, req.Status, currentUser(c))
	if err != nil {
		code := statusCodeFor(err)
		if code == http.StatusInternalServerError {
			h.logger.Error("status update failed", "order_id", id, "error", err)
		}
		c.JSON(code, gin.H{"success": false, "message": services.ClientMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Order #%d status changed from %q to %q", change.OrderID, change.OldStatus, change.NewStatus),
	})
}

func statusCodeFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
