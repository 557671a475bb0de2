package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bakery/internal/models"
	"bakery/internal/repository"
)

// Broadcaster fans order events out to connected staff sessions.
type Broadcaster interface {
	BroadcastStatusUpdated(orderID uint, status models.OrderStatus, updatedBy string) int
	BroadcastNewOrder(orderID uint, orderData any) int
}

// StatusCoordinator is the only component allowed to change an order status.
// HTTP and websocket entry points both go through it.
type StatusCoordinator interface {
	UpdateStatus(ctx context.Context, orderID uint, status string, actor *models.User) (*models.StatusChange, error)
}

type statusCoordinator struct {
	orderRepo   repository.OrderRepository
	broadcaster Broadcaster
	notifier    Notifier
	logger      *slog.Logger
}

func NewStatusCoordinator(orderRepo repository.OrderRepository, broadcaster Broadcaster, notifier Notifier, logger *slog.Logger) StatusCoordinator {
	return &statusCoordinator{
		orderRepo:   orderRepo,
		broadcaster: broadcaster,
		notifier:    notifier,
		logger:      logger.With("component", "status_coordinator"),
	}
}

// UpdateStatus validates and persists the new status, then broadcasts it and
// queues the customer notification. Any enumerated status is accepted from
// any previous one. Side effects run only after the change is committed and
// cannot undo it. Once the caller is authorized, cancellation of ctx no
// longer stops the update or its side effects.
func (c *statusCoordinator) UpdateStatus(ctx context.Context, orderID uint, status string, actor *models.User) (*models.StatusChange, error) {
	if !models.HasRole(actor, models.RoleChef, models.RoleAdmin) {
		return nil, ErrPermissionDenied
	}

	ctx = context.WithoutCancel(ctx)

	current, err := c.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order %d: %w", orderID, err)
	}

	newStatus := models.OrderStatus(status)
	if !newStatus.IsValid() {
		return nil, ErrInvalidStatus
	}

	order, oldStatus, err := c.orderRepo.UpdateStatus(ctx, orderID, newStatus)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update status of order %d: %w", orderID, err)
	}

	chatID := current.User.TelegramChatID
	if order != nil {
		chatID = order.User.TelegramChatID
	}

	c.logger.Info("order status changed",
		"order_id", orderID,
		"old_status", oldStatus,
		"new_status", newStatus,
		"updated_by", actor.Username,
	)

	c.broadcaster.BroadcastStatusUpdated(orderID, newStatus, actor.Username)
	c.notifier.NotifyStatusChange(orderID, newStatus, chatID)

	return &models.StatusChange{
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		UpdatedBy: actor.Username,
	}, nil
}
