package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"bakery/internal/models"
	"bakery/internal/repository"
)

type CreateOrderItem struct {
	ProductID      uint   `json:"product_id" binding:"required"`
	Quantity       int    `json:"quantity" binding:"required,gt=0"`
	FillingDetails string `json:"filling_details"`
}

type CreateOrderRequest struct {
	Source          models.OrderSource `json:"source"`
	DeliveryAddress string             `json:"delivery_address" binding:"required"`
	DeliveryDate    time.Time          `json:"delivery_date" binding:"required"`
	Comment         string             `json:"comment"`
	Items           []CreateOrderItem  `json:"items" binding:"required,min=1,dive"`
}

type OrderPage struct {
	Orders  []models.Order `json:"orders"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, customer *models.User, req CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id uint, viewer *models.User) (*models.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) (*OrderPage, error)
	ListCustomerOrders(ctx context.Context, userID uint) ([]models.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	broadcaster Broadcaster
	notifier    Notifier
	logger      *slog.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	broadcaster Broadcaster,
	notifier Notifier,
	logger *slog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		broadcaster: broadcaster,
		notifier:    notifier,
		logger:      logger.With("component", "order_service"),
	}
}

// CreateOrder snapshots product prices into the items, stores the order as
// new and announces it to the chefs and the admin chat.
func (s *orderService) CreateOrder(ctx context.Context, customer *models.User, req CreateOrderRequest) (*models.Order, error) {
	if customer == nil {
		return nil, ErrPermissionDenied
	}
	if err := validateCreateOrder(&req); err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(req.Items))
	seen := make(map[uint]bool, len(req.Items))
	for _, item := range req.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	order := &models.Order{
		UserID:          customer.ID,
		Status:          models.StatusNew,
		Source:          req.Source,
		DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
		DeliveryDate:    req.DeliveryDate,
		Comment:         strings.TrimSpace(req.Comment),
	}

	var total float64
	for _, item := range req.Items {
		product, ok := byID[item.ProductID]
		if !ok || !product.IsAvailable {
			return nil, fmt.Errorf("%w: %d", ErrProductNotFound, item.ProductID)
		}
		orderItem := models.OrderItem{
			ProductID:      product.ID,
			Quantity:       item.Quantity,
			Price:          product.BasePrice,
			FillingDetails: item.FillingDetails,
		}
		total += orderItem.LineTotal()
		order.Items = append(order.Items, orderItem)
	}
	order.TotalPrice = math.Round(total*100) / 100

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	created, err := s.orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		s.logger.Warn("failed to reload created order", "order_id", order.ID, "error", err)
		order.User = *customer
		for i := range order.Items {
			order.Items[i].Product = byID[order.Items[i].ProductID]
		}
		created = order
	}

	s.logger.Info("order created", "order_id", created.ID, "user_id", customer.ID, "total_price", created.TotalPrice)

	s.broadcaster.BroadcastNewOrder(created.ID, created)
	s.notifier.NotifyNewOrder(created)

	return created, nil
}

func validateCreateOrder(req *CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidOrder)
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive", ErrInvalidOrder)
		}
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return fmt.Errorf("%w: delivery address is required", ErrInvalidOrder)
	}
	if req.Source == "" {
		req.Source = models.SourceWebsite
	}
	if !req.Source.IsValid() {
		return fmt.Errorf("%w: unknown source %q", ErrInvalidOrder, req.Source)
	}
	return nil
}

// GetOrder returns the order to its owner or to staff.
func (s *orderService) GetOrder(ctx context.Context, id uint, viewer *models.User) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if viewer == nil || (order.UserID != viewer.ID && !models.HasRole(viewer, models.RoleChef, models.RoleAdmin)) {
		// hide existence from other customers
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderFilter) (*OrderPage, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	filter = filter.Normalize()

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return &OrderPage{Orders: orders, Total: total, Page: filter.Page, PerPage: filter.PerPage}, nil
}

func (s *orderService) ListCustomerOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(ctx, userID)
}
