package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bakery/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, models.OrderStatus, error)
	CountByStatusSince(ctx context.Context, since time.Time) (map[models.OrderStatus]int64, error)
}

// OrderFilter narrows and pages a staff order listing.
type OrderFilter struct {
	Status  models.OrderStatus
	Sort    string
	Page    int
	PerPage int
}

var orderSortColumns = map[string]string{
	"created_at":   "created_at ASC",
	"-created_at":  "created_at DESC",
	"total_price":  "total_price ASC",
	"-total_price": "total_price DESC",
}

// Normalize applies listing defaults and clamps paging bounds.
func (f OrderFilter) Normalize() OrderFilter {
	if _, ok := orderSortColumns[f.Sort]; !ok {
		f.Sort = "-created_at"
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 20
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}
	return f
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	// Items are inserted with the order in the same transaction.
	return r.db.WithContext(ctx).Omit("User").Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.withDetails(r.db.WithContext(ctx)).First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByUserID(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	filter = filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	err := r.withDetails(query).
		Order(orderSortColumns[filter.Sort]).
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus overwrites the status under a row lock and returns the
// updated order together with the status it replaced. The order and its
// customer are read inside the same transaction, so a committed change is
// never reported as a failure.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, models.OrderStatus, error) {
	var (
		order models.Order
		old   models.OrderStatus
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("User").
			First(&order, id).Error
		if err != nil {
			return err
		}
		old = order.Status

		now := time.Now()
		err = tx.Model(&models.Order{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":     status,
				"updated_at": now,
			}).Error
		if err != nil {
			return err
		}
		order.Status = status
		order.UpdatedAt = now
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	return &order, old, nil
}

func (r *orderRepository) CountByStatusSince(ctx context.Context, since time.Time) (map[models.OrderStatus]int64, error) {
	var rows []struct {
		Status models.OrderStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *orderRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Items").Preload("Items.Product")
}
