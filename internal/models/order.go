package models

import (
	"time"
)

type Order struct {
	ID              uint        `json:"id" gorm:"primaryKey"`
	UserID          uint        `json:"user_id" gorm:"not null;index"`
	User            User        `json:"user" gorm:"foreignKey:UserID"`
	Status          OrderStatus `json:"status" gorm:"type:varchar(20);default:'new';index"`
	Source          OrderSource `json:"source" gorm:"type:varchar(20);default:'website'"`
	TotalPrice      float64     `json:"total_price" gorm:"type:decimal(10,2);not null"`
	DeliveryAddress string      `json:"delivery_address" gorm:"type:text"`
	DeliveryDate    time.Time   `json:"delivery_date"`
	Comment         string      `json:"comment" gorm:"type:text"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderStatus is the closed set of lifecycle states an order can occupy.
// Any status may follow any other.
type OrderStatus string

const (
	StatusNew        OrderStatus = "new"
	StatusProcessing OrderStatus = "processing"
	StatusBaking     OrderStatus = "baking"
	StatusReady      OrderStatus = "ready"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var orderStatuses = []OrderStatus{
	StatusNew,
	StatusProcessing,
	StatusBaking,
	StatusReady,
	StatusDelivered,
	StatusCancelled,
}

// OrderStatuses returns the declared statuses in lifecycle order.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(orderStatuses))
	copy(out, orderStatuses)
	return out
}

func (s OrderStatus) IsValid() bool {
	for _, status := range orderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type OrderSource string

const (
	SourceWebsite  OrderSource = "website"
	SourceTelegram OrderSource = "telegram"
	SourcePhone    OrderSource = "phone"
)

func (s OrderSource) IsValid() bool {
	switch s {
	case SourceWebsite, SourceTelegram, SourcePhone:
		return true
	}
	return false
}

// StatusChange describes a persisted status transition.
type StatusChange struct {
	OrderID   uint        `json:"order_id"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
	UpdatedBy string      `json:"updated_by"`
}
