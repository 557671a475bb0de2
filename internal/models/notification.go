package models

import (
	"time"
)

// Notification records one outbound relay attempt. Rows are never replayed.
type Notification struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	OrderID   *uint            `json:"order_id" gorm:"index"`
	Kind      NotificationKind `json:"kind" gorm:"type:varchar(20);not null"`
	ChatID    string           `json:"chat_id" gorm:"not null"`
	Text      string           `json:"text" gorm:"type:text"`
	Sent      bool             `json:"sent" gorm:"default:false"`
	Error     string           `json:"error" gorm:"type:text"`
	SentAt    *time.Time       `json:"sent_at"`
	CreatedAt time.Time        `json:"created_at"`
}

type NotificationKind string

const (
	NotificationNewOrder      NotificationKind = "new_order"
	NotificationStatusChanged NotificationKind = "status_changed"
	NotificationDigest        NotificationKind = "digest"
)
