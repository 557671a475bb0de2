package models

import "time"

// Product is the minimal catalog record orders reference for price snapshots.
type Product struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	BasePrice   float64   `json:"base_price" gorm:"type:decimal(10,2);not null"`
	IsAvailable bool      `json:"is_available" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
