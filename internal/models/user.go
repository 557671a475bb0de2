package models

import (
	"time"
)

type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"unique;not null"`
	Email          string    `json:"email" gorm:"unique;not null"`
	PasswordHash   string    `json:"-" gorm:"not null"`
	Phone          string    `json:"phone"`
	Role           UserRole  `json:"role" gorm:"type:varchar(20);default:'customer'"`
	TelegramChatID string    `json:"telegram_chat_id"` // opt-in destination for status notifications
	BonusPoints    int       `json:"bonus_points" gorm:"default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleChef     UserRole = "chef"
	RoleAdmin    UserRole = "admin"
)

// HasRole is the single capability check for staff-only operations.
// A nil user has no roles.
func HasRole(user *User, roles ...UserRole) bool {
	if user == nil {
		return false
	}
	for _, role := range roles {
		if user.Role == role {
			return true
		}
	}
	return false
}
