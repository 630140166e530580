package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a staff account. Cashiers are the only role that can
// operate the till; admins manage the catalog.
type User struct {
	gorm.Model
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role" gorm:"default:'cashier'"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	LastLogin time.Time `json:"last_login"`
}

// Product is a catalog entry looked up by barcode at the till.
type Product struct {
	gorm.Model
	Name     string  `json:"name"`
	Barcode  string  `json:"barcode" gorm:"uniqueIndex;not null"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Stock    int     `json:"stock"`
	IsActive bool    `json:"is_active" gorm:"default:true"`
}

// ActivityLog records cashier actions that operators audit later
// (payment confirmations, collections).
type ActivityLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `json:"user_id"`
	Action    string    `json:"action"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// PasswordReset holds a single-use reset token for a staff account.
type PasswordReset struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `json:"user_id" gorm:"not null"`
	Token     string     `json:"-" gorm:"not null"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
