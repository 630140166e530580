package models

import (
	"time"
)

// Order status constants. Completed and Failed are terminal: once an order
// reaches either, no further status transition is permitted.
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusFailed    = "failed"
)

// Collected flag values. An order may only become collected once it is
// completed.
const (
	OrderCollectedNo  = "no"
	OrderCollectedYes = "yes"
)

// Payment method constants accepted at the till.
const (
	PaymentMethodCash   = "cash"
	PaymentMethodMobile = "mobile_transfer"
)

type Order struct {
	ID            uint        `gorm:"primaryKey" json:"order_id"`
	UserID        uint        `json:"user_id"`
	User          User        `json:"-" gorm:"foreignKey:UserID"`
	TotalAmount   float64     `json:"total_amount"`
	PaymentMethod string      `json:"payment_method"`
	Status        string      `json:"status" gorm:"default:'pending'"`
	Collected     string      `json:"collected" gorm:"default:'no'"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	OrderItems    []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
}

// OrderItem is an immutable record of one cart line at checkout time. The
// order total is frozen on the Order row; items are a record, not a live
// total source.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `json:"order_id"`
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// IsTerminal reports whether the order has reached a final financial state.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusFailed
}
