package models

import (
	"time"
)

// Payment status constants. Success and Failed are terminal; at most one
// payment row may ever transition to success for a given transaction_ref.
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// Payment correlates an order with an external gateway transaction. The
// transaction_ref is the idempotency key for the whole reconciliation
// process.
type Payment struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	TransactionRef string    `json:"transaction_ref" gorm:"uniqueIndex;not null"`
	OrderID        uint      `json:"order_id"`
	Order          Order     `json:"-" gorm:"foreignKey:OrderID"`
	Amount         float64   `json:"amount"`
	Status         string    `json:"status" gorm:"default:'pending'"`
	PaymentMethod  string    `json:"payment_method"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsTerminal reports whether the payment has reached a final state.
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusSuccess || p.Status == PaymentStatusFailed
}
