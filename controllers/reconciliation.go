package controllers

import (
	"context"
	"errors"
	"fmt"

	"github.com/chisomo-dev/eddahpos/config"
	"github.com/chisomo-dev/eddahpos/gateway"
	"github.com/chisomo-dev/eddahpos/models"
	"github.com/chisomo-dev/eddahpos/utils"
	"gorm.io/gorm"
)

// PaymentGateway is the verification client used by the reconciliation
// flow. Set once at startup; replaced by fakes in tests.
var PaymentGateway gateway.Verifier

// AppConfig is the loaded configuration shared by the controllers.
var AppConfig *config.Config

// Init wires the controllers to the loaded configuration and the live
// gateway client.
func Init(cfg *config.Config) {
	AppConfig = cfg
	PaymentGateway = gateway.NewClient(cfg.PayChanguBaseURL, cfg.PayChanguSecretKey)
}

// ReconcileResult reports the terminal (or still pending) state of a
// payment/order pair after one reconciliation attempt.
type ReconcileResult struct {
	OrderID        uint    `json:"order_id"`
	TransactionRef string  `json:"transaction_ref"`
	PaymentStatus  string  `json:"payment_status"`
	OrderStatus    string  `json:"order_status"`
	Amount         float64 `json:"amount"`
	// Applied is true only for the caller whose conditional write landed
	// first; that caller alone performs side effects such as clearing the
	// originating cart.
	Applied bool   `json:"applied"`
	Message string `json:"message"`
}

// ReconcileTransaction drives a payment/order pair to a terminal state for
// the given transaction reference. It is safe to call concurrently or
// redundantly for the same tx_ref: the conditional update on the still
// pending payment row is the single serialization point, losers re-read and
// return the winner's result without further side effects.
func ReconcileTransaction(ctx context.Context, db *gorm.DB, verifier gateway.Verifier, txRef string) (*ReconcileResult, error) {
	if txRef == "" {
		return nil, utils.ValidationErr("Missing transaction reference", nil)
	}

	var payment models.Payment
	if err := db.Where("transaction_ref = ?", txRef).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.LogError("No payment record found for transaction_ref: %s", txRef)
			return nil, utils.UnknownTransactionErr(txRef)
		}
		return nil, utils.PersistenceErr("Failed to load payment record", err)
	}

	// Idempotency guard: a terminal payment is returned as-is, with no
	// second gateway call and no writes.
	if payment.IsTerminal() {
		utils.LogInfo("Payment %s already terminal with status %s, returning stored result", txRef, payment.Status)
		return storedResult(db, &payment, "Payment already finalized"), nil
	}

	verification := verifier.Verify(ctx, txRef)
	utils.LogInfo("Gateway verification for %s: outcome=%s raw_status=%s", txRef, verification.Outcome, verification.RawStatus)

	switch verification.Outcome {
	case gateway.OutcomePending:
		// Still maturing at the gateway. Leave both rows untouched so a
		// later attempt can succeed.
		return &ReconcileResult{
			OrderID:        payment.OrderID,
			TransactionRef: txRef,
			PaymentStatus:  models.PaymentStatusPending,
			OrderStatus:    models.OrderStatusPending,
			Amount:         payment.Amount,
			Message:        verification.Reason,
		}, nil

	case gateway.OutcomeSuccess:
		return finalize(db, &payment, models.PaymentStatusSuccess, models.OrderStatusCompleted,
			fmt.Sprintf("Order #%d completed successfully", payment.OrderID))

	default:
		return finalize(db, &payment, models.PaymentStatusFailed, models.OrderStatusFailed,
			fmt.Sprintf("Payment verification failed: %s", verification.Reason))
	}
}

// finalize performs the single atomic terminal-state write. The payment row
// update is conditional on it still being pending; whichever caller lands
// that write first wins, and the loser re-reads the winner's result.
func finalize(db *gorm.DB, payment *models.Payment, paymentStatus, orderStatus, message string) (*ReconcileResult, error) {
	won := false

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).
			Where("transaction_ref = ? AND status = ?", payment.TransactionRef, models.PaymentStatusPending).
			Update("status", paymentStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Another caller finalized first. Nothing was written here.
			return nil
		}
		won = true

		// The order moves with its payment, but never out of a terminal
		// state: the condition keeps a completed order completed even if a
		// late verification disagrees.
		if err := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", payment.OrderID, models.OrderStatusPending).
			Update("status", orderStatus).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		utils.LogError("Failed to finalize payment %s: %v", payment.TransactionRef, err)
		return nil, utils.PersistenceErr("Failed to record payment result", err)
	}

	var fresh models.Payment
	if err := db.Where("transaction_ref = ?", payment.TransactionRef).First(&fresh).Error; err != nil {
		return nil, utils.PersistenceErr("Failed to re-read payment record", err)
	}

	if !won {
		utils.LogInfo("Payment %s was finalized concurrently, returning stored result", payment.TransactionRef)
		return storedResult(db, &fresh, "Payment already finalized"), nil
	}

	result := storedResult(db, &fresh, message)
	result.Applied = true
	return result, nil
}

// storedResult builds a ReconcileResult from persisted rows without
// mutating anything.
func storedResult(db *gorm.DB, payment *models.Payment, message string) *ReconcileResult {
	orderStatus := ""
	var order models.Order
	if err := db.Select("status").Where("id = ?", payment.OrderID).First(&order).Error; err == nil {
		orderStatus = order.Status
	} else {
		utils.LogError("Failed to load order %d for payment %s result: %v", payment.OrderID, payment.TransactionRef, err)
	}
	return &ReconcileResult{
		OrderID:        payment.OrderID,
		TransactionRef: payment.TransactionRef,
		PaymentStatus:  payment.Status,
		OrderStatus:    orderStatus,
		Amount:         payment.Amount,
		Message:        message,
	}
}
