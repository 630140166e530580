package controllers

import (
	"errors"
	"fmt"

	"github.com/chisomo-dev/eddahpos/config"
	"github.com/chisomo-dev/eddahpos/models"
	"github.com/chisomo-dev/eddahpos/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MarkOrderCollected flips collected on a completed order with one
// conditional write. Of two concurrent collection requests exactly one
// succeeds; the other observes zero affected rows and fails with
// NotCollectable.
func MarkOrderCollected(db *gorm.DB, orderID uint) error {
	res := db.Model(&models.Order{}).
		Where("id = ? AND status = ? AND collected = ?", orderID, models.OrderStatusCompleted, models.OrderCollectedNo).
		Update("collected", models.OrderCollectedYes)
	if res.Error != nil {
		return utils.PersistenceErr("Failed to mark order as collected", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.NotCollectableErr(orderID)
	}
	return nil
}

// MarkCollected is the AJAX endpoint for the collection workflow. Returns
// refreshed stats so the UI can update its badges in place.
func MarkCollected(c *gin.Context) {
	utils.LogInfo("MarkCollected called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		OrderID uint `json:"order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid order id", err.Error())
		return
	}

	if err := MarkOrderCollected(config.DB, req.OrderID); err != nil {
		utils.RespondWithError(c, err)
		return
	}

	RecordActivity(user.ID, fmt.Sprintf("Order #%d marked as collected", req.OrderID), "collection_confirmation")

	stats, err := DashboardStats(config.DB)
	if err != nil {
		utils.LogError("Failed to refresh stats after collection: %v", err)
	}
	utils.Success(c, fmt.Sprintf("Order #%d marked as collected", req.OrderID), gin.H{
		"order_id": req.OrderID,
		"stats":    stats,
	})
}

// ConfirmOrder is the cashier's synchronous confirm action on a pending
// order. Mobile orders are reconciled against the gateway through their
// payment record, so this path races the webhook safely; cash orders are
// finalized directly.
func ConfirmOrder(c *gin.Context) {
	utils.LogInfo("ConfirmOrder called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		OrderID uint `json:"order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid order id", err.Error())
		return
	}

	var order models.Order
	if err := config.DB.Where("id = ?", req.OrderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, fmt.Sprintf("Order #%d not found", req.OrderID))
			return
		}
		utils.InternalServerError(c, "Failed to load order", err.Error())
		return
	}

	if order.IsTerminal() {
		utils.RespondWithError(c, utils.AlreadyFinalizedErr(order.ID))
		return
	}

	var payment models.Payment
	err := config.DB.Where("order_id = ?", order.ID).First(&payment).Error
	switch {
	case err == nil:
		settleMobilePayment(c, user, payment.TransactionRef)
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No gateway transaction to consult; treat as a cash-style manual
		// confirmation.
		if err := ConfirmCashOrder(config.DB, order.ID); err != nil {
			utils.RespondWithError(c, err)
			return
		}
		RecordActivity(user.ID, fmt.Sprintf("Confirmed payment for order #%d", order.ID), "payment_confirmation")
		utils.Success(c, fmt.Sprintf("Payment confirmed for order #%d", order.ID), gin.H{
			"order_id": order.ID,
		})
	default:
		utils.InternalServerError(c, "Failed to load payment record", err.Error())
	}
}
