package controllers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chisomo-dev/eddahpos/config"
	"github.com/chisomo-dev/eddahpos/models"
	"github.com/chisomo-dev/eddahpos/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateOrder turns a non-empty cart into a persisted order plus its items
// in one transaction. The total is computed from the cart at call time and
// frozen onto the order; a partially written order (order without items) is
// never observable.
func CreateOrder(db *gorm.DB, userID uint, cart *models.Cart, paymentMethod string) (uint, error) {
	if cart == nil || cart.IsEmpty() {
		return 0, utils.ValidationErr("Cart is empty", utils.ErrEmptyCart)
	}
	if paymentMethod == "" {
		return 0, utils.ValidationErr("Please select a payment method", utils.ErrMissingMethod)
	}

	order := models.Order{
		UserID:        userID,
		TotalAmount:   cart.Total(),
		PaymentMethod: paymentMethod,
		Status:        models.OrderStatusPending,
		Collected:     models.OrderCollectedNo,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		items := make([]models.OrderItem, 0, cart.Count())
		for _, line := range cart.Lines {
			items = append(items, models.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Name:      line.Name,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		utils.LogError("Failed to create order for user ID %d: %v", userID, err)
		return 0, utils.PersistenceErr("Failed to create order", err)
	}

	utils.LogInfo("Created order ID %d for user ID %d, total %.2f, method %s", order.ID, userID, order.TotalAmount, paymentMethod)
	return order.ID, nil
}

// ConfirmCashOrder finalizes a cash order with a conditional pending to
// completed update. An order that is no longer pending fails with
// AlreadyFinalized and is left untouched.
func ConfirmCashOrder(db *gorm.DB, orderID uint) error {
	res := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
		Update("status", models.OrderStatusCompleted)
	if res.Error != nil {
		return utils.PersistenceErr("Failed to confirm cash payment", res.Error)
	}
	if res.RowsAffected == 0 {
		var order models.Order
		if err := db.Select("id").Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewAppError(404, utils.KindValidation, fmt.Sprintf("Order #%d not found", orderID), nil)
			}
			return utils.PersistenceErr("Failed to confirm cash payment", err)
		}
		return utils.AlreadyFinalizedErr(orderID)
	}
	return nil
}

// InitiateMobilePayment generates a fresh transaction reference and creates
// the pending payment row bound to the order. The order status is not
// touched; reconciliation drives it later.
func InitiateMobilePayment(db *gorm.DB, orderID uint, amount float64, email string) (string, error) {
	txRef := "AEPOS-" + uuid.New().String()

	payment := models.Payment{
		TransactionRef: txRef,
		OrderID:        orderID,
		Amount:         amount,
		Status:         models.PaymentStatusPending,
		PaymentMethod:  models.PaymentMethodMobile,
		Email:          email,
	}
	if err := db.Create(&payment).Error; err != nil {
		utils.LogError("Failed to create payment record for order ID %d: %v", orderID, err)
		return "", utils.PersistenceErr("Failed to initiate mobile payment", err)
	}

	utils.LogInfo("Initiated mobile payment for order ID %d with tx_ref %s", orderID, txRef)
	return txRef, nil
}

// normalizePaymentMethod folds UI spellings ("Mobile Transfer") onto the
// stored constants.
func normalizePaymentMethod(method string) string {
	m := strings.ToLower(strings.TrimSpace(method))
	m = strings.ReplaceAll(m, " ", "_")
	return m
}

// ProcessPayment is the checkout entry point for the cashier UI.
//
// cash                     -> create order, confirm immediately, clear cart
// mobile without tx_ref    -> create order + pending payment, return handoff
// mobile with tx_ref       -> reconcile against the gateway
func ProcessPayment(c *gin.Context) {
	utils.LogInfo("ProcessPayment called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		PaymentMethod string `json:"payment_method"`
		TxRef         string `json:"tx_ref"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	method := normalizePaymentMethod(req.PaymentMethod)
	if method == "" {
		utils.BadRequest(c, "Please select a payment method", nil)
		return
	}

	switch method {
	case models.PaymentMethodCash:
		processCashPayment(c, user)
	case models.PaymentMethodMobile:
		if req.TxRef == "" {
			initiateMobileCheckout(c, user)
		} else {
			settleMobilePayment(c, user, req.TxRef)
		}
	default:
		utils.BadRequest(c, "Invalid payment method. Must be one of: cash, mobile_transfer", nil)
	}
}

func processCashPayment(c *gin.Context, user models.User) {
	cart := utils.GetCart(c)
	if cart.IsEmpty() {
		utils.BadRequest(c, "Cart is empty", nil)
		return
	}
	total := cart.Total()

	orderID, err := CreateOrder(config.DB, user.ID, cart, models.PaymentMethodCash)
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	if err := ConfirmCashOrder(config.DB, orderID); err != nil {
		utils.RespondWithError(c, err)
		return
	}

	if err := utils.ClearCheckout(c); err != nil {
		utils.LogError("Failed to clear cart after cash order %d: %v", orderID, err)
	}
	RecordActivity(user.ID, fmt.Sprintf("Confirmed cash payment for order #%d", orderID), "payment_confirmation")

	utils.LogInfo("Cash order %d completed for user ID %d", orderID, user.ID)
	utils.Success(c, fmt.Sprintf("Order #%d completed successfully. Total: MWK%.2f", orderID, total), gin.H{
		"order_id": orderID,
		"total":    fmt.Sprintf("%.2f", total),
		"redirect": "completed_orders",
	})
}

func initiateMobileCheckout(c *gin.Context, user models.User) {
	cart := utils.GetCart(c)
	if cart.IsEmpty() {
		utils.BadRequest(c, "Cart is empty", nil)
		return
	}
	total := cart.Total()

	orderID, err := CreateOrder(config.DB, user.ID, cart, models.PaymentMethodMobile)
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	email := utils.SessionUserEmail(c)
	if email == "" {
		email = user.Email
	}
	txRef, err := InitiateMobilePayment(config.DB, orderID, total, email)
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	if err := utils.BindTxRef(c, txRef); err != nil {
		utils.LogError("Failed to bind tx_ref %s to session: %v", txRef, err)
	}

	utils.Pending(c, fmt.Sprintf("Initiating mobile payment for Order #%d", orderID), gin.H{
		"order_id": orderID,
		"total":    fmt.Sprintf("%.2f", total),
		"tx_ref":   txRef,
		"payment": gin.H{
			"public_key":   AppConfig.PayChanguPublicKey,
			"tx_ref":       txRef,
			"amount":       total,
			"currency":     "MWK",
			"callback_url": AppConfig.CallbackURL,
			"return_url":   AppConfig.ReturnURL,
			"email":        email,
			"first_name":   user.FirstName,
			"last_name":    user.LastName,
			"title":        "Auntie Eddah POS Payment",
			"description":  fmt.Sprintf("Payment for order #%d at Auntie Eddah POS", orderID),
		},
	})
}

func settleMobilePayment(c *gin.Context, user models.User, txRef string) {
	result, err := ReconcileTransaction(c.Request.Context(), config.DB, PaymentGateway, txRef)
	if err != nil {
		utils.RespondWithError(c, err)
		return
	}

	switch result.PaymentStatus {
	case models.PaymentStatusSuccess:
		// Only the caller whose write landed performs side effects, and the
		// cart is cleared only when this session is the one that initiated
		// the checkout. Confirming an order from the pending list must not
		// wipe the cart currently being built at this till.
		if result.Applied {
			if utils.PendingTxRef(c) == result.TransactionRef {
				if err := utils.ClearCheckout(c); err != nil {
					utils.LogError("Failed to clear cart after order %d: %v", result.OrderID, err)
				}
			}
			RecordActivity(user.ID, fmt.Sprintf("Confirmed mobile payment for order #%d", result.OrderID), "payment_confirmation")
		}
		utils.Success(c, fmt.Sprintf("Order #%d completed successfully. Total: MWK%.2f", result.OrderID, result.Amount), gin.H{
			"order_id": result.OrderID,
			"total":    fmt.Sprintf("%.2f", result.Amount),
			"tx_ref":   result.TransactionRef,
			"redirect": "completed_orders",
		})
	case models.PaymentStatusPending:
		utils.Pending(c, "Payment is still pending at the gateway", gin.H{
			"order_id": result.OrderID,
			"tx_ref":   result.TransactionRef,
		})
	default:
		utils.BadRequest(c, result.Message, gin.H{
			"order_id": result.OrderID,
			"tx_ref":   result.TransactionRef,
		})
	}
}
