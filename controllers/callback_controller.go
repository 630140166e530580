package controllers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/chisomo-dev/eddahpos/config"
	"github.com/chisomo-dev/eddahpos/models"
	"github.com/chisomo-dev/eddahpos/utils"
	"github.com/gin-gonic/gin"
)

// returnRedirect sends the caller to the human-facing result page. The
// webhook never answers the provider with a programmatic error beyond this
// redirect.
func returnRedirect(c *gin.Context, status, message, txRef string) {
	base := "/cashier/return"
	if AppConfig != nil && AppConfig.ReturnURL != "" {
		base = AppConfig.ReturnURL
	}
	params := url.Values{}
	params.Set("status", status)
	params.Set("message", message)
	if txRef != "" {
		params.Set("transaction_ref", txRef)
	}
	c.Redirect(http.StatusFound, base+"?"+params.Encode())
}

// PaymentCallback is the gateway's asynchronous webhook. It is
// unauthenticated except by possession of tx_ref and may race the cashier's
// confirm path; reconciliation makes the pair idempotent.
func PaymentCallback(c *gin.Context) {
	txRef := c.Query("tx_ref")
	if txRef == "" {
		txRef = c.PostForm("tx_ref")
	}
	if txRef == "" {
		utils.LogError("No transaction_ref provided to payment callback")
		returnRedirect(c, "failed", "Missing transaction reference", "")
		return
	}

	utils.LogInfo("Payment callback received for tx_ref %s", txRef)
	result, err := ReconcileTransaction(c.Request.Context(), config.DB, PaymentGateway, txRef)
	if err != nil {
		appErr := utils.GetAppError(err)
		message := "Payment processing failed"
		if appErr != nil {
			message = appErr.Message
		}
		utils.LogError("Callback reconciliation failed for %s: %v", txRef, err)
		returnRedirect(c, "failed", message, txRef)
		return
	}

	switch result.PaymentStatus {
	case models.PaymentStatusSuccess:
		returnRedirect(c, "success", "Order completed successfully", txRef)
	case models.PaymentStatusPending:
		returnRedirect(c, "pending", "Payment is still pending at the gateway", txRef)
	default:
		returnRedirect(c, "failed", result.Message, txRef)
	}
}

// PaymentReturn supplies the result-page data: the outcome passed on the
// redirect plus the stored payment details for the transaction.
func PaymentReturn(c *gin.Context) {
	status := c.Query("status")
	message := c.Query("message")
	txRef := c.Query("transaction_ref")

	if message == "" {
		if status == "success" {
			message = "Payment successful! Your order has been completed."
		} else {
			message = "Payment failed. Please try again or contact support."
		}
	}

	data := gin.H{
		"status":          status,
		"message":         message,
		"transaction_ref": txRef,
	}

	if txRef != "" {
		var payment models.Payment
		if err := config.DB.Where("transaction_ref = ?", txRef).First(&payment).Error; err == nil {
			data["payment"] = gin.H{
				"transaction_ref": payment.TransactionRef,
				"order_id":        payment.OrderID,
				"amount":          fmt.Sprintf("%.2f", payment.Amount),
				"status":          payment.Status,
				"payment_method":  payment.PaymentMethod,
				"created_at":      payment.CreatedAt,
			}
		}
	}

	utils.Success(c, "Payment result", data)
}
