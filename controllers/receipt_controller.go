package controllers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/chisomo-dev/eddahpos/config"
	"github.com/chisomo-dev/eddahpos/models"
	"github.com/chisomo-dev/eddahpos/utils"
	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"
)

// OrderReceipt renders a PDF receipt for a completed order.
func OrderReceipt(c *gin.Context) {
	utils.LogInfo("OrderReceipt called")

	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 64)
	if err != nil {
		utils.BadRequest(c, "Invalid order id", nil)
		return
	}

	var order models.Order
	if err := config.DB.Preload("OrderItems").Where("id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Order not found")
			return
		}
		utils.InternalServerError(c, "Failed to load order", err.Error())
		return
	}

	if order.Status != models.OrderStatusCompleted {
		utils.BadRequest(c, "Receipts are only available for completed orders", nil)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, "Auntie Eddah POS")
	pdf.SetFont("Arial", "", 12)
	pdf.Ln(8)
	pdf.Cell(100, 8, "Area 25, Lilongwe, Malawi")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "RECEIPT")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(60, 8, "Order ID: "+strconv.Itoa(int(order.ID)))
	pdf.Cell(70, 8, "Date: "+order.CreatedAt.Format("2006-01-02 15:04:05"))
	pdf.Ln(8)
	pdf.Cell(60, 8, "Payment Method: "+order.PaymentMethod)
	pdf.Cell(70, 8, "Collected: "+order.Collected)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(80, 8, "Item")
	pdf.Cell(25, 8, "Qty")
	pdf.Cell(40, 8, "Unit Price")
	pdf.Cell(40, 8, "Total")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 12)
	for _, item := range order.OrderItems {
		pdf.Cell(80, 8, item.Name)
		pdf.Cell(25, 8, strconv.Itoa(item.Quantity))
		pdf.Cell(40, 8, fmt.Sprintf("%.2f", item.UnitPrice))
		pdf.Cell(40, 8, fmt.Sprintf("%.2f", item.UnitPrice*float64(item.Quantity)))
		pdf.Ln(8)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(145, 8, "Total Amount")
	pdf.Cell(40, 8, fmt.Sprintf("MWK %.2f", order.TotalAmount))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt_order_%d.pdf", order.ID))
	c.Header("Content-Type", "application/pdf")

	if err := pdf.Output(c.Writer); err != nil {
		utils.LogError("Failed to write receipt PDF for order %d: %v", order.ID, err)
	}
}
