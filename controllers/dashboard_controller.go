package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/chisomo-dev/eddahpos/config"
	"github.com/chisomo-dev/eddahpos/models"
	"github.com/chisomo-dev/eddahpos/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StatsOverview carries the dashboard badge numbers. Read-only projection
// over orders; it never mutates order or payment state.
type StatsOverview struct {
	PendingCount   int64   `json:"pending_count"`
	CompletedCount int64   `json:"completed_count"`
	TotalPending   float64 `json:"total_pending"`
	TotalCompleted float64 `json:"total_completed"`
}

// OrderSummary is one row in the pending/completed order tables.
type OrderSummary struct {
	OrderID       uint      `json:"order_id"`
	Customer      string    `json:"customer"`
	Total         float64   `json:"total"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	Collected     string    `json:"collected"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DashboardStats computes the badge numbers over the orders table.
func DashboardStats(db *gorm.DB) (*StatsOverview, error) {
	var stats StatsOverview

	if err := db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusPending).
		Count(&stats.PendingCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusCompleted).
		Count(&stats.CompletedCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusPending).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&stats.TotalPending).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusCompleted).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&stats.TotalCompleted).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

// Stats serves the dashboard badge numbers.
func Stats(c *gin.Context) {
	stats, err := DashboardStats(config.DB)
	if err != nil {
		utils.LogError("Failed to compute dashboard stats: %v", err)
		utils.InternalServerError(c, "Failed to retrieve stats", err.Error())
		return
	}
	utils.Success(c, "Stats retrieved successfully", gin.H{"stats": stats})
}

func orderSummaries(db *gorm.DB, status string, limit int) ([]OrderSummary, error) {
	query := db.Model(&models.Order{}).
		Select("orders.id AS order_id, COALESCE(users.first_name || ' ' || users.last_name, '') AS customer, orders.total_amount AS total, orders.payment_method, orders.status, orders.collected, orders.created_at, orders.updated_at").
		Joins("LEFT JOIN users ON users.id = orders.user_id").
		Where("orders.status = ?", status).
		Order("orders.created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []OrderSummary
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// PendingOrdersData lists orders still awaiting payment confirmation.
func PendingOrdersData(c *gin.Context) {
	rows, err := orderSummaries(config.DB, models.OrderStatusPending, 0)
	if err != nil {
		utils.LogError("Failed to load pending orders: %v", err)
		utils.InternalServerError(c, "Failed to retrieve pending orders", err.Error())
		return
	}
	utils.Success(c, "Pending orders retrieved", gin.H{"orders": rows, "count": len(rows)})
}

// CompletedOrdersData lists recently completed orders, newest first.
func CompletedOrdersData(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	rows, err := orderSummaries(config.DB, models.OrderStatusCompleted, limit)
	if err != nil {
		utils.LogError("Failed to load completed orders: %v", err)
		utils.InternalServerError(c, "Failed to retrieve completed orders", err.Error())
		return
	}
	utils.Success(c, "Completed orders retrieved", gin.H{"orders": rows, "count": len(rows)})
}

// OrderDetails returns one order with its items and customer.
func OrderDetails(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 64)
	if err != nil {
		utils.BadRequest(c, "Invalid order id", nil)
		return
	}

	var order models.Order
	if err := config.DB.Preload("OrderItems").Preload("User").Where("id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Order not found")
			return
		}
		utils.InternalServerError(c, "Failed to load order", err.Error())
		return
	}

	utils.Success(c, "Order retrieved", gin.H{
		"order": gin.H{
			"order_id":       order.ID,
			"customer":       fmt.Sprintf("%s %s", order.User.FirstName, order.User.LastName),
			"total":          fmt.Sprintf("%.2f", order.TotalAmount),
			"payment_method": order.PaymentMethod,
			"status":         order.Status,
			"collected":      order.Collected,
			"created_at":     order.CreatedAt,
			"updated_at":     order.UpdatedAt,
			"items":          order.OrderItems,
		},
	})
}

// SalesReportRow is one day of completed sales.
type SalesReportRow struct {
	Day        string  `json:"day"`
	OrderCount int64   `json:"order_count"`
	TotalSales float64 `json:"total_sales"`
}

// salesReport aggregates completed orders per day over a closed date range.
func salesReport(db *gorm.DB, start, end time.Time) ([]SalesReportRow, float64, int64, error) {
	var rows []SalesReportRow
	err := db.Model(&models.Order{}).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') AS day, COUNT(*) AS order_count, COALESCE(SUM(total_amount), 0) AS total_sales").
		Where("status = ? AND created_at >= ? AND created_at < ?", models.OrderStatusCompleted, start, end).
		Group("day").
		Order("day").
		Scan(&rows).Error
	if err != nil {
		return nil, 0, 0, err
	}

	var grandTotal float64
	var orderTotal int64
	for _, row := range rows {
		grandTotal += row.TotalSales
		orderTotal += row.OrderCount
	}
	return rows, grandTotal, orderTotal, nil
}

// parseReportRange reads start_date/end_date query params, defaulting to
// the trailing seven days. The end date is inclusive.
func parseReportRange(c *gin.Context) (time.Time, time.Time, error) {
	const layout = "2006-01-02"
	now := time.Now()

	start := now.AddDate(0, 0, -7)
	if raw := c.Query("start_date"); raw != "" {
		parsed, err := time.Parse(layout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q", raw)
		}
		start = parsed
	}

	end := now
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := time.Parse(layout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q", raw)
		}
		end = parsed
	}

	// Make the end date inclusive by querying up to the following midnight.
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location()).AddDate(0, 0, 1)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date precedes start_date")
	}
	return start, end, nil
}

// SalesReportData serves per-day completed sales over a date range.
func SalesReportData(c *gin.Context) {
	start, end, err := parseReportRange(c)
	if err != nil {
		utils.BadRequest(c, err.Error(), nil)
		return
	}

	rows, grandTotal, orderTotal, err := salesReport(config.DB, start, end)
	if err != nil {
		utils.LogError("Failed to build sales report: %v", err)
		utils.InternalServerError(c, "Failed to build sales report", err.Error())
		return
	}

	utils.Success(c, "Sales report retrieved", gin.H{
		"rows":         rows,
		"total_sales":  fmt.Sprintf("%.2f", grandTotal),
		"total_orders": orderTotal,
		"start_date":   start.Format("2006-01-02"),
		"end_date":     end.AddDate(0, 0, -1).Format("2006-01-02"),
	})
}
