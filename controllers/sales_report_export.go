package controllers

import (
	"fmt"

	"github.com/chisomo-dev/eddahpos/config"
	"github.com/chisomo-dev/eddahpos/utils"
	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
)

// ExportSalesReport streams the sales report for a date range as an xlsx
// attachment.
func ExportSalesReport(c *gin.Context) {
	utils.LogInfo("ExportSalesReport called")

	start, end, err := parseReportRange(c)
	if err != nil {
		utils.BadRequest(c, err.Error(), nil)
		return
	}

	rows, grandTotal, orderTotal, err := salesReport(config.DB, start, end)
	if err != nil {
		utils.LogError("Failed to build sales report for export: %v", err)
		utils.InternalServerError(c, "Failed to build sales report", err.Error())
		return
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Sales Report")
	if err != nil {
		utils.InternalServerError(c, "Failed to create report sheet", err.Error())
		return
	}

	titleRow := sheet.AddRow()
	titleRow.AddCell().Value = "Auntie Eddah POS - Sales Report"
	rangeRow := sheet.AddRow()
	rangeRow.AddCell().Value = fmt.Sprintf("Period: %s to %s",
		start.Format("2006-01-02"), end.AddDate(0, 0, -1).Format("2006-01-02"))
	sheet.AddRow() // spacing

	headerRow := sheet.AddRow()
	for _, header := range []string{"Day", "Orders", "Total Sales (MWK)"} {
		cell := headerRow.AddCell()
		cell.Value = header
		style := xlsx.NewStyle()
		font := xlsx.DefaultFont()
		font.Bold = true
		style.Font = *font
		cell.SetStyle(style)
	}

	for _, row := range rows {
		dataRow := sheet.AddRow()
		dataRow.AddCell().Value = row.Day
		dataRow.AddCell().SetInt64(row.OrderCount)
		dataRow.AddCell().SetFloatWithFormat(row.TotalSales, "0.00")
	}

	sheet.AddRow() // spacing
	summaryRow := sheet.AddRow()
	summaryRow.AddCell().Value = "Totals"
	summaryRow.AddCell().SetInt64(orderTotal)
	summaryRow.AddCell().SetFloatWithFormat(grandTotal, "0.00")

	filename := fmt.Sprintf("sales_report_%s_%s.xlsx",
		start.Format("2006-01-02"), end.AddDate(0, 0, -1).Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write sales report xlsx: %v", err)
	}
}
