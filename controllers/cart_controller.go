package controllers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chisomo-dev/eddahpos/config"
	"github.com/chisomo-dev/eddahpos/models"
	"github.com/chisomo-dev/eddahpos/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// lookupProductByBarcode resolves a scanned barcode against the catalog.
func lookupProductByBarcode(db *gorm.DB, barcode string) (*models.Product, error) {
	var product models.Product
	err := db.Where("barcode = ? AND is_active = ?", barcode, true).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// AddToCart scans a barcode into the session cart. A product already in
// the cart gets its quantity bumped instead of a duplicate line.
func AddToCart(c *gin.Context) {
	utils.LogInfo("AddToCart called")

	var req struct {
		Barcode string `json:"barcode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	barcode := strings.TrimSpace(req.Barcode)
	if barcode == "" {
		utils.BadRequest(c, "Please enter a barcode", nil)
		return
	}

	product, err := lookupProductByBarcode(config.DB, barcode)
	if err != nil {
		utils.LogError("Barcode lookup failed for %s: %v", barcode, err)
		utils.InternalServerError(c, "Failed to look up product", err.Error())
		return
	}
	if product == nil {
		utils.NotFound(c, fmt.Sprintf("Product not found for barcode: %s", barcode))
		return
	}

	cart := utils.GetCart(c)
	line := cart.Upsert(*product, barcode)
	if err := utils.SaveCart(c, cart); err != nil {
		utils.LogError("Failed to save cart: %v", err)
		utils.InternalServerError(c, "Failed to update cart", nil)
		return
	}

	utils.LogInfo("Added product ID %d (qty %d) to cart, %d lines total", line.ProductID, line.Quantity, cart.Count())
	utils.Success(c, fmt.Sprintf("%s (MWK%.2f) added to cart", product.Name, product.Price), gin.H{
		"item":       line,
		"cart_total": fmt.Sprintf("%.2f", cart.Total()),
		"cart_count": cart.Count(),
	})
}

// CartOperation applies remove_item, update_quantity, or clear to the
// session cart.
func CartOperation(c *gin.Context) {
	utils.LogInfo("CartOperation called")

	var req struct {
		Operation string `json:"operation"`
		ItemIndex *int   `json:"item_index"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	cart := utils.GetCart(c)

	switch req.Operation {
	case "clear":
		// Clearing also discards the checkout correlation bound to this
		// cart; a later checkout starts from a fresh tx_ref.
		if err := utils.ClearCheckout(c); err != nil {
			utils.InternalServerError(c, "Failed to clear cart", nil)
			return
		}
		utils.Success(c, "Cart cleared successfully", gin.H{
			"cart_total": "0.00",
			"cart_count": 0,
		})

	case "remove_item":
		if req.ItemIndex == nil {
			utils.BadRequest(c, "item_index is required", nil)
			return
		}
		var removed string
		if *req.ItemIndex >= 0 && *req.ItemIndex < cart.Count() {
			removed = cart.Lines[*req.ItemIndex].Name
		}
		cart.Remove(*req.ItemIndex)
		if err := utils.SaveCart(c, cart); err != nil {
			utils.InternalServerError(c, "Failed to update cart", nil)
			return
		}
		message := "Item not in cart"
		if removed != "" {
			message = fmt.Sprintf("Removed %s from cart", removed)
		}
		utils.Success(c, message, gin.H{
			"cart_total": fmt.Sprintf("%.2f", cart.Total()),
			"cart_count": cart.Count(),
		})

	case "update_quantity":
		if req.ItemIndex == nil {
			utils.BadRequest(c, "item_index is required", nil)
			return
		}
		if err := cart.UpdateQuantity(*req.ItemIndex, req.Quantity); err != nil {
			utils.BadRequest(c, "Invalid quantity", err.Error())
			return
		}
		if err := utils.SaveCart(c, cart); err != nil {
			utils.InternalServerError(c, "Failed to update cart", nil)
			return
		}
		utils.Success(c, "Quantity updated", gin.H{
			"cart_total": fmt.Sprintf("%.2f", cart.Total()),
			"cart_count": cart.Count(),
		})

	default:
		utils.BadRequest(c, "Invalid operation", nil)
	}
}

// GetCartData returns the session cart for the UI.
func GetCartData(c *gin.Context) {
	cart := utils.GetCart(c)
	utils.Success(c, "Cart retrieved", gin.H{
		"cart":       cart.Lines,
		"cart_total": fmt.Sprintf("%.2f", cart.Total()),
		"cart_count": cart.Count(),
	})
}

// ProductDetails previews a catalog product by barcode without touching
// the cart.
func ProductDetails(c *gin.Context) {
	barcode := strings.TrimSpace(c.Query("barcode"))
	if barcode == "" {
		utils.BadRequest(c, "Please enter a barcode", nil)
		return
	}

	product, err := lookupProductByBarcode(config.DB, barcode)
	if err != nil {
		utils.InternalServerError(c, "Failed to look up product", err.Error())
		return
	}
	if product == nil {
		utils.NotFound(c, fmt.Sprintf("Product not found for barcode: %s", barcode))
		return
	}

	utils.Success(c, "Product found", gin.H{
		"product_id": product.ID,
		"name":       product.Name,
		"price":      product.Price,
		"category":   product.Category,
	})
}
