package controllers

import (
	"testing"

	"github.com/chisomo-dev/eddahpos/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func cartRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := cookie.NewStore([]byte("test-session-secret"))
	router.Use(sessions.Sessions("eddahpos", store))
	router.POST("/cart/add", AddToCart)
	router.POST("/cart/operation", CartOperation)
	router.GET("/cart", GetCartData)
	return router
}

func TestAddToCartUnknownBarcode(t *testing.T) {
	utils.TestSetup(t)
	router := cartRouter()

	resp := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method: "POST",
		Path:   "/cart/add",
		Body:   map[string]string{"barcode": "0000000"},
	})
	assert.Equal(t, 404, resp.StatusCode)
	assert.Contains(t, resp.Body["message"], "0000000")
}

func TestAddToCartMissingBarcode(t *testing.T) {
	utils.TestSetup(t)
	router := cartRouter()

	resp := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method: "POST",
		Path:   "/cart/add",
		Body:   map[string]string{"barcode": "   "},
	})
	assert.Equal(t, 400, resp.StatusCode)
}

func TestAddToCartScanAndRescan(t *testing.T) {
	utils.TestSetup(t)
	utils.CreateTestProduct(t, "Sugar 1kg", "7000001", 1500)
	router := cartRouter()

	first := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method: "POST",
		Path:   "/cart/add",
		Body:   map[string]string{"barcode": "7000001"},
	})
	assert.Equal(t, 200, first.StatusCode)

	data, _ := first.Body["data"].(map[string]interface{})
	assert.Equal(t, "1500.00", data["cart_total"])
	assert.Equal(t, float64(1), data["cart_count"])

	// Scanning the same product again bumps the quantity in place.
	second := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method:  "POST",
		Path:    "/cart/add",
		Body:    map[string]string{"barcode": "7000001"},
		Cookies: first.Cookies,
	})
	assert.Equal(t, 200, second.StatusCode)

	data, _ = second.Body["data"].(map[string]interface{})
	assert.Equal(t, "3000.00", data["cart_total"])
	assert.Equal(t, float64(1), data["cart_count"], "rescan must not add a second line")
}

func TestCartOperationClear(t *testing.T) {
	utils.TestSetup(t)
	utils.CreateTestProduct(t, "Bread", "7000002", 900)
	router := cartRouter()

	added := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method: "POST",
		Path:   "/cart/add",
		Body:   map[string]string{"barcode": "7000002"},
	})
	assert.Equal(t, 200, added.StatusCode)

	cleared := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method:  "POST",
		Path:    "/cart/operation",
		Body:    map[string]interface{}{"operation": "clear"},
		Cookies: added.Cookies,
	})
	assert.Equal(t, 200, cleared.StatusCode)

	data, _ := cleared.Body["data"].(map[string]interface{})
	assert.Equal(t, "0.00", data["cart_total"])
	assert.Equal(t, float64(0), data["cart_count"])
}

func TestCartOperationRemoveOutOfRange(t *testing.T) {
	utils.TestSetup(t)
	router := cartRouter()

	index := 5
	resp := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method: "POST",
		Path:   "/cart/operation",
		Body:   map[string]interface{}{"operation": "remove_item", "item_index": index},
	})
	assert.Equal(t, 200, resp.StatusCode, "removing a missing line is a no-op, not an error")
	assert.Equal(t, "Item not in cart", resp.Body["message"])
}

func TestCartOperationRejectsZeroQuantity(t *testing.T) {
	utils.TestSetup(t)
	utils.CreateTestProduct(t, "Milk 500ml", "7000003", 1200)
	router := cartRouter()

	added := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method: "POST",
		Path:   "/cart/add",
		Body:   map[string]string{"barcode": "7000003"},
	})
	assert.Equal(t, 200, added.StatusCode)

	index := 0
	resp := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method:  "POST",
		Path:    "/cart/operation",
		Body:    map[string]interface{}{"operation": "update_quantity", "item_index": index, "quantity": 0},
		Cookies: added.Cookies,
	})
	assert.Equal(t, 400, resp.StatusCode)

	// The rejected update must leave the cart untouched.
	cart := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method:  "GET",
		Path:    "/cart",
		Cookies: added.Cookies,
	})
	data, _ := cart.Body["data"].(map[string]interface{})
	assert.Equal(t, "1200.00", data["cart_total"])
}
