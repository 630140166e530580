package controllers

import (
	"encoding/gob"
	"net/http"
	"testing"

	"github.com/chisomo-dev/eddahpos/config"
	"github.com/chisomo-dev/eddahpos/models"
	"github.com/chisomo-dev/eddahpos/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gob.Register(models.Cart{})
	gob.Register(models.CartLine{})
}

// checkoutRouter mounts the till endpoints behind a session store with the
// given cashier pre-authenticated.
func checkoutRouter(user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	store := cookie.NewStore([]byte("test-session-secret"))
	router.Use(sessions.Sessions("eddahpos", store))
	router.Use(func(c *gin.Context) {
		c.Set("user", *user)
	})

	router.POST("/cart/add", AddToCart)
	router.GET("/cart", GetCartData)
	router.POST("/process-payment", ProcessPayment)
	router.POST("/confirm-order", ConfirmOrder)
	return router
}

func cartCount(t *testing.T, router *gin.Engine, cookies []*http.Cookie) float64 {
	resp := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method:  "GET",
		Path:    "/cart",
		Cookies: cookies,
	})
	assert.Equal(t, 200, resp.StatusCode)
	data, _ := resp.Body["data"].(map[string]interface{})
	count, _ := data["cart_count"].(float64)
	return count
}

func TestCashCheckoutClearsCart(t *testing.T) {
	utils.TestSetup(t)
	user := utils.CreateTestCashier(t)
	utils.CreateTestProduct(t, "Soap", "8000001", 500)
	router := checkoutRouter(user)

	scan := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method: "POST",
		Path:   "/cart/add",
		Body:   map[string]string{"barcode": "8000001"},
	})
	assert.Equal(t, 200, scan.StatusCode)
	scan = utils.MakeTestRequest(t, router, utils.TestRequest{
		Method:  "POST",
		Path:    "/cart/add",
		Body:    map[string]string{"barcode": "8000001"},
		Cookies: scan.Cookies,
	})
	assert.Equal(t, 200, scan.StatusCode)

	paid := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method:  "POST",
		Path:    "/process-payment",
		Body:    map[string]string{"payment_method": "cash"},
		Cookies: scan.Cookies,
	})
	assert.Equal(t, 200, paid.StatusCode)
	assert.Equal(t, "success", paid.Body["status"])

	data, _ := paid.Body["data"].(map[string]interface{})
	assert.Equal(t, "1000.00", data["total"])

	orderID := uint(data["order_id"].(float64))
	var order models.Order
	assert.NoError(t, config.DB.First(&order, orderID).Error)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)

	assert.Equal(t, 0.0, cartCount(t, router, paid.Cookies), "checkout must empty the cart")
}

func TestMobileSettleClearsInitiatingCart(t *testing.T) {
	utils.TestSetup(t)
	user := utils.CreateTestCashier(t)
	utils.CreateTestProduct(t, "Cooking Oil 2L", "8000002", 5000)
	router := checkoutRouter(user)

	scan := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method: "POST",
		Path:   "/cart/add",
		Body:   map[string]string{"barcode": "8000002"},
	})
	assert.Equal(t, 200, scan.StatusCode)

	initiated := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method:  "POST",
		Path:    "/process-payment",
		Body:    map[string]string{"payment_method": "mobile_transfer"},
		Cookies: scan.Cookies,
	})
	assert.Equal(t, 200, initiated.StatusCode)
	assert.Equal(t, "pending", initiated.Body["status"])

	data, _ := initiated.Body["data"].(map[string]interface{})
	txRef, _ := data["tx_ref"].(string)
	assert.NotEmpty(t, txRef)

	// The handoff must not clear the cart; the sale is not settled yet.
	assert.Equal(t, 1.0, cartCount(t, router, initiated.Cookies))

	restore := swapGateway(successVerifier(5000))
	defer restore()

	settled := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method:  "POST",
		Path:    "/process-payment",
		Body:    map[string]string{"payment_method": "mobile_transfer", "tx_ref": txRef},
		Cookies: initiated.Cookies,
	})
	assert.Equal(t, 200, settled.StatusCode)
	assert.Equal(t, "success", settled.Body["status"])

	assert.Equal(t, 0.0, cartCount(t, router, settled.Cookies), "the winning settle must empty the initiating cart")
}

func TestConfirmForeignOrderLeavesCartAlone(t *testing.T) {
	utils.TestSetup(t)
	user := utils.CreateTestCashier(t)
	utils.CreateTestProduct(t, "Rice 5kg", "8000003", 9000)
	utils.CreateTestProduct(t, "Bread", "8000004", 900)
	router := checkoutRouter(user)

	// Till A initiates a mobile checkout, then the customer walks off to pay.
	scanA := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method: "POST",
		Path:   "/cart/add",
		Body:   map[string]string{"barcode": "8000003"},
	})
	assert.Equal(t, 200, scanA.StatusCode)
	initiated := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method:  "POST",
		Path:    "/process-payment",
		Body:    map[string]string{"payment_method": "mobile_transfer"},
		Cookies: scanA.Cookies,
	})
	assert.Equal(t, 200, initiated.StatusCode)

	data, _ := initiated.Body["data"].(map[string]interface{})
	orderID := uint(data["order_id"].(float64))

	// Till B is mid-sale for the next customer when the gateway settles and
	// the cashier confirms order A from the pending list.
	scanB := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method: "POST",
		Path:   "/cart/add",
		Body:   map[string]string{"barcode": "8000004"},
	})
	assert.Equal(t, 200, scanB.StatusCode)

	restore := swapGateway(successVerifier(9000))
	defer restore()

	confirmed := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method:  "POST",
		Path:    "/confirm-order",
		Body:    map[string]interface{}{"order_id": orderID},
		Cookies: scanB.Cookies,
	})
	assert.Equal(t, 200, confirmed.StatusCode)
	assert.Equal(t, "success", confirmed.Body["status"])

	var order models.Order
	assert.NoError(t, config.DB.First(&order, orderID).Error)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)

	// The confirming session's own cart must survive untouched. The confirm
	// wrote nothing to the session, so its cookie is still the scan's.
	assert.Equal(t, 1.0, cartCount(t, router, scanB.Cookies), "confirming another checkout's order must not wipe this cart")
}

func TestReplayedConfirmTouchesNothing(t *testing.T) {
	utils.TestSetup(t)
	user := utils.CreateTestCashier(t)
	utils.CreateTestProduct(t, "Flour", "8000005", 2500)
	router := checkoutRouter(user)

	scan := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method: "POST",
		Path:   "/cart/add",
		Body:   map[string]string{"barcode": "8000005"},
	})
	assert.Equal(t, 200, scan.StatusCode)
	initiated := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method:  "POST",
		Path:    "/process-payment",
		Body:    map[string]string{"payment_method": "mobile_transfer"},
		Cookies: scan.Cookies,
	})
	assert.Equal(t, 200, initiated.StatusCode)

	data, _ := initiated.Body["data"].(map[string]interface{})
	txRef, _ := data["tx_ref"].(string)

	restore := swapGateway(successVerifier(2500))
	defer restore()

	// The webhook settles first, in a session of its own.
	webhook := callbackRouter()
	callbackRedirect(t, webhook, "/payment/callback?tx_ref="+txRef)

	// The initiating till's confirm arrives second: the stored result comes
	// back, but as the race loser it performs no side effects, so the cart
	// it initiated from is kept.
	settled := utils.MakeTestRequest(t, router, utils.TestRequest{
		Method:  "POST",
		Path:    "/process-payment",
		Body:    map[string]string{"payment_method": "mobile_transfer", "tx_ref": txRef},
		Cookies: initiated.Cookies,
	})
	assert.Equal(t, 200, settled.StatusCode)
	assert.Equal(t, "success", settled.Body["status"])

	assert.Equal(t, 1.0, cartCount(t, router, initiated.Cookies))
}
