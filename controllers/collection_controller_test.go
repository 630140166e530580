package controllers

import (
	"sync"
	"testing"

	"github.com/chisomo-dev/eddahpos/config"
	"github.com/chisomo-dev/eddahpos/models"
	"github.com/chisomo-dev/eddahpos/utils"
	"github.com/stretchr/testify/assert"
)

func createCompletedOrder(t *testing.T, userID uint, barcode string) uint {
	product := utils.CreateTestProduct(t, "Washing Powder", barcode, 3500)
	cart := models.NewCart()
	cart.Upsert(*product, product.Barcode)

	orderID, err := CreateOrder(config.DB, userID, cart, models.PaymentMethodCash)
	if err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}
	if err := ConfirmCashOrder(config.DB, orderID); err != nil {
		t.Fatalf("Failed to confirm order: %v", err)
	}
	return orderID
}

func TestMarkOrderCollected(t *testing.T) {
	utils.TestSetup(t)
	user := utils.CreateTestCashier(t)
	orderID := createCompletedOrder(t, user.ID, "4000001")

	assert.NoError(t, MarkOrderCollected(config.DB, orderID))

	var order models.Order
	assert.NoError(t, config.DB.First(&order, orderID).Error)
	assert.Equal(t, models.OrderCollectedYes, order.Collected)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
}

func TestMarkOrderCollectedRejectsPendingOrder(t *testing.T) {
	utils.TestSetup(t)
	user := utils.CreateTestCashier(t)
	product := utils.CreateTestProduct(t, "Candles", "4000002", 800)

	cart := models.NewCart()
	cart.Upsert(*product, product.Barcode)
	orderID, err := CreateOrder(config.DB, user.ID, cart, models.PaymentMethodCash)
	assert.NoError(t, err)

	err = MarkOrderCollected(config.DB, orderID)
	assert.ErrorIs(t, err, utils.ErrNotCollectable)

	var order models.Order
	assert.NoError(t, config.DB.First(&order, orderID).Error)
	assert.Equal(t, models.OrderCollectedNo, order.Collected)
}

func TestMarkOrderCollectedRejectsSecondCollection(t *testing.T) {
	utils.TestSetup(t)
	user := utils.CreateTestCashier(t)
	orderID := createCompletedOrder(t, user.ID, "4000003")

	assert.NoError(t, MarkOrderCollected(config.DB, orderID))

	err := MarkOrderCollected(config.DB, orderID)
	assert.ErrorIs(t, err, utils.ErrNotCollectable)
	appErr := utils.GetAppError(err)
	if assert.NotNil(t, appErr) {
		assert.Equal(t, 409, appErr.Code)
		assert.Equal(t, utils.KindNotCollectable, appErr.Kind)
	}
}

func TestMarkOrderCollectedMissingOrder(t *testing.T) {
	utils.TestSetup(t)

	err := MarkOrderCollected(config.DB, 987654)
	assert.ErrorIs(t, err, utils.ErrNotCollectable)
}

func TestMarkOrderCollectedConcurrentExactlyOneWins(t *testing.T) {
	utils.TestSetup(t)
	user := utils.CreateTestCashier(t)
	orderID := createCompletedOrder(t, user.ID, "4000004")

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = MarkOrderCollected(config.DB, orderID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, utils.ErrNotCollectable)
		}
	}
	assert.Equal(t, 1, succeeded, "collection must happen exactly once")
}
