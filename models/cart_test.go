package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleProduct(id uint, name string, price float64) Product {
	p := Product{Name: name, Price: price, Barcode: "B" + name}
	p.ID = id
	return p
}

func TestCartUpsertIncrementsExistingLine(t *testing.T) {
	cart := NewCart()

	line := cart.Upsert(sampleProduct(1, "Sugar 1kg", 1500), "4001")
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, 1, cart.Count())

	line = cart.Upsert(sampleProduct(1, "Sugar 1kg", 1500), "4001")
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 1, cart.Count(), "same product must not create a duplicate line")

	cart.Upsert(sampleProduct(2, "Bread", 900), "4002")
	assert.Equal(t, 2, cart.Count())
}

func TestCartTotalComputedOnDemand(t *testing.T) {
	cart := NewCart()
	cart.Upsert(sampleProduct(1, "Soap", 500), "5001")
	cart.Upsert(sampleProduct(1, "Soap", 500), "5001")

	assert.Equal(t, 1000.0, cart.Total())

	assert.NoError(t, cart.UpdateQuantity(0, 5))
	assert.Equal(t, 2500.0, cart.Total())
}

func TestCartUpdateQuantityRejectsBelowOne(t *testing.T) {
	cart := NewCart()
	cart.Upsert(sampleProduct(1, "Milk", 1200), "6001")

	err := cart.UpdateQuantity(0, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, 1, cart.Lines[0].Quantity, "cart must be unchanged after a rejected update")

	err = cart.UpdateQuantity(0, -3)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	assert.NoError(t, cart.UpdateQuantity(0, 4))
	assert.Equal(t, 4, cart.Lines[0].Quantity)
}

func TestCartRemoveOutOfRangeIsNoOp(t *testing.T) {
	cart := NewCart()
	cart.Upsert(sampleProduct(1, "Rice", 3000), "7001")
	cart.Upsert(sampleProduct(2, "Beans", 2000), "7002")

	cart.Remove(5)
	cart.Remove(-1)
	assert.Equal(t, 2, cart.Count())

	cart.Remove(0)
	assert.Equal(t, 1, cart.Count())
	assert.Equal(t, "Beans", cart.Lines[0].Name, "remaining lines re-index after removal")
}

func TestCartRemoveLastLineLeavesEmptyCart(t *testing.T) {
	cart := NewCart()
	cart.Upsert(sampleProduct(1, "Salt", 300), "8001")

	cart.Remove(0)
	assert.True(t, cart.IsEmpty())
	assert.NotNil(t, cart.Lines, "an emptied cart stays present, not absent")
	assert.Equal(t, 0.0, cart.Total())
}

func TestCartClear(t *testing.T) {
	cart := NewCart()
	cart.Upsert(sampleProduct(1, "Oil", 4500), "9001")
	cart.Upsert(sampleProduct(2, "Flour", 2500), "9002")

	cart.Clear()
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, 0.0, cart.Total())
}
