package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderDetailsCopiesAllFields(t *testing.T) {
	order := &Order{
		ID:               42,
		ProductID:        7,
		ClientID:         3,
		PurchaseQuantity: 2,
		OrderDate:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	product := &ProductSnapshot{
		ID:                7,
		Name:              "Widget",
		UnitPrice:         decimal.RequireFromString("10.00"),
		QuantityAvailable: 25,
	}
	user := &UserSnapshot{
		ID:              3,
		Name:            "Ada",
		Email:           "a@x.com",
		Address:         "1 Analytical Way",
		TelephoneNumber: "555-0100",
	}

	details := NewOrderDetails(order, product, user)

	assert.Equal(t, int64(42), details.OrderID)
	assert.Equal(t, int64(7), details.ProductID)
	assert.Equal(t, int64(3), details.ClientID)
	assert.Equal(t, 2, details.PurchaseQuantity)
	assert.Equal(t, order.OrderDate, details.OrderDate)
	assert.Equal(t, "Widget", details.ProductName)
	assert.Equal(t, "Ada", details.Name)
	assert.Equal(t, "a@x.com", details.Email)
	assert.Equal(t, "1 Analytical Way", details.Address)
	assert.Equal(t, "555-0100", details.TelephoneNumber)
	assert.True(t, details.TotalPrice.Equal(decimal.RequireFromString("20.00")))
}

func TestNewOrderDetailsTotalPriceIsExact(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice string
		quantity  int
		want      string
	}{
		{"repeating binary fraction", "19.99", 3, "59.97"},
		{"single unit", "0.01", 1, "0.01"},
		{"large quantity", "2.50", 400, "1000.00"},
		{"free item", "0.00", 5, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &Order{ID: 1, ProductID: 7, ClientID: 3, PurchaseQuantity: tt.quantity}
			product := &ProductSnapshot{ID: 7, Name: "Widget", UnitPrice: decimal.RequireFromString(tt.unitPrice)}

			details := NewOrderDetails(order, product, &UserSnapshot{ID: 3})

			assert.Equal(t, tt.want, details.TotalPrice.String())
		})
	}
}

func TestNewOrderDetailsUsesCurrentUnitPrice(t *testing.T) {
	order := &Order{ID: 1, ProductID: 7, ClientID: 3, PurchaseQuantity: 2}
	user := &UserSnapshot{ID: 3}

	before := NewOrderDetails(order, &ProductSnapshot{ID: 7, UnitPrice: decimal.RequireFromString("10.00")}, user)
	after := NewOrderDetails(order, &ProductSnapshot{ID: 7, UnitPrice: decimal.RequireFromString("12.50")}, user)

	assert.Equal(t, "20.00", before.TotalPrice.String())
	assert.Equal(t, "25.00", after.TotalPrice.String())
}

func TestProductSnapshotDecoding(t *testing.T) {
	var product ProductSnapshot
	payload := `{"id":7,"name":"Widget","price":"19.99","quantity":25}`

	require.NoError(t, json.Unmarshal([]byte(payload), &product))

	assert.Equal(t, int64(7), product.ID)
	assert.Equal(t, "Widget", product.Name)
	assert.True(t, product.UnitPrice.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, 25, product.QuantityAvailable)
}

func TestOrderDetailsJSONShape(t *testing.T) {
	details := &OrderDetails{
		OrderID:     42,
		ProductName: "Widget",
		TotalPrice:  decimal.RequireFromString("59.97"),
		Name:        "Ada",
	}

	data, err := json.Marshal(details)
	require.NoError(t, err)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &resp))

	assert.Equal(t, float64(42), resp["order_id"])
	assert.Equal(t, "Widget", resp["product_name"])
	assert.Equal(t, "59.97", resp["total_price"])
	assert.Equal(t, "Ada", resp["name"])
}
