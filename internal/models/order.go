package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the locally owned order record. ProductID and ClientID reference
// entities owned by the product and user services.
type Order struct {
	ID               int64     `json:"id"`
	ProductID        int64     `json:"product_id"`
	ClientID         int64     `json:"client_id"`
	PurchaseQuantity int       `json:"purchase_quantity"`
	OrderDate        time.Time `json:"order_date"`
}

// ProductSnapshot is a point-in-time read of a product owned by the product
// service. It is never persisted here; no freshness guarantee.
type ProductSnapshot struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	UnitPrice         decimal.Decimal `json:"price"`
	QuantityAvailable int             `json:"quantity"`
}

// UserSnapshot is a point-in-time read of a user owned by the user service.
type UserSnapshot struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Address         string `json:"address"`
	TelephoneNumber string `json:"telephoneNumber"`
}

// OrderDetails is the denormalized view of an order composed with the current
// product and user snapshots. Computed per request, never stored.
type OrderDetails struct {
	OrderID          int64           `json:"order_id"`
	ProductID        int64           `json:"product_id"`
	ClientID         int64           `json:"client_id"`
	PurchaseQuantity int             `json:"purchase_quantity"`
	OrderDate        time.Time       `json:"order_date"`
	ProductName      string          `json:"product_name"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Address          string          `json:"address"`
	TelephoneNumber  string          `json:"telephoneNumber"`
}

// NewOrderDetails assembles the enriched view. TotalPrice is recomputed from
// the snapshot's current unit price, not from anything stored on the order, so
// two calls for the same order can disagree if the price changed in between.
func NewOrderDetails(order *Order, product *ProductSnapshot, user *UserSnapshot) *OrderDetails {
	return &OrderDetails{
		OrderID:          order.ID,
		ProductID:        order.ProductID,
		ClientID:         order.ClientID,
		PurchaseQuantity: order.PurchaseQuantity,
		OrderDate:        order.OrderDate,
		ProductName:      product.Name,
		TotalPrice:       product.UnitPrice.Mul(decimal.NewFromInt(int64(order.PurchaseQuantity))),
		Name:             user.Name,
		Email:            user.Email,
		Address:          user.Address,
		TelephoneNumber:  user.TelephoneNumber,
	}
}

// CreateOrderRequest is the inbound payload for order creation.
type CreateOrderRequest struct {
	ProductID        int64 `json:"product_id"`
	ClientID         int64 `json:"client_id"`
	PurchaseQuantity int   `json:"purchase_quantity"`
}

// UpdateOrderRequest carries the replacement fields for an order update.
// Updates are full replaces of the referenced product, client and quantity.
type UpdateOrderRequest struct {
	ProductID        int64 `json:"product_id"`
	ClientID         int64 `json:"client_id"`
	PurchaseQuantity int   `json:"purchase_quantity"`
}
