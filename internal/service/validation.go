package service

import (
	"github.com/shoplite/orders-service/internal/apperrors"
	"github.com/shoplite/orders-service/internal/models"
)

// ValidateCreateOrderRequest validates an order creation request.
func ValidateCreateOrderRequest(req *models.CreateOrderRequest) error {
	if req.ProductID <= 0 {
		return apperrors.NewValidationError("product_id", "product ID must be positive")
	}
	if req.ClientID <= 0 {
		return apperrors.NewValidationError("client_id", "client ID must be positive")
	}
	if req.PurchaseQuantity <= 0 {
		return apperrors.NewValidationError("purchase_quantity", "purchase quantity must be positive")
	}
	return nil
}

// ValidateUpdateOrderRequest validates an order replacement request. Updates
// carry the same invariants as creation: every reference and the quantity
// must stay positive.
func ValidateUpdateOrderRequest(req *models.UpdateOrderRequest) error {
	if req.ProductID <= 0 {
		return apperrors.NewValidationError("product_id", "product ID must be positive")
	}
	if req.ClientID <= 0 {
		return apperrors.NewValidationError("client_id", "client ID must be positive")
	}
	if req.PurchaseQuantity <= 0 {
		return apperrors.NewValidationError("purchase_quantity", "purchase quantity must be positive")
	}
	return nil
}
