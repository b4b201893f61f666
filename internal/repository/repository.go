package repository

import (
	"context"

	"github.com/shoplite/orders-service/internal/models"
)

// OrderRepository is the keyed store for locally owned orders. No guarantees
// beyond single-row atomicity are assumed by callers.
type OrderRepository interface {
	// GetByID returns the order or apperrors.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.Order, error)

	// GetByClientID returns all orders for a client, possibly empty.
	GetByClientID(ctx context.Context, clientID int64) ([]*models.Order, error)

	// Create inserts a new order and returns it with the server-assigned ID.
	Create(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error)

	// Update fully replaces the order's fields. ErrNotFound if absent.
	Update(ctx context.Context, id int64, req *models.UpdateOrderRequest) (*models.Order, error)

	// Delete removes the order. ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error
}

// OrderCache defines caching operations for orders. Only plain orders are
// cached; enriched order details never are, since their total is recomputed
// from the live product price on every request.
type OrderCache interface {
	Get(ctx context.Context, id int64) (*models.Order, error)
	Set(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id int64) error
	GetByClientID(ctx context.Context, clientID int64) ([]*models.Order, error)
	SetByClientID(ctx context.Context, clientID int64, orders []*models.Order) error
	InvalidateByClientID(ctx context.Context, clientID int64) error
}
