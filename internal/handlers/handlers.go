package handlers

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/shoplite/orders-service/internal/config"
	"github.com/shoplite/orders-service/internal/models"
)

// OrderService is the business-logic surface the HTTP layer depends on.
type OrderService interface {
	GetOrderDetails(ctx context.Context, orderID int64) (*models.OrderDetails, error)
	GetOrdersByClientID(ctx context.Context, clientID int64) ([]*models.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error)
	UpdateOrder(ctx context.Context, orderID int64, req *models.UpdateOrderRequest) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderID int64) error
}

// Handlers holds all HTTP handlers for the orders service.
type Handlers struct {
	orderService OrderService
	config       *config.Config
	logger       *logrus.Entry
}

// NewHandlers creates a new handlers instance.
func NewHandlers(orderService OrderService, cfg *config.Config, logger *logrus.Entry) *Handlers {
	return &Handlers{
		orderService: orderService,
		config:       cfg,
		logger:       logger.WithField("component", "handlers"),
	}
}
