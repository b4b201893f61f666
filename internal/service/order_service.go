package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/shoplite/orders-service/internal/apperrors"
	"github.com/shoplite/orders-service/internal/clients"
	"github.com/shoplite/orders-service/internal/config"
	"github.com/shoplite/orders-service/internal/events"
	"github.com/shoplite/orders-service/internal/metrics"
	"github.com/shoplite/orders-service/internal/models"
	"github.com/shoplite/orders-service/internal/repository"
	"github.com/shoplite/orders-service/internal/resilience"
)

const (
	failureReasonInvalid  = "invalid_argument"
	failureReasonNotFound = "not_found"
	failureReasonUpstream = "upstream_unavailable"
)

// OrderService handles order business logic, including the enrichment of
// local order records with product and user data fetched from sibling
// services.
type OrderService struct {
	orderRepo      repository.OrderRepository
	orderCache     repository.OrderCache
	lookupClient   clients.LookupClient
	retryPolicy    *resilience.Policy
	eventPublisher events.OrderEventPublisher
	metrics        *metrics.EnrichmentMetrics
	config         *config.Config
	logger         *logrus.Entry
}

// NewOrderService creates a new order service. The retry policy is shared by
// all requests; it must be safe for concurrent use.
func NewOrderService(
	orderRepo repository.OrderRepository,
	orderCache repository.OrderCache,
	lookupClient clients.LookupClient,
	retryPolicy *resilience.Policy,
	eventPublisher events.OrderEventPublisher,
	enrichmentMetrics *metrics.EnrichmentMetrics,
	cfg *config.Config,
	logger *logrus.Entry,
) *OrderService {
	return &OrderService{
		orderRepo:      orderRepo,
		orderCache:     orderCache,
		lookupClient:   lookupClient,
		retryPolicy:    retryPolicy,
		eventPublisher: eventPublisher,
		metrics:        enrichmentMetrics,
		config:         cfg,
		logger:         logger.WithField("component", "order-service"),
	}
}

// GetOrderDetails composes the order with the current product and user
// snapshots. Assembly is all-or-nothing: if either lookup ultimately fails,
// no partial result is returned.
func (s *OrderService) GetOrderDetails(ctx context.Context, orderID int64) (*models.OrderDetails, error) {
	if orderID <= 0 {
		s.metrics.RecordEnrichmentFailure(failureReasonInvalid)
		return nil, apperrors.NewValidationError("order_id", "order ID must be positive")
	}

	s.metrics.RecordEnrichmentRequest()
	s.logger.WithField("order_id", orderID).Debug("Getting order details")

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.metrics.RecordEnrichmentFailure(failureReasonNotFound)
		}
		return nil, err
	}

	// The two lookups are independent; run them concurrently so worst-case
	// latency is the slower of the two rather than their sum. A terminal
	// failure on either side cancels the other.
	g, gctx := errgroup.WithContext(ctx)

	var product *models.ProductSnapshot
	var user *models.UserSnapshot

	g.Go(func() error {
		p, err := s.fetchProduct(gctx, order.ProductID)
		if err != nil {
			return apperrors.NewUpstreamError("product", err)
		}
		product = p
		return nil
	})

	g.Go(func() error {
		u, err := s.fetchUser(gctx, order.ClientID)
		if err != nil {
			return apperrors.NewUpstreamError("user", err)
		}
		user = u
		return nil
	})

	if err := g.Wait(); err != nil {
		s.metrics.RecordEnrichmentFailure(failureReasonUpstream)
		s.logger.WithFields(logrus.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		}).Error("Order enrichment failed")
		return nil, err
	}

	return models.NewOrderDetails(order, product, user), nil
}

// GetOrdersByClientID lists a client's orders without enrichment. An empty
// result is reported as not found.
func (s *OrderService) GetOrdersByClientID(ctx context.Context, clientID int64) ([]*models.Order, error) {
	if clientID <= 0 {
		return nil, apperrors.NewValidationError("client_id", "client ID must be positive")
	}

	if s.config.Features.EnableOrderCaching && s.orderCache != nil {
		if orders, err := s.orderCache.GetByClientID(ctx, clientID); err == nil && len(orders) > 0 {
			return orders, nil
		}
	}

	orders, err := s.orderRepo.GetByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, apperrors.ErrNotFound
	}

	if s.config.Features.EnableOrderCaching && s.orderCache != nil {
		if err := s.orderCache.SetByClientID(ctx, clientID, orders); err != nil {
			s.logger.WithField("client_id", clientID).Warn("Failed to cache client orders")
		}
	}

	return orders, nil
}

// GetOrder retrieves a single order without enrichment.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	if orderID <= 0 {
		return nil, apperrors.NewValidationError("order_id", "order ID must be positive")
	}
	return s.getOrder(ctx, orderID)
}

// CreateOrder validates and persists a new order.
func (s *OrderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	if err := ValidateCreateOrderRequest(req); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.cacheOrder(ctx, order)
	s.invalidateClientList(ctx, order.ClientID)
	s.publishEvent(ctx, func() error {
		return s.eventPublisher.PublishOrderCreated(ctx, order)
	}, order.ID)

	s.logger.WithFields(logrus.Fields{
		"order_id":  order.ID,
		"client_id": order.ClientID,
	}).Info("Order created")

	return order, nil
}

// UpdateOrder fully replaces the mutable fields of an existing order.
func (s *OrderService) UpdateOrder(ctx context.Context, orderID int64, req *models.UpdateOrderRequest) (*models.Order, error) {
	if orderID <= 0 {
		return nil, apperrors.NewValidationError("order_id", "order ID must be positive")
	}
	if err := ValidateUpdateOrderRequest(req); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.Update(ctx, orderID, req)
	if err != nil {
		return nil, err
	}

	s.invalidateOrder(ctx, order.ID, order.ClientID)
	s.publishEvent(ctx, func() error {
		return s.eventPublisher.PublishOrderUpdated(ctx, order)
	}, order.ID)

	return order, nil
}

// DeleteOrder removes an order.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return apperrors.NewValidationError("order_id", "order ID must be positive")
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		return err
	}

	s.invalidateOrder(ctx, order.ID, order.ClientID)
	s.publishEvent(ctx, func() error {
		return s.eventPublisher.PublishOrderDeleted(ctx, order.ID, order.ClientID)
	}, order.ID)

	return nil
}

func (s *OrderService) getOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	if s.config.Features.EnableOrderCaching && s.orderCache != nil {
		if order, err := s.orderCache.Get(ctx, orderID); err == nil && order != nil {
			return order, nil
		}
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ID <= 0 {
		// The store handed back a row without a usable key; treat it the
		// same as absence rather than enriching a phantom order.
		return nil, apperrors.ErrNotFound
	}

	s.cacheOrder(ctx, order)
	return order, nil
}

func (s *OrderService) fetchProduct(ctx context.Context, productID int64) (*models.ProductSnapshot, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveLookupDuration("product", time.Since(start))
	}()

	var product *models.ProductSnapshot
	err := s.retryPolicy.Do(ctx, func(ctx context.Context) error {
		p, err := s.lookupClient.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *OrderService) fetchUser(ctx context.Context, userID int64) (*models.UserSnapshot, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveLookupDuration("user", time.Since(start))
	}()

	var user *models.UserSnapshot
	err := s.retryPolicy.Do(ctx, func(ctx context.Context) error {
		u, err := s.lookupClient.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *OrderService) cacheOrder(ctx context.Context, order *models.Order) {
	if !s.config.Features.EnableOrderCaching || s.orderCache == nil {
		return
	}
	if err := s.orderCache.Set(ctx, order); err != nil {
		s.logger.WithFields(logrus.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		}).Warn("Failed to cache order")
	}
}

func (s *OrderService) invalidateClientList(ctx context.Context, clientID int64) {
	if !s.config.Features.EnableOrderCaching || s.orderCache == nil {
		return
	}
	if err := s.orderCache.InvalidateByClientID(ctx, clientID); err != nil {
		s.logger.WithField("client_id", clientID).Warn("Failed to invalidate client order cache")
	}
}

func (s *OrderService) invalidateOrder(ctx context.Context, orderID, clientID int64) {
	if !s.config.Features.EnableOrderCaching || s.orderCache == nil {
		return
	}
	if err := s.orderCache.Delete(ctx, orderID); err != nil {
		s.logger.WithField("order_id", orderID).Warn("Failed to drop cached order")
	}
	if err := s.orderCache.InvalidateByClientID(ctx, clientID); err != nil {
		s.logger.WithField("client_id", clientID).Warn("Failed to invalidate client order cache")
	}
}

// publishEvent emits a lifecycle event. Publish failures are logged, never
// surfaced: the order state in the database is already authoritative.
func (s *OrderService) publishEvent(ctx context.Context, publish func() error, orderID int64) {
	if !s.config.Features.EnableOrderEvents || s.eventPublisher == nil {
		return
	}
	if err := publish(); err != nil {
		s.logger.WithFields(logrus.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		}).Error("Failed to publish order event")
	}
}
