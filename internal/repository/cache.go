package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/shoplite/orders-service/internal/config"
	"github.com/shoplite/orders-service/internal/models"
)

const (
	orderKeyPrefix     = "order:"
	clientOrdersPrefix = "client_orders:"
	defaultCacheTTL    = 5 * time.Minute
)

// RedisOrderCache implements OrderCache using Redis.
type RedisOrderCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Entry
}

// NewRedisOrderCache creates a new Redis-based order cache.
func NewRedisOrderCache(cfg config.RedisConfig, logger *logrus.Entry) *RedisOrderCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	return &RedisOrderCache{
		client: client,
		ttl:    ttl,
		logger: logger.WithField("component", "order-cache"),
	}
}

// Get retrieves an order from cache. A miss returns (nil, nil).
func (c *RedisOrderCache) Get(ctx context.Context, id int64) (*models.Order, error) {
	key := fmt.Sprintf("%s%d", orderKeyPrefix, id)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.WithField("order_id", id).Debug("Cache miss")
		return nil, nil
	}
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"order_id": id,
			"error":    err.Error(),
		}).Error("Cache get error")
		return nil, err
	}

	var order models.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, err
	}

	c.logger.WithField("order_id", id).Debug("Cache hit")
	return &order, nil
}

// Set stores an order in cache.
func (c *RedisOrderCache) Set(ctx context.Context, order *models.Order) error {
	key := fmt.Sprintf("%s%d", orderKeyPrefix, order.ID)

	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WithFields(logrus.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		}).Error("Cache set error")
		return err
	}

	return nil
}

// Delete removes an order from cache.
func (c *RedisOrderCache) Delete(ctx context.Context, id int64) error {
	key := fmt.Sprintf("%s%d", orderKeyPrefix, id)
	return c.client.Del(ctx, key).Err()
}

// GetByClientID retrieves cached orders for a client. A miss returns (nil, nil).
func (c *RedisOrderCache) GetByClientID(ctx context.Context, clientID int64) ([]*models.Order, error) {
	key := fmt.Sprintf("%s%d", clientOrdersPrefix, clientID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var orders []*models.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// SetByClientID caches the order list for a client.
func (c *RedisOrderCache) SetByClientID(ctx context.Context, clientID int64, orders []*models.Order) error {
	key := fmt.Sprintf("%s%d", clientOrdersPrefix, clientID)

	data, err := json.Marshal(orders)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// InvalidateByClientID drops the cached order list for a client.
func (c *RedisOrderCache) InvalidateByClientID(ctx context.Context, clientID int64) error {
	key := fmt.Sprintf("%s%d", clientOrdersPrefix, clientID)
	return c.client.Del(ctx, key).Err()
}
