package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shoplite/orders-service/internal/config"
	"github.com/shoplite/orders-service/internal/models"
)

// LookupClient fetches read-only snapshots of externally owned entities.
type LookupClient interface {
	GetProduct(ctx context.Context, productID int64) (*models.ProductSnapshot, error)
	GetUser(ctx context.Context, userID int64) (*models.UserSnapshot, error)
}

// StatusError is a definitive non-2xx answer from a downstream service. It is
// not transient: the service responded, the data is simply not available.
type StatusError struct {
	Service    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s service returned status %d", e.Service, e.StatusCode)
}

// IsTransient reports whether err is a timeout-class failure worth retrying.
// Clean non-2xx responses and malformed bodies are definitive and are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// HTTPGatewayClient implements LookupClient against the API gateway. Each call
// issues exactly one request; retrying is the caller's decision.
type HTTPGatewayClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *logrus.Entry
}

// NewHTTPGatewayClient creates a lookup client for the configured gateway.
func NewHTTPGatewayClient(cfg config.ServiceConfig, logger *logrus.Entry) *HTTPGatewayClient {
	return &HTTPGatewayClient{
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.WithField("component", "gateway-client"),
	}
}

// GetProduct retrieves a product snapshot by ID.
func (c *HTTPGatewayClient) GetProduct(ctx context.Context, productID int64) (*models.ProductSnapshot, error) {
	c.logger.WithField("product_id", productID).Debug("Fetching product")

	var product models.ProductSnapshot
	url := fmt.Sprintf("%s/api/products/%d", c.baseURL, productID)
	if err := c.getJSON(ctx, "product", url, &product); err != nil {
		return nil, err
	}

	return &product, nil
}

// GetUser retrieves a user snapshot by ID.
func (c *HTTPGatewayClient) GetUser(ctx context.Context, userID int64) (*models.UserSnapshot, error) {
	c.logger.WithField("user_id", userID).Debug("Fetching user")

	var user models.UserSnapshot
	url := fmt.Sprintf("%s/api/users/%d", c.baseURL, userID)
	if err := c.getJSON(ctx, "user", url, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (c *HTTPGatewayClient) getJSON(ctx context.Context, service, url string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"service": service,
			"url":     url,
			"error":   err.Error(),
		}).Warn("Lookup request failed")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.WithFields(logrus.Fields{
			"service":     service,
			"status_code": resp.StatusCode,
		}).Warn("Lookup returned non-success status")
		return &StatusError{Service: service, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", service, err)
	}

	return nil
}
