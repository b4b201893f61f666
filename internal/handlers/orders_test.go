package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/shoplite/orders-service/internal/apperrors"
	"github.com/shoplite/orders-service/internal/config"
	"github.com/shoplite/orders-service/internal/models"
)

// fakeOrderService returns canned results per method.
type fakeOrderService struct {
	details       *models.OrderDetails
	detailsErr    error
	orders        []*models.Order
	ordersErr     error
	order         *models.Order
	orderErr      error
	created       *models.Order
	createErr     error
	updated       *models.Order
	updateErr     error
	deleteErr     error
	lastOrderID   int64
	lastClientID  int64
	lastCreateReq *models.CreateOrderRequest
}

func (f *fakeOrderService) GetOrderDetails(ctx context.Context, orderID int64) (*models.OrderDetails, error) {
	f.lastOrderID = orderID
	return f.details, f.detailsErr
}

func (f *fakeOrderService) GetOrdersByClientID(ctx context.Context, clientID int64) ([]*models.Order, error) {
	f.lastClientID = clientID
	return f.orders, f.ordersErr
}

func (f *fakeOrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	f.lastOrderID = orderID
	return f.order, f.orderErr
}

func (f *fakeOrderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	f.lastCreateReq = req
	return f.created, f.createErr
}

func (f *fakeOrderService) UpdateOrder(ctx context.Context, orderID int64, req *models.UpdateOrderRequest) (*models.Order, error) {
	f.lastOrderID = orderID
	return f.updated, f.updateErr
}

func (f *fakeOrderService) DeleteOrder(ctx context.Context, orderID int64) error {
	f.lastOrderID = orderID
	return f.deleteErr
}

func setupRouter(svc *fakeOrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	h := NewHandlers(svc, &config.Config{}, logrus.NewEntry(logger))

	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/version", h.Version)
	api := router.Group("/api/orders")
	{
		api.GET("/details/:id", h.GetOrderDetails)
		api.GET("/client/:client_id", h.GetClientOrders)
		api.GET("/:id", h.GetOrder)
		api.POST("", h.CreateOrder)
		api.PUT("/:id", h.UpdateOrder)
		api.DELETE("/:id", h.DeleteOrder)
	}
	return router
}

func doRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetOrderDetailsSuccess(t *testing.T) {
	svc := &fakeOrderService{
		details: &models.OrderDetails{
			OrderID:          42,
			ProductID:        7,
			ClientID:         3,
			PurchaseQuantity: 2,
			OrderDate:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			ProductName:      "Widget",
			TotalPrice:       decimal.RequireFromString("20.00"),
			Name:             "Ada",
			Email:            "a@x.com",
		},
	}
	router := setupRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/orders/details/42", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if svc.lastOrderID != 42 {
		t.Errorf("expected service called with order ID 42, got %d", svc.lastOrderID)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["product_name"] != "Widget" {
		t.Errorf("expected product_name Widget, got %v", resp["product_name"])
	}
	if resp["total_price"] != "20.00" {
		t.Errorf("expected total_price 20.00, got %v", resp["total_price"])
	}
	if resp["name"] != "Ada" {
		t.Errorf("expected name Ada, got %v", resp["name"])
	}
}

func TestGetOrderDetailsNonNumericID(t *testing.T) {
	svc := &fakeOrderService{}
	router := setupRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/orders/details/abc", nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if svc.lastOrderID != 0 {
		t.Error("service must not be called for a non-numeric ID")
	}
}

func TestGetOrderDetailsErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"not found", apperrors.ErrNotFound, http.StatusNotFound, "not found"},
		{"validation", apperrors.NewValidationError("order_id", "order ID must be positive"), http.StatusBadRequest, "order ID must be positive"},
		{"upstream", apperrors.NewUpstreamError("product", errors.New("socket timeout /10.0.0.3")), http.StatusServiceUnavailable, "upstream service unavailable"},
		{"unexpected", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeOrderService{detailsErr: tt.err}
			router := setupRouter(svc)

			w := doRequest(router, http.MethodGet, "/api/orders/details/1", nil)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}

			var resp map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}
			if resp["error"] != tt.wantError {
				t.Errorf("expected error %q, got %v", tt.wantError, resp["error"])
			}
		})
	}
}

func TestErrorResponsesDoNotLeakDetail(t *testing.T) {
	svc := &fakeOrderService{
		detailsErr: apperrors.NewUpstreamError("product", errors.New("dial tcp 10.0.0.3:8081: i/o timeout")),
	}
	router := setupRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/orders/details/1", nil)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("10.0.0.3")) {
		t.Error("response body leaked upstream address")
	}
}

func TestGetClientOrders(t *testing.T) {
	svc := &fakeOrderService{
		orders: []*models.Order{
			{ID: 1, ProductID: 7, ClientID: 3, PurchaseQuantity: 2},
			{ID: 2, ProductID: 8, ClientID: 3, PurchaseQuantity: 1},
		},
	}
	router := setupRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/orders/client/3", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if svc.lastClientID != 3 {
		t.Errorf("expected service called with client ID 3, got %d", svc.lastClientID)
	}

	var orders []models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &orders); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(orders) != 2 {
		t.Errorf("expected 2 orders, got %d", len(orders))
	}
}

func TestGetClientOrdersNotFound(t *testing.T) {
	svc := &fakeOrderService{ordersErr: apperrors.ErrNotFound}
	router := setupRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/orders/client/12", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestGetOrder(t *testing.T) {
	svc := &fakeOrderService{
		order: &models.Order{ID: 5, ProductID: 7, ClientID: 3, PurchaseQuantity: 2},
	}
	router := setupRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/orders/5", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var order models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if order.ID != 5 {
		t.Errorf("expected order ID 5, got %d", order.ID)
	}
}

func TestCreateOrder(t *testing.T) {
	svc := &fakeOrderService{
		created: &models.Order{ID: 1, ProductID: 7, ClientID: 3, PurchaseQuantity: 2},
	}
	router := setupRouter(svc)

	body := []byte(`{"product_id":7,"client_id":3,"purchase_quantity":2}`)
	w := doRequest(router, http.MethodPost, "/api/orders", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}
	if svc.lastCreateReq == nil || svc.lastCreateReq.ProductID != 7 {
		t.Error("expected create request forwarded to the service")
	}
}

func TestCreateOrderInvalidBody(t *testing.T) {
	svc := &fakeOrderService{}
	router := setupRouter(svc)

	w := doRequest(router, http.MethodPost, "/api/orders", []byte(`{not json`))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if svc.lastCreateReq != nil {
		t.Error("service must not be called for a malformed body")
	}
}

func TestCreateOrderValidationFailure(t *testing.T) {
	svc := &fakeOrderService{
		createErr: apperrors.NewValidationError("purchase_quantity", "purchase quantity must be positive"),
	}
	router := setupRouter(svc)

	body := []byte(`{"product_id":7,"client_id":3,"purchase_quantity":0}`)
	w := doRequest(router, http.MethodPost, "/api/orders", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["field"] != "purchase_quantity" {
		t.Errorf("expected field purchase_quantity, got %v", resp["field"])
	}
}

func TestUpdateOrder(t *testing.T) {
	svc := &fakeOrderService{
		updated: &models.Order{ID: 9, ProductID: 8, ClientID: 3, PurchaseQuantity: 5},
	}
	router := setupRouter(svc)

	body := []byte(`{"product_id":8,"client_id":3,"purchase_quantity":5}`)
	w := doRequest(router, http.MethodPut, "/api/orders/9", body)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if svc.lastOrderID != 9 {
		t.Errorf("expected service called with order ID 9, got %d", svc.lastOrderID)
	}
}

func TestDeleteOrder(t *testing.T) {
	svc := &fakeOrderService{}
	router := setupRouter(svc)

	w := doRequest(router, http.MethodDelete, "/api/orders/9", nil)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	if svc.lastOrderID != 9 {
		t.Errorf("expected service called with order ID 9, got %d", svc.lastOrderID)
	}
}

func TestDeleteOrderNotFound(t *testing.T) {
	svc := &fakeOrderService{deleteErr: apperrors.ErrNotFound}
	router := setupRouter(svc)

	w := doRequest(router, http.MethodDelete, "/api/orders/99", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	router := setupRouter(&fakeOrderService{})

	w := doRequest(router, http.MethodGet, "/health", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("expected status healthy, got %q", resp["status"])
	}
}

func TestVersion(t *testing.T) {
	router := setupRouter(&fakeOrderService{})

	w := doRequest(router, http.MethodGet, "/version", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["service"] != "orders-service" {
		t.Errorf("expected service orders-service, got %q", resp["service"])
	}
	if resp["go_version"] == "" {
		t.Error("expected go_version to be populated")
	}
}
