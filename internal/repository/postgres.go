package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shoplite/orders-service/internal/apperrors"
	"github.com/shoplite/orders-service/internal/models"
)

// PostgresOrderRepository implements OrderRepository using PostgreSQL.
type PostgresOrderRepository struct {
	db     *sql.DB
	logger *logrus.Entry
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository.
func NewPostgresOrderRepository(db *sql.DB, logger *logrus.Entry) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		db:     db,
		logger: logger.WithField("component", "order-repository"),
	}
}

// GetByID retrieves an order by its unique identifier.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	r.logger.WithField("order_id", id).Debug("Fetching order by ID")

	var order models.Order
	err := r.db.QueryRowContext(
		ctx,
		`SELECT id, product_id, client_id, purchase_quantity, order_date
		 FROM orders WHERE id = $1`,
		id,
	).Scan(&order.ID, &order.ProductID, &order.ClientID, &order.PurchaseQuantity, &order.OrderDate)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"order_id": id,
			"error":    err.Error(),
		}).Error("Failed to fetch order")
		return nil, err
	}

	return &order, nil
}

// GetByClientID retrieves all orders placed by a client, newest first.
func (r *PostgresOrderRepository) GetByClientID(ctx context.Context, clientID int64) ([]*models.Order, error) {
	r.logger.WithField("client_id", clientID).Debug("Fetching orders by client ID")

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, product_id, client_id, purchase_quantity, order_date
		 FROM orders WHERE client_id = $1 ORDER BY id DESC`,
		clientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		var order models.Order
		if err := rows.Scan(&order.ID, &order.ProductID, &order.ClientID, &order.PurchaseQuantity, &order.OrderDate); err != nil {
			return nil, err
		}
		orders = append(orders, &order)
	}

	return orders, rows.Err()
}

// Create inserts a new order. The ID is assigned by the database and the
// order date defaults to the insertion time in UTC.
func (r *PostgresOrderRepository) Create(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	r.logger.WithFields(logrus.Fields{
		"product_id": req.ProductID,
		"client_id":  req.ClientID,
	}).Debug("Creating order")

	order := &models.Order{
		ProductID:        req.ProductID,
		ClientID:         req.ClientID,
		PurchaseQuantity: req.PurchaseQuantity,
		OrderDate:        time.Now().UTC(),
	}

	err := r.db.QueryRowContext(
		ctx,
		`INSERT INTO orders (product_id, client_id, purchase_quantity, order_date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		order.ProductID, order.ClientID, order.PurchaseQuantity, order.OrderDate,
	).Scan(&order.ID)
	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"client_id": req.ClientID,
			"error":     err.Error(),
		}).Error("Failed to create order")
		return nil, err
	}

	r.logger.WithField("order_id", order.ID).Info("Order created")
	return order, nil
}

// Update fully replaces the mutable fields of an order.
func (r *PostgresOrderRepository) Update(ctx context.Context, id int64, req *models.UpdateOrderRequest) (*models.Order, error) {
	r.logger.WithField("order_id", id).Debug("Updating order")

	var order models.Order
	err := r.db.QueryRowContext(
		ctx,
		`UPDATE orders
		 SET product_id = $2, client_id = $3, purchase_quantity = $4
		 WHERE id = $1
		 RETURNING id, product_id, client_id, purchase_quantity, order_date`,
		id, req.ProductID, req.ClientID, req.PurchaseQuantity,
	).Scan(&order.ID, &order.ProductID, &order.ClientID, &order.PurchaseQuantity, &order.OrderDate)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"order_id": id,
			"error":    err.Error(),
		}).Error("Failed to update order")
		return nil, err
	}

	r.logger.WithField("order_id", id).Info("Order updated")
	return &order, nil
}

// Delete removes an order.
func (r *PostgresOrderRepository) Delete(ctx context.Context, id int64) error {
	r.logger.WithField("order_id", id).Debug("Deleting order")

	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"order_id": id,
			"error":    err.Error(),
		}).Error("Failed to delete order")
		return err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	r.logger.WithField("order_id", id).Info("Order deleted")
	return nil
}
