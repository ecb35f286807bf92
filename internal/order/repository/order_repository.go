package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"comanda/internal/domain"
	"comanda/internal/errors"
)

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

// Insert persists the order header and all item snapshots inside the given
// transaction. It is the single persistence write of a submission.
func (r *MySQLOrderRepository) Insert(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	query := `
		INSERT INTO Orders (id, tenantSlug, customerName, customerPhone, customerRef,
		                    subtotal, couponCode, discount, total,
		                    fulfillmentMode, deliveryAddress, status, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(ctx, query,
		order.ID, order.TenantSlug, order.CustomerName, order.CustomerPhone, order.CustomerRef,
		order.Subtotal, order.CouponCode, order.Discount, order.Total,
		string(order.FulfillmentMode), order.DeliveryAddress, string(order.Status), order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	itemQuery := `INSERT INTO OrderItems (orderId, title, unitPrice, quantity) VALUES (?, ?, ?, ?)`
	for _, item := range order.Items {
		if _, err := tx.ExecContext(ctx, itemQuery, order.ID, item.Title, item.UnitPrice, item.Quantity); err != nil {
			return fmt.Errorf("inserting order item: %w", err)
		}
	}

	return nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, tenantSlug, customerName, customerPhone, customerRef,
		       subtotal, couponCode, discount, total,
		       fulfillmentMode, deliveryAddress, status, createdAt
		FROM Orders
		WHERE id = ?
	`

	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *MySQLOrderRepository) ListByTenant(ctx context.Context, tenantSlug string, limit int) ([]domain.Order, error) {
	query := `
		SELECT id, tenantSlug, customerName, customerPhone, customerRef,
		       subtotal, couponCode, discount, total,
		       fulfillmentMode, deliveryAddress, status, createdAt
		FROM Orders
		WHERE tenantSlug = ?
		ORDER BY createdAt DESC
		LIMIT ?
	`

	return r.queryOrders(ctx, query, tenantSlug, limit)
}

func (r *MySQLOrderRepository) ListByDateRange(ctx context.Context, tenantSlug string, from, to time.Time) ([]domain.Order, error) {
	query := `
		SELECT id, tenantSlug, customerName, customerPhone, customerRef,
		       subtotal, couponCode, discount, total,
		       fulfillmentMode, deliveryAddress, status, createdAt
		FROM Orders
		WHERE tenantSlug = ? AND createdAt >= ? AND createdAt < ?
		ORDER BY createdAt DESC
	`

	return r.queryOrders(ctx, query, tenantSlug, from, to)
}

// UpdateStatusCAS moves the order from one status to another, conditioned on
// the stored status still being the one the caller observed. A concurrent
// writer that got there first surfaces as errors.ErrStatusConflict, never as
// a double transition.
func (r *MySQLOrderRepository) UpdateStatusCAS(ctx context.Context, id string, from, to domain.Status) error {
	query := `UPDATE Orders SET status = ? WHERE id = ? AND status = ?`

	result, err := r.db.ExecContext(ctx, query, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.ErrStatusConflict
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *MySQLOrderRepository) scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var mode, status string

	err := row.Scan(
		&order.ID, &order.TenantSlug, &order.CustomerName, &order.CustomerPhone, &order.CustomerRef,
		&order.Subtotal, &order.CouponCode, &order.Discount, &order.Total,
		&mode, &order.DeliveryAddress, &status, &order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.FulfillmentMode = domain.FulfillmentMode(mode)
	parsed, ok := domain.ParseStatus(status)
	if !ok {
		return nil, errors.NewInternalError(fmt.Sprintf("order %s has unknown status %q", order.ID, status), nil)
	}
	order.Status = parsed

	return &order, nil
}

func (r *MySQLOrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func (r *MySQLOrderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	query := `SELECT title, unitPrice, quantity FROM OrderItems WHERE orderId = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.Title, &item.UnitPrice, &item.Quantity); err != nil {
			return fmt.Errorf("scanning order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}
