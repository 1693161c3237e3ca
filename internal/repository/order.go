package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/foodking/internal/domain/order"
)

const (
	orderColumns = `o.id, o.customer_id, c.name, c.phone, o.items, o.total_amount, o.delivery_address,
		o.lat, o.lng, o.payment_method, o.payment_status, o.gateway_order_id, o.gateway_payment_id,
		o.status, o.rejection_reason, o.created_at, o.updated_at`

	orderFrom = ` FROM orders o JOIN customers c ON c.id = o.customer_id`

	createOrderSQL = `INSERT INTO orders (id, customer_id, items, total_amount, delivery_address, lat, lng,
		payment_method, payment_status, gateway_order_id, gateway_payment_id, status, rejection_reason,
		created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	getOrderByIDSQL = `SELECT ` + orderColumns + orderFrom + ` WHERE o.id = $1`

	// Nil patch fields arrive as NULL and keep the stored value.
	updateOrderSQL = `UPDATE orders SET
		status = COALESCE($2, status),
		rejection_reason = COALESCE($3, rejection_reason),
		payment_status = COALESCE($4, payment_status),
		gateway_order_id = COALESCE($5, gateway_order_id),
		gateway_payment_id = COALESCE($6, gateway_payment_id),
		updated_at = $7
		WHERE id = $1`

	listOrdersSQL = `SELECT ` + orderColumns + orderFrom + `
		WHERE ($1::text = '' OR o.status = $1)
		ORDER BY o.created_at DESC
		LIMIT $2 OFFSET $3`

	countOrdersSQL = `SELECT count(*) FROM orders WHERE ($1::text = '' OR status = $1)`

	listOrdersByCustomerSQL = `SELECT ` + orderColumns + orderFrom + `
		WHERE o.customer_id = $1
		ORDER BY o.created_at DESC`

	orderStatsSQL = `SELECT
		count(*) FILTER (WHERE created_at >= $1),
		count(*) FILTER (WHERE status = 'Pending'),
		count(*) FILTER (WHERE status = 'Accepted'),
		count(*) FILTER (WHERE status = 'Preparing'),
		count(*) FILTER (WHERE status = 'Out for Delivery'),
		count(*) FILTER (WHERE status = 'Delivered' AND created_at >= $1),
		COALESCE(sum(total_amount) FILTER (WHERE created_at >= $1 AND status <> 'Rejected'), 0)
		FROM orders`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool, now: time.Now}
}

// Create persists a new order. The order lines are serialized to JSON for
// storage in the JSONB column.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	linesJSON, err := json.Marshal(o.Lines)
	if err != nil {
		return fmt.Errorf("marshaling order lines: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.CustomerID, linesJSON, o.TotalAmount, o.DeliveryAddress,
		o.CustomerLocation.Lat, o.CustomerLocation.Lng,
		string(o.PaymentMethod), string(o.PaymentStatus), o.GatewayOrderID, o.GatewayPaymentID,
		string(o.Status), o.RejectionReason, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	return nil
}

// GetByID returns a single order with its customer's name and phone.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// Update applies p and returns the stored order.
func (r *OrderRepository) Update(ctx context.Context, id string, p order.Patch) (*order.Order, error) {
	var status, paymentStatus *string
	if p.Status != nil {
		s := string(*p.Status)
		status = &s
	}
	if p.PaymentStatus != nil {
		s := string(*p.PaymentStatus)
		paymentStatus = &s
	}

	tag, err := r.pool.Exec(ctx, updateOrderSQL,
		id, status, p.RejectionReason, paymentStatus, p.GatewayOrderID, p.GatewayPaymentID, r.now(),
	)
	if err != nil {
		return nil, fmt.Errorf("updating order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, order.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

// List returns a page of orders newest first, plus the total matching count.
func (r *OrderRepository) List(ctx context.Context, f order.ListFilter) ([]order.Order, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, countOrdersSQL, string(f.Status)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting orders: %w", err)
	}

	rows, err := r.pool.Query(ctx, listOrdersSQL, string(f.Status), f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders: %w", err)
	}
	return orders, total, nil
}

// ListByCustomer returns every order of a customer, newest first.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByCustomerSQL, customerID)
	if err != nil {
		return nil, fmt.Errorf("listing customer orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// Stats computes the dashboard summary in a single pass over orders.
func (r *OrderRepository) Stats(ctx context.Context, since time.Time) (*order.Stats, error) {
	var s order.Stats
	err := r.pool.QueryRow(ctx, orderStatsSQL, since).Scan(
		&s.TodayOrders, &s.PendingOrders, &s.AcceptedOrders, &s.PreparingOrders,
		&s.OutForDeliveryOrders, &s.DeliveredToday, &s.TodayRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("computing order stats: %w", err)
	}
	return &s, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o                             order.Order
		linesJSON                     []byte
		method, paymentStatus, status string
	)
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.CustomerName, &o.CustomerPhone, &linesJSON, &o.TotalAmount,
		&o.DeliveryAddress, &o.CustomerLocation.Lat, &o.CustomerLocation.Lng,
		&method, &paymentStatus, &o.GatewayOrderID, &o.GatewayPaymentID,
		&status, &o.RejectionReason, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return order.Order{}, fmt.Errorf("scanning order: %w", err)
	}
	if err := json.Unmarshal(linesJSON, &o.Lines); err != nil {
		return order.Order{}, fmt.Errorf("unmarshaling order %q lines: %w", o.ID, err)
	}
	o.PaymentMethod = order.PaymentMethod(method)
	o.PaymentStatus = order.PaymentStatus(paymentStatus)
	o.Status = order.Status(status)
	return o, nil
}
