package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/karantec/EcommerceMern/internal/entity"
)

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db}
}

var _ OrderRepository = (*MySQLOrderRepository)(nil)

const orderColumns = `id, user_id, payment_method, payment_order_id,
	items_price, shipping_price, tax_price, total_price, status,
	is_paid, paid_at, payment_id, payment_status, payment_update_time, payer_email,
	is_delivered, delivered_at,
	ship_address, ship_city, ship_postal_code, ship_country, created_at`

func (r *MySQLOrderRepository) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	orderQuery := `INSERT INTO orders (user_id, payment_method, items_price, shipping_price, tax_price, total_price,
		status, is_paid, is_delivered, ship_address, ship_city, ship_postal_code, ship_country, idempotency_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, orderQuery,
		order.UserID, order.PaymentMethod,
		order.ItemsPrice, order.ShippingPrice, order.TaxPrice, order.TotalPrice,
		order.Status,
		order.ShippingAddress.Address, order.ShippingAddress.City, order.ShippingAddress.PostalCode, order.ShippingAddress.Country,
		nullString(order.IdempotencyKey), order.CreatedAt)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Batch insert the item snapshot.
	itemQuery := `INSERT INTO order_items (order_id, product_id, name, image, price, qty) VALUES `
	var values []interface{}
	for _, item := range order.OrderItems {
		itemQuery += "(?, ?, ?, ?, ?, ?),"
		values = append(values, orderID, item.ProductID, item.Name, item.Image, item.Price, item.Qty)
	}
	itemQuery = itemQuery[:len(itemQuery)-1]

	_, err = tx.ExecContext(ctx, itemQuery, values...)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	err = tx.Commit()
	if err != nil {
		return nil, err
	}

	order.ID = int(orderID)
	return order, nil
}

func (r *MySQLOrderRepository) GetOrderByID(ctx context.Context, id int) (*entity.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	return r.scanOrder(ctx, row)
}

func (r *MySQLOrderRepository) GetOrderByPaymentOrderID(ctx context.Context, paymentOrderID string) (*entity.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE payment_order_id = ?`, paymentOrderID)
	return r.scanOrder(ctx, row)
}

func (r *MySQLOrderRepository) GetOrdersByUser(ctx context.Context, userID int) ([]entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectOrders(ctx, rows)
}

func (r *MySQLOrderRepository) SetPaymentOrderID(ctx context.Context, id int, paymentOrderID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET payment_order_id = ? WHERE id = ?`, paymentOrderID, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetOrderByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// MarkPaid is the single conditional write for the unpaid -> paid edge.
// A duplicate callback, or one racing the expiry sweep, affects zero rows
// and surfaces as ErrConflict for the caller to resolve.
func (r *MySQLOrderRepository) MarkPaid(ctx context.Context, id int, paidAt time.Time, result entity.PaymentResult) error {
	query := `UPDATE orders SET is_paid = 1, status = ?, paid_at = ?,
		payment_id = ?, payment_status = ?, payment_update_time = ?, payer_email = ?
		WHERE id = ? AND is_paid = 0 AND status = ?`
	res, err := r.db.ExecContext(ctx, query,
		entity.OrderStatusPaid, paidAt,
		result.ID, result.Status, result.UpdateTime, result.PayerEmail,
		id, entity.OrderStatusAwaitingPayment)
	if err != nil {
		return err
	}
	return r.conditionalResult(ctx, res, id)
}

func (r *MySQLOrderRepository) MarkDelivered(ctx context.Context, id int, deliveredAt time.Time) error {
	query := `UPDATE orders SET is_delivered = 1, status = ?, delivered_at = ?
		WHERE id = ? AND is_paid = 1 AND is_delivered = 0`
	res, err := r.db.ExecContext(ctx, query, entity.OrderStatusDelivered, deliveredAt, id)
	if err != nil {
		return err
	}
	return r.conditionalResult(ctx, res, id)
}

func (r *MySQLOrderRepository) CancelOrder(ctx context.Context, id int) error {
	query := `UPDATE orders SET status = ? WHERE id = ? AND is_paid = 0 AND status = ?`
	res, err := r.db.ExecContext(ctx, query, entity.OrderStatusCancelled, id, entity.OrderStatusAwaitingPayment)
	if err != nil {
		return err
	}
	return r.conditionalResult(ctx, res, id)
}

func (r *MySQLOrderRepository) GetExpiredOrders(ctx context.Context, cutoff time.Time) ([]entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE is_paid = 0 AND status = ? AND created_at < ?`
	rows, err := r.db.QueryContext(ctx, query, entity.OrderStatusAwaitingPayment, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectOrders(ctx, rows)
}

// conditionalResult distinguishes a missing order from a failed precondition.
func (r *MySQLOrderRepository) conditionalResult(ctx context.Context, res sql.Result, id int) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *MySQLOrderRepository) scanOrder(ctx context.Context, row rowScanner) (*entity.Order, error) {
	order := &entity.Order{}
	var (
		paymentOrderID    sql.NullString
		paidAt            sql.NullTime
		paymentID         sql.NullString
		paymentStatus     sql.NullString
		paymentUpdateTime sql.NullString
		payerEmail        sql.NullString
		deliveredAt       sql.NullTime
	)

	err := row.Scan(&order.ID, &order.UserID, &order.PaymentMethod, &paymentOrderID,
		&order.ItemsPrice, &order.ShippingPrice, &order.TaxPrice, &order.TotalPrice, &order.Status,
		&order.IsPaid, &paidAt, &paymentID, &paymentStatus, &paymentUpdateTime, &payerEmail,
		&order.IsDelivered, &deliveredAt,
		&order.ShippingAddress.Address, &order.ShippingAddress.City, &order.ShippingAddress.PostalCode, &order.ShippingAddress.Country,
		&order.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	order.PaymentOrderID = paymentOrderID.String
	if paidAt.Valid {
		t := paidAt.Time
		order.PaidAt = &t
	}
	if paymentID.Valid {
		order.PaymentResult = &entity.PaymentResult{
			ID:         paymentID.String,
			Status:     paymentStatus.String,
			UpdateTime: paymentUpdateTime.String,
			PayerEmail: payerEmail.String,
		}
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time
		order.DeliveredAt = &t
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *MySQLOrderRepository) collectOrders(ctx context.Context, rows *sql.Rows) ([]entity.Order, error) {
	var orders []entity.Order
	for rows.Next() {
		order, err := r.scanOrder(ctx, rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

func (r *MySQLOrderRepository) loadItems(ctx context.Context, order *entity.Order) error {
	query := `SELECT product_id, name, image, price, qty FROM order_items WHERE order_id = ?`
	rows, err := r.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item entity.OrderItem
		err := rows.Scan(&item.ProductID, &item.Name, &item.Image, &item.Price, &item.Qty)
		if err != nil {
			return err
		}
		order.OrderItems = append(order.OrderItems, item)
	}
	return rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
