package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/linemk/storefront/internal/domain/models"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")
)

const orderColumns = `id, user_id, COALESCE(ref_code, ''), start_date, ordered_date, ordered, billing_address_id, payment_id`

const orderItemColumns = `oi.id, oi.order_id, oi.user_id, oi.quantity, oi.ordered, ` + itemColumns

// OrderStorage описывает методы для работы с заказами и корзиной.
type OrderStorage interface {
	// FindOrdersByUser возвращает все заказы пользователя вместе с позициями.
	FindOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error)
	// FindActiveCart возвращает незавершённый заказ пользователя или ErrOrderNotFound.
	FindActiveCart(ctx context.Context, userID int64) (*models.Order, error)
	// LockActiveCartTx получает корзину с блокировкой строки заказа до конца транзакции.
	LockActiveCartTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.Order, error)
	// CreateCartTx создаёт корзину или, при гонке, возвращает созданную другой транзакцией.
	CreateCartTx(ctx context.Context, tx *sql.Tx, userID int64, startDate time.Time) (*models.Order, error)
	CreateOrderItemTx(ctx context.Context, tx *sql.Tx, orderID, userID, itemID int64, quantity int) error
	UpdateOrderItemQuantityTx(ctx context.Context, tx *sql.Tx, orderItemID int64, quantity int) error
	DeleteOrderItemTx(ctx context.Context, tx *sql.Tx, orderItemID int64) error
	SetBillingAddressTx(ctx context.Context, tx *sql.Tx, orderID, addressID int64) error
	// CompleteOrderTx помечает заказ и его позиции оформленными.
	CompleteOrderTx(ctx context.Context, tx *sql.Tx, orderID, paymentID int64, refCode string, orderedAt time.Time) error
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func (r *orderRepository) FindOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	index := make(map[int64]int)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		index[order.ID] = len(orders)
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	lines, err := queryOrderItems(ctx, r.db, "oi.user_id = $1", userID)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if i, ok := index[line.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, line)
		}
	}
	return orders, nil
}

func (r *orderRepository) FindActiveCart(ctx context.Context, userID int64) (*models.Order, error) {
	return findActiveCart(ctx, r.db, userID, false)
}

func (r *orderRepository) LockActiveCartTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.Order, error) {
	return findActiveCart(ctx, tx, userID, true)
}

func findActiveCart(ctx context.Context, q querier, userID int64, forUpdate bool) (*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1 AND NOT ordered
		ORDER BY id
		LIMIT 1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	order, err := scanOrder(q.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	order.Items, err = queryOrderItems(ctx, q, "oi.order_id = $1", order.ID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// queryOrderItems выбирает позиции вместе с товарами в порядке добавления
func queryOrderItems(ctx context.Context, q querier, where string, arg int64) ([]models.OrderItem, error) {
	query := `SELECT ` + orderItemColumns + `
		FROM order_items oi
		JOIN items i ON oi.item_id = i.id
		WHERE ` + where + `
		ORDER BY oi.id`
	rows, err := q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var lines []models.OrderItem
	for rows.Next() {
		var oi models.OrderItem
		it := &oi.Item
		if err := rows.Scan(
			&oi.ID, &oi.OrderID, &oi.UserID, &oi.Quantity, &oi.Ordered,
			&it.ID, &it.Title, &it.Price, &it.DiscountPrice, &it.CategoryID,
			&it.Label, &it.Slug, &it.StockNo, &it.Description, &it.Image, &it.IsActive,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		lines = append(lines, oi)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func scanOrder(row scanner) (*models.Order, error) {
	var (
		order       models.Order
		orderedDate sql.NullTime
		billingID   sql.NullInt64
		paymentID   sql.NullInt64
	)
	if err := row.Scan(&order.ID, &order.UserID, &order.RefCode, &order.StartDate,
		&orderedDate, &order.Ordered, &billingID, &paymentID); err != nil {
		return nil, err
	}
	if orderedDate.Valid {
		t := orderedDate.Time
		order.OrderedDate = &t
	}
	order.BillingAddressID = nullInt64Ptr(billingID)
	order.PaymentID = nullInt64Ptr(paymentID)
	return &order, nil
}

// CreateCartTx создаёт корзину. Если параллельная транзакция успела создать её первой,
// вставка ничего не делает и возвращается уже существующая корзина под блокировкой.
func (r *orderRepository) CreateCartTx(ctx context.Context, tx *sql.Tx, userID int64, startDate time.Time) (*models.Order, error) {
	query := `INSERT INTO orders (user_id, start_date, ordered) VALUES ($1, $2, FALSE)
		ON CONFLICT (user_id) WHERE NOT ordered DO NOTHING
		RETURNING id`
	var id int64
	err := tx.QueryRowContext(ctx, query, userID, startDate).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return findActiveCart(ctx, tx, userID, true)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &models.Order{ID: id, UserID: userID, StartDate: startDate}, nil
}

func (r *orderRepository) CreateOrderItemTx(ctx context.Context, tx *sql.Tx, orderID, userID, itemID int64, quantity int) error {
	query := `INSERT INTO order_items (order_id, user_id, item_id, quantity, ordered) VALUES ($1, $2, $3, $4, FALSE)`
	if _, err := tx.ExecContext(ctx, query, orderID, userID, itemID, quantity); err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

func (r *orderRepository) UpdateOrderItemQuantityTx(ctx context.Context, tx *sql.Tx, orderItemID int64, quantity int) error {
	res, err := tx.ExecContext(ctx, "UPDATE order_items SET quantity = $1 WHERE id = $2", quantity, orderItemID)
	if err != nil {
		return fmt.Errorf("failed to update order item: %w", err)
	}
	return expectAffected(res, ErrOrderItemNotFound)
}

func (r *orderRepository) DeleteOrderItemTx(ctx context.Context, tx *sql.Tx, orderItemID int64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM order_items WHERE id = $1", orderItemID)
	if err != nil {
		return fmt.Errorf("failed to delete order item: %w", err)
	}
	return expectAffected(res, ErrOrderItemNotFound)
}

func (r *orderRepository) SetBillingAddressTx(ctx context.Context, tx *sql.Tx, orderID, addressID int64) error {
	res, err := tx.ExecContext(ctx, "UPDATE orders SET billing_address_id = $1 WHERE id = $2", addressID, orderID)
	if err != nil {
		return fmt.Errorf("failed to set billing address: %w", err)
	}
	return expectAffected(res, ErrOrderNotFound)
}

func (r *orderRepository) CompleteOrderTx(ctx context.Context, tx *sql.Tx, orderID, paymentID int64, refCode string, orderedAt time.Time) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE orders SET ordered = TRUE, ordered_date = $1, payment_id = $2, ref_code = $3 WHERE id = $4",
		orderedAt, paymentID, refCode, orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete order: %w", err)
	}
	if err := expectAffected(res, ErrOrderNotFound); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "UPDATE order_items SET ordered = TRUE WHERE order_id = $1", orderID); err != nil {
		return fmt.Errorf("failed to mark order items: %w", err)
	}
	return nil
}

func expectAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
