// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"minishop/internal/models"
)

// ErrInvalidTransition is returned when an order status change is not
// allowed from the order's current status.
var ErrInvalidTransition = errors.New("invalid order status transition")

// OrderStore handles order and order-item database operations.
type OrderStore struct {
	db *sql.DB
}

// NewOrderStore returns a new OrderStore.
func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

const orderColumns = `id, telegram_user_id, customer_name, phone, delivery_note, status, total, created_at, updated_at`

func scanOrder(scanner interface{ Scan(...any) error }) (*models.Order, error) {
	var o models.Order
	err := scanner.Scan(
		&o.ID, &o.TelegramUserID, &o.CustomerName, &o.Phone, &o.DeliveryNote,
		&o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts an order and its line items in one transaction and
// returns the stored order with items attached.
func (s *OrderStore) Create(o *models.Order, items []models.OrderItem) (*models.Order, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		INSERT INTO orders (telegram_user_id, customer_name, phone, delivery_note, status, total)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+orderColumns,
		o.TelegramUserID, o.CustomerName, o.Phone, o.DeliveryNote, models.OrderStatusNew, o.Total,
	)
	created, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO order_items (order_id, product_id, name, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`)
	if err != nil {
		return nil, fmt.Errorf("prepare order items: %w", err)
	}
	defer stmt.Close()

	for i := range items {
		items[i].OrderID = created.ID
		err := stmt.QueryRow(
			created.ID, items[i].ProductID, items[i].Name, items[i].UnitPrice, items[i].Quantity,
		).Scan(&items[i].ID)
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create order commit: %w", err)
	}

	created.Items = items
	return created, nil
}

// FindByID retrieves an order with its items. Returns nil if not found.
func (s *OrderStore) FindByID(id uuid.UUID) (*models.Order, error) {
	row := s.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order by id: %w", err)
	}
	if err := s.attachItems(o); err != nil {
		return nil, err
	}
	return o, nil
}

// ListByUser returns a user's orders with items, newest first.
func (s *OrderStore) ListByUser(telegramUserID int64) ([]models.Order, error) {
	return s.list(`SELECT `+orderColumns+` FROM orders WHERE telegram_user_id = $1 ORDER BY created_at DESC`, telegramUserID)
}

// List returns orders for the admin UI, optionally filtered by status.
// Pass an empty status to list everything.
func (s *OrderStore) List(status models.OrderStatus) ([]models.Order, error) {
	if status == "" {
		return s.list(`SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`)
	}
	return s.list(`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at DESC`, status)
}

func (s *OrderStore) list(query string, args ...any) ([]models.Order, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := s.attachItems(&orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// attachItems loads line items into the order's Items field.
func (s *OrderStore) attachItems(o *models.Order) error {
	rows, err := s.db.Query(`
		SELECT id, order_id, product_id, name, unit_price, quantity
		FROM order_items WHERE order_id = $1 ORDER BY name
	`, o.ID)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

// UpdateStatus moves an order to a new status, enforcing the allowed
// transitions. Returns nil, nil if the order does not exist and
// ErrInvalidTransition if the move is not permitted.
func (s *OrderStore) UpdateStatus(id uuid.UUID, to models.OrderStatus) (*models.Order, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current models.OrderStatus
	err = tx.QueryRow(`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock order: %w", err)
	}

	if !current.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, to)
	}

	row := tx.QueryRow(`
		UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2
		RETURNING `+orderColumns, to, id)
	o, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update status commit: %w", err)
	}
	return o, nil
}

// AnalyticsOverview aggregates completed business volume since a cutoff.
// Cancelled orders are excluded from all figures.
type AnalyticsOverview struct {
	Orders       int     `json:"orders"`
	Revenue      float64 `json:"revenue"`
	AverageOrder float64 `json:"averageOrder"`
}

// Overview returns order count, revenue and average order value for
// orders created since the cutoff.
func (s *OrderStore) Overview(since time.Time) (*AnalyticsOverview, error) {
	var ov AnalyticsOverview
	err := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(total), 0), COALESCE(AVG(total), 0)
		FROM orders
		WHERE created_at >= $1 AND status <> $2
	`, since, models.OrderStatusCancelled).Scan(&ov.Orders, &ov.Revenue, &ov.AverageOrder)
	if err != nil {
		return nil, fmt.Errorf("analytics overview: %w", err)
	}
	return &ov, nil
}

// TopProduct is one row of the best-sellers report.
type TopProduct struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Units     int     `json:"units"`
	Revenue   float64 `json:"revenue"`
}

// TopProducts returns the best-selling products since the cutoff,
// ranked by units sold.
func (s *OrderStore) TopProducts(since time.Time, limit int) ([]TopProduct, error) {
	rows, err := s.db.Query(`
		SELECT oi.product_id, oi.name, SUM(oi.quantity) AS units,
		       SUM(oi.unit_price * oi.quantity) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= $1 AND o.status <> $2
		GROUP BY oi.product_id, oi.name
		ORDER BY units DESC, revenue DESC
		LIMIT $3
	`, since, models.OrderStatusCancelled, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics top products: %w", err)
	}
	defer rows.Close()

	var items []TopProduct
	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.Name, &tp.Units, &tp.Revenue); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		items = append(items, tp)
	}
	return items, rows.Err()
}

// DayCount is one day of the orders-per-day series.
type DayCount struct {
	Day    time.Time `json:"day"`
	Orders int       `json:"orders"`
}

// OrdersPerDay returns a daily order-count series since the cutoff.
// Days with no orders are absent from the result.
func (s *OrderStore) OrdersPerDay(since time.Time) ([]DayCount, error) {
	rows, err := s.db.Query(`
		SELECT date_trunc('day', created_at) AS day, COUNT(*)
		FROM orders
		WHERE created_at >= $1 AND status <> $2
		GROUP BY day
		ORDER BY day
	`, since, models.OrderStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("analytics orders per day: %w", err)
	}
	defer rows.Close()

	var series []DayCount
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Day, &dc.Orders); err != nil {
			return nil, fmt.Errorf("scan day count: %w", err)
		}
		series = append(series, dc)
	}
	return series, rows.Err()
}
