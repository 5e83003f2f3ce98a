package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"overcooked-orders/order-svc/internal/domain"
)

type PostgresRepository struct {
	DB  *sql.DB
	now func() time.Time
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db, now: time.Now}
}

func (r *PostgresRepository) FetchCatalog(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, COALESCE(description, ''), category, price, COALESCE(image_url, ''),
		       is_veg, rating, is_popular, availability
		FROM menu_items
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Category, &item.Price,
			&item.ImageURL, &item.IsVeg, &item.Rating, &item.IsPopular, &item.Availability); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SubmitOrder stores the order header and its line snapshot in one
// transaction and returns the generated order id.
func (r *PostgresRepository) SubmitOrder(ctx context.Context, draft *domain.OrderDraft) (string, error) {
	details, err := json.Marshal(draft.OrderDetails)
	if err != nil {
		return "", fmt.Errorf("encode order details: %w", err)
	}
	bill, err := json.Marshal(draft.Bill)
	if err != nil {
		return "", fmt.Errorf("encode bill: %w", err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, mode, status, total, bill, order_details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, id, draft.UserID, draft.Mode, draft.Status, draft.Total, bill, details, r.now()); err != nil {
		return "", err
	}

	for _, line := range draft.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, item_id, name, category, price, image_url, is_veg, quantity, added_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, id, line.ID, line.Name, line.Category, line.Price, line.ImageURL, line.IsVeg, line.Quantity, line.AddedAt); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

type orderScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row orderScanner) (domain.Order, error) {
	var (
		order   domain.Order
		bill    []byte
		details []byte
	)
	if err := row.Scan(&order.ID, &order.UserID, &order.Mode, &order.Status, &order.Total,
		&bill, &details, &order.CreatedAt); err != nil {
		return order, err
	}
	if len(bill) > 0 {
		if err := json.Unmarshal(bill, &order.Bill); err != nil {
			return order, fmt.Errorf("decode bill of %s: %w", order.ID, err)
		}
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &order.OrderDetails); err != nil {
			return order, fmt.Errorf("decode details of %s: %w", order.ID, err)
		}
	}
	return order, nil
}

func (r *PostgresRepository) orderItems(ctx context.Context, orderID string) ([]domain.CartLine, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT item_id, name, COALESCE(category, ''), price, COALESCE(image_url, ''), is_veg, quantity, added_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY added_at
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ID, &line.Name, &line.Category, &line.Price, &line.ImageURL,
			&line.IsVeg, &line.Quantity, &line.AddedAt); err != nil {
			return nil, err
		}
		line.Availability = true
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *PostgresRepository) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := scanOrder(r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, mode, status, total, bill, order_details, created_at
		FROM orders WHERE id = $1
	`, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if order.Items, err = r.orderItems(ctx, order.ID); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *PostgresRepository) FetchOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, mode, status, total, bill, order_details, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, order)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if orders[i].Items, err = r.orderItems(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, status, orderID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *PostgresRepository) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS menu_items (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			category TEXT NOT NULL,
			price BIGINT NOT NULL CHECK (price >= 0),
			image_url TEXT,
			is_veg BOOLEAN NOT NULL DEFAULT FALSE,
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			is_popular BOOLEAN NOT NULL DEFAULT FALSE,
			availability BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			mode TEXT NOT NULL,
			status TEXT NOT NULL,
			total BIGINT NOT NULL,
			bill JSONB,
			order_details JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			item_id TEXT NOT NULL,
			name TEXT NOT NULL,
			category TEXT,
			price BIGINT NOT NULL,
			image_url TEXT,
			is_veg BOOLEAN NOT NULL DEFAULT FALSE,
			quantity INT NOT NULL CHECK (quantity >= 1),
			added_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		"CREATE INDEX IF NOT EXISTS orders_user_idx ON orders (user_id, created_at DESC)",
	}
	for _, stmt := range statements {
		if _, err := r.DB.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", stmt, err)
		}
	}
	return nil
}

// SeedMenu inserts the sample menu when the catalog table is empty.
func (r *PostgresRepository) SeedMenu(ctx context.Context) error {
	var count int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM menu_items").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, item := range domain.SampleMenu() {
		if _, err := r.DB.ExecContext(ctx, `
			INSERT INTO menu_items (id, name, description, category, price, image_url, is_veg, rating, is_popular, availability)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO NOTHING
		`, item.ID, item.Name, item.Description, item.Category, item.Price, item.ImageURL,
			item.IsVeg, item.Rating, item.IsPopular, item.Availability); err != nil {
			return fmt.Errorf("seed menu item %s: %w", item.ID, err)
		}
	}
	return nil
}
