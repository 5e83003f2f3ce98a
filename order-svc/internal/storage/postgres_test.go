package storage

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overcooked-orders/order-svc/internal/domain"
)

var orderColumns = []string{"id", "user_id", "mode", "status", "total", "bill", "order_details", "created_at"}
var itemColumns = []string{"item_id", "name", "category", "price", "image_url", "is_veg", "quantity", "added_at"}

// helper to install sqlmock-backed DB.
func setupTestRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	repo := NewPostgresRepository(mockDB)
	repo.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return repo, mock
}

func TestPostgresRepository_FetchCatalog(t *testing.T) {
	repo, mock := setupTestRepo(t)

	mock.ExpectQuery("FROM menu_items").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "description", "category", "price", "image_url", "is_veg", "rating", "is_popular", "availability"}).
			AddRow("1", "Margherita Pizza", "Classic", "pizza", int64(299), "", true, 4.5, true, true).
			AddRow("2", "Chicken Burger", "Juicy", "burgers", int64(249), "", false, 4.3, false, false))

	items, err := repo.FetchCatalog(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(299), items[0].Price)
	assert.True(t, items[0].IsPopular)
	assert.False(t, items[1].Availability)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SubmitOrder(t *testing.T) {
	draft := &domain.OrderDraft{
		UserID: "user-123",
		Items: []domain.CartLine{
			{MenuItem: domain.MenuItem{ID: "1", Name: "Margherita Pizza", Category: "pizza", Price: 299}, Quantity: 2},
			{MenuItem: domain.MenuItem{ID: "4", Name: "Cold Coffee", Category: "drinks", Price: 149}, Quantity: 1},
		},
		Mode:   domain.ModeDelivery,
		Bill:   domain.BillBreakdown{Subtotal: 747, Tax: 37, DeliveryFee: 40, Total: 824},
		Total:  824,
		Status: domain.StatusConfirmed,
	}

	tests := []struct {
		name    string
		setup   func(sqlmock.Sqlmock)
		wantErr bool
	}{
		{
			name: "commits header and lines",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO orders").
					WithArgs(sqlmock.AnyArg(), "user-123", "delivery", "confirmed", int64(824), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("INSERT INTO order_items").
					WithArgs(sqlmock.AnyArg(), "1", "Margherita Pizza", "pizza", int64(299), "", false, 2, sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("INSERT INTO order_items").
					WithArgs(sqlmock.AnyArg(), "4", "Cold Coffee", "drinks", int64(149), "", false, 1, sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "rolls back when a line fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("INSERT INTO order_items").WillReturnError(errors.New("constraint violation"))
				mock.ExpectRollback()
			},
			wantErr: true,
		},
		{
			name: "begin failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo, mock := setupTestRepo(t)
			testCase.setup(mock)

			id, err := repo.SubmitOrder(context.Background(), draft)

			if testCase.wantErr {
				assert.Error(t, err)
				assert.Empty(t, id)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, id)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepository_GetOrder(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bill, _ := json.Marshal(domain.BillBreakdown{Subtotal: 249, Tax: 12, Total: 261})
	details, _ := json.Marshal(domain.OrderDetail{Phone: "9876543210", PaymentMethod: domain.PaymentCounter})

	t.Run("found", func(t *testing.T) {
		repo, mock := setupTestRepo(t)
		mock.ExpectQuery("FROM orders WHERE id").WithArgs("o1").WillReturnRows(
			sqlmock.NewRows(orderColumns).AddRow("o1", "user-123", "takeaway", "ready", int64(261), bill, details, created))
		mock.ExpectQuery("FROM order_items").WithArgs("o1").WillReturnRows(
			sqlmock.NewRows(itemColumns).AddRow("2", "Chicken Burger", "burgers", int64(249), "", false, 1, created))

		order, err := repo.GetOrder(context.Background(), "o1")

		require.NoError(t, err)
		assert.Equal(t, domain.ModeTakeaway, order.Mode)
		assert.Equal(t, domain.StatusReady, order.Status)
		assert.Equal(t, int64(12), order.Bill.Tax)
		assert.Equal(t, "9876543210", order.OrderDetails.Phone)
		require.Len(t, order.Items, 1)
		assert.Equal(t, 1, order.Items[0].Quantity)
		assert.True(t, order.Items[0].Availability)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := setupTestRepo(t)
		mock.ExpectQuery("FROM orders WHERE id").WithArgs("missing").WillReturnRows(sqlmock.NewRows(orderColumns))

		_, err := repo.GetOrder(context.Background(), "missing")

		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepository_FetchOrders(t *testing.T) {
	repo, mock := setupTestRepo(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("WHERE user_id").WithArgs("user-123").WillReturnRows(
		sqlmock.NewRows(orderColumns).
			AddRow("o2", "user-123", "dine-in", "served", int64(100), nil, nil, created).
			AddRow("o1", "user-123", "delivery", "delivered", int64(200), nil, nil, created.Add(-time.Hour)))
	mock.ExpectQuery("FROM order_items").WithArgs("o2").WillReturnRows(sqlmock.NewRows(itemColumns))
	mock.ExpectQuery("FROM order_items").WithArgs("o1").WillReturnRows(
		sqlmock.NewRows(itemColumns).AddRow("6", "Pepperoni Pizza", "pizza", int64(349), "", false, 1, created))

	orders, err := repo.FetchOrders(context.Background(), "user-123")

	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "o2", orders[0].ID)
	assert.Empty(t, orders[0].Items)
	assert.Len(t, orders[1].Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpdateOrderStatus(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "updated", affected: 1},
		{name: "unknown order", affected: 0, wantErr: domain.ErrOrderNotFound},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo, mock := setupTestRepo(t)
			mock.ExpectExec("UPDATE orders SET status").
				WithArgs("preparing", "o1").
				WillReturnResult(sqlmock.NewResult(0, testCase.affected))

			err := repo.UpdateOrderStatus(context.Background(), "o1", domain.StatusPreparing)

			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepository_EnsureSchema(t *testing.T) {
	repo, mock := setupTestRepo(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS menu_items").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS orders").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS order_items").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS orders_user_idx").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_EnsureSchemaStopsOnError(t *testing.T) {
	repo, mock := setupTestRepo(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS menu_items").WillReturnError(errors.New("permission denied"))

	assert.Error(t, repo.EnsureSchema())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SeedMenu(t *testing.T) {
	countQuery := regexp.QuoteMeta("SELECT COUNT(*) FROM menu_items")

	t.Run("empty catalog", func(t *testing.T) {
		repo, mock := setupTestRepo(t)
		mock.ExpectQuery(countQuery).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		for _, item := range domain.SampleMenu() {
			mock.ExpectExec("INSERT INTO menu_items").
				WithArgs(item.ID, item.Name, item.Description, item.Category, item.Price, item.ImageURL,
					item.IsVeg, item.Rating, item.IsPopular, item.Availability).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}

		require.NoError(t, repo.SeedMenu(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing catalog is left alone", func(t *testing.T) {
		repo, mock := setupTestRepo(t)
		mock.ExpectQuery(countQuery).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

		require.NoError(t, repo.SeedMenu(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
