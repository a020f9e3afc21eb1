package orders

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anshikasharma148/restaurant-management-metro/internal/domain"
)

func TestOrderRepository_LatestOrderNumberWithPrefix(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderRepository(db)

	t.Run("returns the stored number", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"order_number"}).AddRow("20250114041")
		mock.ExpectQuery("SELECT order_number FROM orders").
			WithArgs("20250114").
			WillReturnRows(rows)

		number, err := repo.LatestOrderNumberWithPrefix(context.Background(), "20250114")
		require.NoError(t, err)
		assert.Equal(t, "20250114041", number)
	})

	t.Run("returns empty string when the day has no orders", func(t *testing.T) {
		mock.ExpectQuery("SELECT order_number FROM orders").
			WithArgs("20250115").
			WillReturnRows(sqlmock.NewRows([]string{"order_number"}))

		number, err := repo.LatestOrderNumberWithPrefix(context.Background(), "20250115")
		require.NoError(t, err)
		assert.Equal(t, "", number)
	})
}

func TestOrderRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderRepository(db)

	order := &domain.Order{
		OrderNumber: "20250114001",
		Type:        domain.OrderTypeTakeaway,
		Status:      domain.OrderStatusPending,
		Items: []domain.OrderLineItem{
			{MenuItemID: "m1", Name: "Coffee", Quantity: 1, Price: 2.49},
		},
		Subtotal:  2.49,
		Tax:       0.249,
		Total:     2.739,
		CreatedBy: "user-1",
		CreatedAt: time.Now().UTC(),
	}

	t.Run("inserts the order and its items in one transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO orders").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Create(context.Background(), order)
		require.NoError(t, err)
		assert.NotEmpty(t, order.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps a unique violation to ErrDuplicateOrderNumber", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO orders").
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		err := repo.Create(context.Background(), order)
		assert.ErrorIs(t, err, ErrDuplicateOrderNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderRepository(db)

	t.Run("deletes an unpaid order", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM orders").
			WithArgs("order-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), "order-1")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps a foreign key violation to ErrOrderHasPayment", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM orders").
			WithArgs("order-1").
			WillReturnError(&pq.Error{Code: "23503"})

		err := repo.Delete(context.Background(), "order-1")
		assert.ErrorIs(t, err, ErrOrderHasPayment)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderRepository(db)

	t.Run("returns nil for an unknown order", func(t *testing.T) {
		mock.ExpectExec("UPDATE orders SET status").
			WillReturnResult(sqlmock.NewResult(0, 0))

		order, err := repo.UpdateStatus(context.Background(), "missing", domain.OrderStatusReady)
		require.NoError(t, err)
		assert.Nil(t, order)
	})
}
