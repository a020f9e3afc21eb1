package orders

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/anshikasharma148/restaurant-management-metro/internal/domain"
)

// ErrDuplicateOrderNumber reports a uniqueness violation on
// orders.order_number. Create callers regenerate the number and retry.
var ErrDuplicateOrderNumber = errors.New("order number already exists")

// ErrOrderHasPayment reports a delete blocked by a referencing payment row.
// Paid orders stay on record.
var ErrOrderHasPayment = errors.New("order has a payment")

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// LatestOrderNumberWithPrefix returns the lexicographically greatest order
// number starting with prefix, or "" when the day has no orders yet.
func (r *OrderRepository) LatestOrderNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	var number string
	err := r.db.QueryRowContext(ctx, `
		SELECT order_number FROM orders
		WHERE order_number LIKE $1 || '%'
		ORDER BY order_number DESC
		LIMIT 1
	`, prefix).Scan(&number)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return number, nil
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	order.ID = uuid.New().String()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, order_number, type, status, table_number, notes,
			subtotal, discount, tax, total, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
	`, order.ID, order.OrderNumber, order.Type, order.Status, order.TableNumber, order.Notes,
		order.Subtotal, order.Discount, order.Tax, order.Total, order.CreatedBy, order.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return ErrDuplicateOrderNumber
		}
		return err
	}

	if err := insertItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}

	return tx.Commit()
}

func insertItems(ctx context.Context, tx *sql.Tx, orderID string, items []domain.OrderLineItem) error {
	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, menu_item_id, name, quantity, price, variant, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, uuid.New().String(), orderID, item.MenuItemID, item.Name, item.Quantity, item.Price, item.Variant, item.Notes)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_number, type, status, table_number, notes,
			subtotal, discount, tax, total, created_by, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.OrderNumber, &order.Type, &order.Status, &order.TableNumber,
		&order.Notes, &order.Subtotal, &order.Discount, &order.Tax, &order.Total,
		&order.CreatedBy, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT menu_item_id, name, quantity, price, variant, notes
		FROM order_items
		WHERE order_id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item domain.OrderLineItem
		if err := rows.Scan(&item.MenuItemID, &item.Name, &item.Quantity, &item.Price, &item.Variant, &item.Notes); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	Status    domain.OrderStatus
	Type      domain.OrderType
	StartDate time.Time
	EndDate   time.Time
}

func (r *OrderRepository) List(ctx context.Context, filter ListFilter) ([]domain.Order, error) {
	query := `
		SELECT id, order_number, type, status, table_number, notes,
			subtotal, discount, tax, total, created_by, created_at, updated_at
		FROM orders
		WHERE ($1 = '' OR status = $1)
		AND ($2 = '' OR type = $2)
		AND ($3::timestamptz IS NULL OR created_at >= $3)
		AND ($4::timestamptz IS NULL OR created_at <= $4)
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query,
		string(filter.Status), string(filter.Type), nullTime(filter.StartDate), nullTime(filter.EndDate))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.OrderNumber, &order.Type, &order.Status, &order.TableNumber,
			&order.Notes, &order.Subtotal, &order.Discount, &order.Tax, &order.Total,
			&order.CreatedBy, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		order.Items = []domain.OrderLineItem{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, menu_item_id, name, quantity, price, variant, notes
		FROM order_items
		WHERE order_id = ANY($1)
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID string
		var item domain.OrderLineItem
		if err := itemRows.Scan(&orderID, &item.MenuItemID, &item.Name, &item.Quantity, &item.Price, &item.Variant, &item.Notes); err != nil {
			return nil, err
		}
		order := orderMap[orderID]
		order.Items = append(order.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}

// Update replaces the mutable fields of a pending order: items, notes and
// the derived totals. Items are replaced wholesale.
func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET notes = $1, subtotal = $2, discount = $3, tax = $4, total = $5, updated_at = NOW()
		WHERE id = $6
	`, order.Notes, order.Subtotal, order.Discount, order.Tax, order.Total, order.ID)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
		return err
	}

	if err := insertItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return ErrOrderHasPayment
		}
		return err
	}
	return nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
