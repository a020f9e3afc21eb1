package payments

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/anshikasharma148/restaurant-management-metro/internal/domain"
)

// ErrAlreadyPaid reports the UNIQUE constraint on payments.order_id: at most
// one payment exists per order.
var ErrAlreadyPaid = errors.New("payment already processed for this order")

const pqUniqueViolation = "23505"

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	payment.ID = uuid.New().String()
	payment.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (id, order_id, method, amount, received_amount, change, processed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, payment.ID, payment.OrderID, payment.Method, payment.Amount, payment.ReceivedAmount,
		payment.Change, payment.ProcessedBy, payment.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return ErrAlreadyPaid
		}
		return err
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	return r.getOne(ctx, `
		SELECT id, order_id, method, amount, received_amount, change, processed_by, created_at
		FROM payments WHERE id = $1
	`, id)
}

func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	return r.getOne(ctx, `
		SELECT id, order_id, method, amount, received_amount, change, processed_by, created_at
		FROM payments WHERE order_id = $1
	`, orderID)
}

func (r *PaymentRepository) getOne(ctx context.Context, query string, arg any) (*domain.Payment, error) {
	payment := &domain.Payment{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&payment.ID, &payment.OrderID, &payment.Method, &payment.Amount,
		&payment.ReceivedAmount, &payment.Change, &payment.ProcessedBy, &payment.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return payment, nil
}

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	Method    domain.PaymentMethod
	StartDate time.Time
	EndDate   time.Time
}

func (r *PaymentRepository) List(ctx context.Context, filter ListFilter) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, method, amount, received_amount, change, processed_by, created_at
		FROM payments
		WHERE ($1 = '' OR method = $1)
		AND ($2::timestamptz IS NULL OR created_at >= $2)
		AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at DESC
	`, string(filter.Method), nullTime(filter.StartDate), nullTime(filter.EndDate))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	list := []domain.Payment{}
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Method, &p.Amount, &p.ReceivedAmount,
			&p.Change, &p.ProcessedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	return list, rows.Err()
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
