package tables

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/anshikasharma148/restaurant-management-metro/internal/domain"
)

var ErrTableNumberExists = errors.New("table number already exists")

const pqUniqueViolation = "23505"

type TableRepository struct {
	db *sql.DB
}

func NewTableRepository(db *sql.DB) *TableRepository {
	return &TableRepository{db: db}
}

func (r *TableRepository) List(ctx context.Context, status domain.TableStatus) ([]domain.Table, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, number, capacity, status, created_at, updated_at
		FROM tables
		WHERE ($1 = '' OR status = $1)
		ORDER BY number ASC
	`, string(status))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	tables := []domain.Table{}
	for rows.Next() {
		var t domain.Table
		if err := rows.Scan(&t.ID, &t.Number, &t.Capacity, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	return tables, rows.Err()
}

func (r *TableRepository) GetByID(ctx context.Context, id string) (*domain.Table, error) {
	return r.getOne(ctx, `
		SELECT id, number, capacity, status, created_at, updated_at
		FROM tables WHERE id = $1
	`, id)
}

func (r *TableRepository) GetByNumber(ctx context.Context, number int) (*domain.Table, error) {
	return r.getOne(ctx, `
		SELECT id, number, capacity, status, created_at, updated_at
		FROM tables WHERE number = $1
	`, number)
}

func (r *TableRepository) getOne(ctx context.Context, query string, arg any) (*domain.Table, error) {
	table := &domain.Table{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&table.ID, &table.Number, &table.Capacity, &table.Status, &table.CreatedAt, &table.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return table, nil
}

func (r *TableRepository) Create(ctx context.Context, table *domain.Table) error {
	table.ID = uuid.New().String()
	table.CreatedAt = time.Now().UTC()
	table.UpdatedAt = table.CreatedAt
	if table.Status == "" {
		table.Status = domain.TableStatusAvailable
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tables (id, number, capacity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, table.ID, table.Number, table.Capacity, table.Status, table.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return ErrTableNumberExists
		}
		return err
	}
	return nil
}

func (r *TableRepository) Update(ctx context.Context, table *domain.Table) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE tables SET number = $1, capacity = $2, status = $3, updated_at = NOW()
		WHERE id = $4
	`, table.Number, table.Capacity, table.Status, table.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return ErrTableNumberExists
		}
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *TableRepository) SetStatus(ctx context.Context, id string, status domain.TableStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE tables SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetStatusByNumber flips occupancy for the order flow, which references
// tables by their display number rather than row id.
func (r *TableRepository) SetStatusByNumber(ctx context.Context, number int, status domain.TableStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tables SET status = $1, updated_at = NOW() WHERE number = $2
	`, status, number)
	return err
}

func (r *TableRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tables WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
