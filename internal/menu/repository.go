package menu

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/anshikasharma148/restaurant-management-metro/internal/domain"
)

type MenuRepository struct {
	db *sql.DB
}

func NewMenuRepository(db *sql.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// ItemFilter narrows ListItems results. Zero values mean "no constraint".
type ItemFilter struct {
	CategoryID string
	Available  *bool
	Search     string
}

func (r *MenuRepository) ListItems(ctx context.Context, filter ItemFilter) ([]domain.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, price, category_id, emoji, variants, available, created_at, updated_at
		FROM menu_items
		WHERE ($1 = '' OR category_id::text = $1)
		AND ($2::boolean IS NULL OR available = $2)
		AND ($3 = '' OR name ILIKE '%' || $3 || '%' OR description ILIKE '%' || $3 || '%')
		ORDER BY created_at DESC
	`, filter.CategoryID, nullBool(filter.Available), filter.Search)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []domain.MenuItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

func (r *MenuRepository) GetItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, category_id, emoji, variants, available, created_at, updated_at
		FROM menu_items
		WHERE id = $1
	`, id)

	item, err := scanItem(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

func (r *MenuRepository) CreateItem(ctx context.Context, item *domain.MenuItem) error {
	item.ID = uuid.New().String()
	item.CreatedAt = time.Now().UTC()
	item.UpdatedAt = item.CreatedAt

	variants, err := marshalVariants(item.Variants)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO menu_items (id, name, description, price, category_id, emoji, variants, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`, item.ID, item.Name, item.Description, item.Price, item.CategoryID, item.Emoji, variants, item.Available, item.CreatedAt)
	return err
}

func (r *MenuRepository) UpdateItem(ctx context.Context, item *domain.MenuItem) error {
	variants, err := marshalVariants(item.Variants)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE menu_items
		SET name = $1, description = $2, price = $3, category_id = $4, emoji = $5, variants = $6, available = $7, updated_at = NOW()
		WHERE id = $8
	`, item.Name, item.Description, item.Price, item.CategoryID, item.Emoji, variants, item.Available, item.ID)
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

func (r *MenuRepository) DeleteItem(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
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

func (r *MenuRepository) ListCategories(ctx context.Context) ([]domain.MenuCategory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, emoji, created_at, updated_at
		FROM menu_categories
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	categories := []domain.MenuCategory{}
	for rows.Next() {
		var c domain.MenuCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Emoji, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (r *MenuRepository) CreateCategory(ctx context.Context, category *domain.MenuCategory) error {
	category.ID = uuid.New().String()
	category.CreatedAt = time.Now().UTC()
	category.UpdatedAt = category.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO menu_categories (id, name, emoji, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
	`, category.ID, category.Name, category.Emoji, category.CreatedAt)
	return err
}

func (r *MenuRepository) UpdateCategory(ctx context.Context, category *domain.MenuCategory) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE menu_categories SET name = $1, emoji = $2, updated_at = NOW()
		WHERE id = $3
	`, category.Name, category.Emoji, category.ID)
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

func (r *MenuRepository) DeleteCategory(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM menu_categories WHERE id = $1`, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.MenuItem, error) {
	item := &domain.MenuItem{}
	var variants []byte

	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Price, &item.CategoryID,
		&item.Emoji, &variants, &item.Available, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(variants) > 0 {
		if err := json.Unmarshal(variants, &item.Variants); err != nil {
			return nil, err
		}
	}
	return item, nil
}

func marshalVariants(variants []domain.MenuVariant) ([]byte, error) {
	if variants == nil {
		variants = []domain.MenuVariant{}
	}
	return json.Marshal(variants)
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
