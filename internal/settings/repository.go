package settings

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/anshikasharma148/restaurant-management-metro/internal/domain"
)

// SettingsRepository manages the single restaurant configuration row
// (id is fixed to 1 by a CHECK constraint).
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the settings row, creating it with defaults on first read.
func (r *SettingsRepository) Get(ctx context.Context) (domain.Settings, error) {
	s, err := r.read(ctx)
	if err == nil {
		return s, nil
	}
	if err != sql.ErrNoRows {
		return domain.Settings{}, err
	}

	defaults := domain.DefaultSettings()
	if err := r.Update(ctx, &defaults); err != nil {
		return domain.Settings{}, err
	}
	return defaults, nil
}

func (r *SettingsRepository) read(ctx context.Context) (domain.Settings, error) {
	var s domain.Settings
	var hours []byte

	err := r.db.QueryRowContext(ctx, `
		SELECT restaurant_name, address, phone, tax_rate, service_charge,
			operating_hours, sound_notifications, auto_print, updated_at
		FROM settings WHERE id = 1
	`).Scan(&s.RestaurantName, &s.Address, &s.Phone, &s.TaxRate, &s.ServiceCharge,
		&hours, &s.SoundNotifications, &s.AutoPrint, &s.UpdatedAt)
	if err != nil {
		return domain.Settings{}, err
	}

	if len(hours) > 0 {
		if err := json.Unmarshal(hours, &s.OperatingHours); err != nil {
			return domain.Settings{}, err
		}
	}
	return s, nil
}

// Update upserts the settings row.
func (r *SettingsRepository) Update(ctx context.Context, s *domain.Settings) error {
	hours, err := json.Marshal(s.OperatingHours)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (id, restaurant_name, address, phone, tax_rate, service_charge,
			operating_hours, sound_notifications, auto_print, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (id) DO UPDATE SET
			restaurant_name = EXCLUDED.restaurant_name,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			tax_rate = EXCLUDED.tax_rate,
			service_charge = EXCLUDED.service_charge,
			operating_hours = EXCLUDED.operating_hours,
			sound_notifications = EXCLUDED.sound_notifications,
			auto_print = EXCLUDED.auto_print,
			updated_at = NOW()
	`, s.RestaurantName, s.Address, s.Phone, s.TaxRate, s.ServiceCharge,
		hours, s.SoundNotifications, s.AutoPrint)
	return err
}
