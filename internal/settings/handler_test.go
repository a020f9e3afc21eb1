package settings

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anshikasharma148/restaurant-management-metro/internal/domain"
)

type fakeSettingsStore struct {
	settings domain.Settings
}

func (s *fakeSettingsStore) Get(context.Context) (domain.Settings, error) {
	return s.settings, nil
}

func (s *fakeSettingsStore) Update(_ context.Context, updated *domain.Settings) error {
	s.settings = *updated
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandler_HandleGet(t *testing.T) {
	store := &fakeSettingsStore{settings: domain.DefaultSettings()}
	handler := NewHandler(store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	rec := httptest.NewRecorder()
	handler.HandleGet(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var s domain.Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, "Metro Restaurant", s.RestaurantName)
	assert.InDelta(t, 10, s.TaxRate, 1e-9)
	assert.Len(t, s.OperatingHours, 7)
}

func TestHandler_HandleUpdate(t *testing.T) {
	t.Run("merges only the provided fields", func(t *testing.T) {
		store := &fakeSettingsStore{settings: domain.DefaultSettings()}
		handler := NewHandler(store, testLogger())

		req := httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(`{"tax_rate": 12.5, "phone": "+1 555 0100"}`))
		rec := httptest.NewRecorder()
		handler.HandleUpdate(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.InDelta(t, 12.5, store.settings.TaxRate, 1e-9)
		assert.Equal(t, "+1 555 0100", store.settings.Phone)
		assert.Equal(t, "Metro Restaurant", store.settings.RestaurantName)
	})

	t.Run("rejects a tax rate above 100", func(t *testing.T) {
		store := &fakeSettingsStore{settings: domain.DefaultSettings()}
		handler := NewHandler(store, testLogger())

		req := httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(`{"tax_rate": 120}`))
		rec := httptest.NewRecorder()
		handler.HandleUpdate(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.InDelta(t, 10, store.settings.TaxRate, 1e-9)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "tax_rate must be between 0 and 100", resp["error"])
	})

	t.Run("rejects a negative service charge", func(t *testing.T) {
		handler := NewHandler(&fakeSettingsStore{settings: domain.DefaultSettings()}, testLogger())

		req := httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(`{"service_charge": -5}`))
		rec := httptest.NewRecorder()
		handler.HandleUpdate(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("replaces operating hours wholesale", func(t *testing.T) {
		store := &fakeSettingsStore{settings: domain.DefaultSettings()}
		handler := NewHandler(store, testLogger())

		body := `{"operating_hours": [{"day": "Monday", "open_time": "09:00", "close_time": "17:00", "is_open": true}]}`
		req := httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.HandleUpdate(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, store.settings.OperatingHours, 1)
		assert.Equal(t, "09:00", store.settings.OperatingHours[0].OpenTime)
	})
}
