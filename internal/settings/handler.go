package settings

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/anshikasharma148/restaurant-management-metro/internal/domain"
)

type SettingsStore interface {
	Get(ctx context.Context) (domain.Settings, error)
	Update(ctx context.Context, s *domain.Settings) error
}

type Handler struct {
	store  SettingsStore
	logger *slog.Logger
}

func NewHandler(store SettingsStore, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to load settings", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, s)
}

type updateRequest struct {
	RestaurantName     *string                 `json:"restaurant_name"`
	Address            *string                 `json:"address"`
	Phone              *string                 `json:"phone"`
	TaxRate            *float64                `json:"tax_rate"`
	ServiceCharge      *float64                `json:"service_charge"`
	OperatingHours     []domain.OperatingHours `json:"operating_hours"`
	SoundNotifications *bool                   `json:"sound_notifications"`
	AutoPrint          *bool                   `json:"auto_print"`
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.TaxRate != nil && (*req.TaxRate < 0 || *req.TaxRate > 100) {
		h.writeError(w, http.StatusBadRequest, "tax_rate must be between 0 and 100")
		return
	}
	if req.ServiceCharge != nil && (*req.ServiceCharge < 0 || *req.ServiceCharge > 100) {
		h.writeError(w, http.StatusBadRequest, "service_charge must be between 0 and 100")
		return
	}

	s, err := h.store.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to load settings", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if req.RestaurantName != nil {
		s.RestaurantName = *req.RestaurantName
	}
	if req.Address != nil {
		s.Address = *req.Address
	}
	if req.Phone != nil {
		s.Phone = *req.Phone
	}
	if req.TaxRate != nil {
		s.TaxRate = *req.TaxRate
	}
	if req.ServiceCharge != nil {
		s.ServiceCharge = *req.ServiceCharge
	}
	if req.OperatingHours != nil {
		s.OperatingHours = req.OperatingHours
	}
	if req.SoundNotifications != nil {
		s.SoundNotifications = *req.SoundNotifications
	}
	if req.AutoPrint != nil {
		s.AutoPrint = *req.AutoPrint
	}

	if err := h.store.Update(r.Context(), &s); err != nil {
		h.logger.Error("failed to update settings", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("settings updated", "tax_rate", s.TaxRate)
	h.writeJSON(w, http.StatusOK, s)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
