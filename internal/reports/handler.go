package reports

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

type ReportStore interface {
	SalesSummary(ctx context.Context, from, to time.Time) (SalesSummary, error)
	TopItems(ctx context.Context, from, to time.Time, limit int) ([]ItemSales, error)
	CategorySales(ctx context.Context, from, to time.Time) ([]CategorySales, error)
	Dashboard(ctx context.Context, now time.Time) (DashboardStats, error)
}

const defaultTopItemsLimit = 10

type Handler struct {
	store  ReportStore
	now    func() time.Time
	logger *slog.Logger
}

func NewHandler(store ReportStore, logger *slog.Logger) *Handler {
	return &Handler{store: store, now: time.Now, logger: logger}
}

func (h *Handler) HandleSalesSummary(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.dateRange(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.store.SalesSummary(r.Context(), from, to)
	if err != nil {
		h.logger.Error("failed to compute sales summary", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) HandleTopItems(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.dateRange(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := defaultTopItemsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	items, err := h.store.TopItems(r.Context(), from, to, limit)
	if err != nil {
		h.logger.Error("failed to compute top items", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, items)
}

func (h *Handler) HandleCategorySales(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.dateRange(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	categories, err := h.store.CategorySales(r.Context(), from, to)
	if err != nil {
		h.logger.Error("failed to compute category sales", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Dashboard(r.Context(), h.now().UTC())
	if err != nil {
		h.logger.Error("failed to compute dashboard stats", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}

// dateRange parses startDate/endDate query params (YYYY-MM-DD). The range is
// inclusive: start snaps to 00:00:00, end to the last instant of its day.
// With neither param present it defaults to today.
func (h *Handler) dateRange(r *http.Request) (time.Time, time.Time, error) {
	startParam := r.URL.Query().Get("startDate")
	endParam := r.URL.Query().Get("endDate")

	now := h.now().UTC()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if startParam == "" && endParam == "" {
		return startOfToday, endOfDay(startOfToday), nil
	}

	from := startOfToday
	to := endOfDay(startOfToday)

	if startParam != "" {
		t, err := time.Parse("2006-01-02", startParam)
		if err != nil {
			return time.Time{}, time.Time{}, errInvalidDate("startDate")
		}
		from = t
	}
	if endParam != "" {
		t, err := time.Parse("2006-01-02", endParam)
		if err != nil {
			return time.Time{}, time.Time{}, errInvalidDate("endDate")
		}
		to = endOfDay(t)
	}

	return from, to, nil
}

func endOfDay(t time.Time) time.Time {
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

type errInvalidDate string

func (e errInvalidDate) Error() string { return "invalid " + string(e) }

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
