package tables

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/anshikasharma148/restaurant-management-metro/internal/domain"
)

type TableStore interface {
	List(ctx context.Context, status domain.TableStatus) ([]domain.Table, error)
	GetByID(ctx context.Context, id string) (*domain.Table, error)
	Create(ctx context.Context, table *domain.Table) error
	Update(ctx context.Context, table *domain.Table) error
	SetStatus(ctx context.Context, id string, status domain.TableStatus) error
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	store  TableStore
	logger *slog.Logger
}

func NewHandler(store TableStore, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	status := domain.TableStatus(r.URL.Query().Get("status"))

	tables, err := h.store.List(r.Context(), status)
	if err != nil {
		h.logger.Error("failed to list tables", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, tables)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing table id")
		return
	}

	table, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get table", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if table == nil {
		h.writeError(w, http.StatusNotFound, "table not found")
		return
	}

	h.writeJSON(w, http.StatusOK, table)
}

type tableRequest struct {
	Number   *int `json:"number"`
	Capacity *int `json:"capacity"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Number == nil || req.Capacity == nil {
		h.writeError(w, http.StatusBadRequest, "number and capacity are required")
		return
	}
	if *req.Capacity < 1 {
		h.writeError(w, http.StatusBadRequest, "capacity must be at least 1")
		return
	}

	table := &domain.Table{Number: *req.Number, Capacity: *req.Capacity}
	if err := h.store.Create(r.Context(), table); err != nil {
		if errors.Is(err, ErrTableNumberExists) {
			h.writeError(w, http.StatusBadRequest, "table number already exists")
			return
		}
		h.logger.Error("failed to create table", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("table created", "table_id", table.ID, "number", table.Number)
	h.writeJSON(w, http.StatusCreated, table)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing table id")
		return
	}

	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	table, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get table", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if table == nil {
		h.writeError(w, http.StatusNotFound, "table not found")
		return
	}

	if req.Number != nil {
		table.Number = *req.Number
	}
	if req.Capacity != nil {
		if *req.Capacity < 1 {
			h.writeError(w, http.StatusBadRequest, "capacity must be at least 1")
			return
		}
		table.Capacity = *req.Capacity
	}

	if err := h.store.Update(r.Context(), table); err != nil {
		if errors.Is(err, ErrTableNumberExists) {
			h.writeError(w, http.StatusBadRequest, "table number already exists")
			return
		}
		h.logger.Error("failed to update table", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, table)
}

type statusRequest struct {
	Status domain.TableStatus `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing table id")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !req.Status.Valid() {
		h.writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	if err := h.store.SetStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "table not found")
			return
		}
		h.logger.Error("failed to update table status", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	table, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get table", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("table status updated", "table_id", id, "status", req.Status)
	h.writeJSON(w, http.StatusOK, table)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing table id")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "table not found")
			return
		}
		h.logger.Error("failed to delete table", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("table deleted", "table_id", id)
	h.writeJSON(w, http.StatusOK, map[string]string{})
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
