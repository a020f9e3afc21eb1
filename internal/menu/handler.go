package menu

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/anshikasharma148/restaurant-management-metro/internal/domain"
)

type MenuStore interface {
	ListItems(ctx context.Context, filter ItemFilter) ([]domain.MenuItem, error)
	GetItem(ctx context.Context, id string) (*domain.MenuItem, error)
	CreateItem(ctx context.Context, item *domain.MenuItem) error
	UpdateItem(ctx context.Context, item *domain.MenuItem) error
	DeleteItem(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]domain.MenuCategory, error)
	CreateCategory(ctx context.Context, category *domain.MenuCategory) error
	UpdateCategory(ctx context.Context, category *domain.MenuCategory) error
	DeleteCategory(ctx context.Context, id string) error
}

type Handler struct {
	store  MenuStore
	logger *slog.Logger
}

func NewHandler(store MenuStore, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	filter := ItemFilter{
		CategoryID: r.URL.Query().Get("category"),
		Search:     r.URL.Query().Get("search"),
	}
	if v := r.URL.Query().Get("available"); v != "" {
		available := v == "true"
		filter.Available = &available
	}

	items, err := h.store.ListItems(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list menu items", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, items)
}

func (h *Handler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing item id")
		return
	}

	item, err := h.store.GetItem(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get menu item", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if item == nil {
		h.writeError(w, http.StatusNotFound, "menu item not found")
		return
	}

	h.writeJSON(w, http.StatusOK, item)
}

type itemRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Price       *float64             `json:"price"`
	CategoryID  string               `json:"category_id"`
	Emoji       string               `json:"emoji"`
	Variants    []domain.MenuVariant `json:"variants"`
	Available   *bool                `json:"available"`
}

func (h *Handler) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.CategoryID == "" || req.Price == nil {
		h.writeError(w, http.StatusBadRequest, "name, price and category_id are required")
		return
	}
	if *req.Price < 0 {
		h.writeError(w, http.StatusBadRequest, "price must be non-negative")
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	item := &domain.MenuItem{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		CategoryID:  req.CategoryID,
		Emoji:       req.Emoji,
		Variants:    req.Variants,
		Available:   available,
	}

	if err := h.store.CreateItem(r.Context(), item); err != nil {
		h.logger.Error("failed to create menu item", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("menu item created", "item_id", item.ID, "name", item.Name)
	h.writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing item id")
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.store.GetItem(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get menu item", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if item == nil {
		h.writeError(w, http.StatusNotFound, "menu item not found")
		return
	}

	if req.Name != "" {
		item.Name = req.Name
	}
	if req.Description != "" {
		item.Description = req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			h.writeError(w, http.StatusBadRequest, "price must be non-negative")
			return
		}
		item.Price = *req.Price
	}
	if req.CategoryID != "" {
		item.CategoryID = req.CategoryID
	}
	if req.Emoji != "" {
		item.Emoji = req.Emoji
	}
	if req.Variants != nil {
		item.Variants = req.Variants
	}
	if req.Available != nil {
		item.Available = *req.Available
	}

	if err := h.store.UpdateItem(r.Context(), item); err != nil {
		h.logger.Error("failed to update menu item", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, item)
}

func (h *Handler) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing item id")
		return
	}

	if err := h.store.DeleteItem(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		h.logger.Error("failed to delete menu item", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("menu item deleted", "item_id", id)
	h.writeJSON(w, http.StatusOK, map[string]string{})
}

func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("failed to list categories", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, categories)
}

type categoryRequest struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	category := &domain.MenuCategory{Name: req.Name, Emoji: req.Emoji}
	if err := h.store.CreateCategory(r.Context(), category); err != nil {
		h.logger.Error("failed to create category", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("category created", "category_id", category.ID, "name", category.Name)
	h.writeJSON(w, http.StatusCreated, category)
}

func (h *Handler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing category id")
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category := &domain.MenuCategory{ID: id, Name: req.Name, Emoji: req.Emoji}
	if err := h.store.UpdateCategory(r.Context(), category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("failed to update category", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, category)
}

func (h *Handler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing category id")
		return
	}

	if err := h.store.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("failed to delete category", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("category deleted", "category_id", id)
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
