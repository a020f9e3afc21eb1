package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/anshikasharma148/restaurant-management-metro/internal/auth"
	"github.com/anshikasharma148/restaurant-management-metro/internal/domain"
)

type OrderStore interface {
	NumberStore
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
}

// TableStore is the slice of table persistence the order flow touches for
// occupancy side effects.
type TableStore interface {
	GetByNumber(ctx context.Context, number int) (*domain.Table, error)
	SetStatusByNumber(ctx context.Context, number int, status domain.TableStatus) error
}

// SettingsStore supplies the current tax rate for totals computation.
type SettingsStore interface {
	Get(ctx context.Context) (domain.Settings, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Handler struct {
	store         OrderStore
	tables        TableStore
	settings      SettingsStore
	generator     *NumberGenerator
	createdEvents EventPublisher
	statusEvents  EventPublisher
	logger        *slog.Logger
}

func NewHandler(store OrderStore, tables TableStore, settings SettingsStore, createdEvents, statusEvents EventPublisher, logger *slog.Logger) *Handler {
	return &Handler{
		store:         store,
		tables:        tables,
		settings:      settings,
		generator:     NewNumberGenerator(store),
		createdEvents: createdEvents,
		statusEvents:  statusEvents,
		logger:        logger,
	}
}

type lineItemRequest struct {
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	Variant    string  `json:"variant"`
	Notes      string  `json:"notes"`
}

type createOrderRequest struct {
	Type        domain.OrderType  `json:"type"`
	Items       []lineItemRequest `json:"items"`
	TableNumber *int              `json:"table_number"`
	Notes       string            `json:"notes"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !req.Type.Valid() {
		h.writeError(w, http.StatusBadRequest, "type must be dine-in or takeaway")
		return
	}

	if len(req.Items) == 0 {
		h.writeError(w, http.StatusBadRequest, "please provide at least one item")
		return
	}

	items, err := buildLineItems(req.Items)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()

	var tableNumber *int
	if req.Type == domain.OrderTypeDineIn {
		if req.TableNumber == nil {
			h.writeError(w, http.StatusBadRequest, "table number is required for dine-in orders")
			return
		}

		table, err := h.tables.GetByNumber(ctx, *req.TableNumber)
		if err != nil {
			h.logger.Error("failed to look up table", "error", err, "table_number", *req.TableNumber)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if table == nil {
			h.writeError(w, http.StatusNotFound, "table not found")
			return
		}
		if table.Status != domain.TableStatusAvailable {
			h.writeError(w, http.StatusBadRequest, "table is not available")
			return
		}

		if err := h.tables.SetStatusByNumber(ctx, *req.TableNumber, domain.TableStatusOccupied); err != nil {
			h.logger.Error("failed to occupy table", "error", err, "table_number", *req.TableNumber)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		tableNumber = req.TableNumber
	}

	settings, err := h.settings.Get(ctx)
	if err != nil {
		h.logger.Error("failed to load settings", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	totals := CalculateTotals(items, settings.TaxRate, 0)

	identity, _ := auth.IdentityFromContext(ctx)

	order := &domain.Order{
		Type:        req.Type,
		Status:      domain.OrderStatusPending,
		Items:       items,
		TableNumber: tableNumber,
		Notes:       req.Notes,
		Subtotal:    totals.Subtotal,
		Discount:    totals.Discount,
		Tax:         totals.Tax,
		Total:       totals.Total,
		CreatedBy:   identity.UserID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.createWithUniqueNumber(ctx, order); err != nil {
		switch {
		case errors.Is(err, ErrDailyOrderLimit):
			h.writeError(w, http.StatusConflict, "daily order limit reached")
		case errors.Is(err, ErrNumberGeneration):
			h.logger.Error("order number retry budget exhausted")
			h.writeError(w, http.StatusServiceUnavailable, "could not allocate order number, please retry")
		default:
			h.logger.Error("failed to create order", "error", err)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	if h.createdEvents != nil {
		event := domain.OrderCreatedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Type:        order.Type,
			TableNumber: order.TableNumber,
			Items:       order.Items,
			Notes:       order.Notes,
			Total:       order.Total,
			Timestamp:   order.CreatedAt,
		}
		if err := h.createdEvents.Publish(ctx, order.ID, event); err != nil {
			h.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
		}
	}

	h.logger.Info("order created", "order_id", order.ID, "order_number", order.OrderNumber, "total", order.Total)
	h.writeJSON(w, http.StatusCreated, order)
}

// createWithUniqueNumber runs the generate-and-insert loop. Uniqueness is
// enforced by the database; a losing writer regenerates from the new latest
// number and tries again, up to numberRetryBudget attempts.
func (h *Handler) createWithUniqueNumber(ctx context.Context, order *domain.Order) error {
	for attempt := 1; attempt <= numberRetryBudget; attempt++ {
		number, err := h.generator.Next(ctx)
		if err != nil {
			return err
		}
		order.OrderNumber = number

		err = h.store.Create(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicateOrderNumber) {
			return err
		}

		h.logger.Warn("order number conflict, regenerating", "order_number", number, "attempt", attempt)
	}
	return ErrNumberGeneration
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Status: domain.OrderStatus(r.URL.Query().Get("status")),
		Type:   domain.OrderType(r.URL.Query().Get("type")),
	}

	if v := r.URL.Query().Get("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid startDate")
			return
		}
		filter.StartDate = t
	}
	if v := r.URL.Query().Get("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid endDate")
			return
		}
		filter.EndDate = t
	}

	orders, err := h.store.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, orders)
}

type updateOrderRequest struct {
	Items    []lineItemRequest `json:"items"`
	Notes    *string           `json:"notes"`
	Discount float64           `json:"discount"`
}

// HandleUpdate edits a pending order: items may be replaced and a discount
// percentage applied, which recomputes all derived totals.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Discount < 0 || req.Discount > 100 {
		h.writeError(w, http.StatusBadRequest, "discount must be between 0 and 100")
		return
	}

	ctx := r.Context()

	order, err := h.store.GetByID(ctx, id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if order.Status != domain.OrderStatusPending {
		h.writeError(w, http.StatusBadRequest, "can only update pending orders")
		return
	}

	if len(req.Items) > 0 {
		items, err := buildLineItems(req.Items)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		settings, err := h.settings.Get(ctx)
		if err != nil {
			h.logger.Error("failed to load settings", "error", err)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		totals := CalculateTotals(items, settings.TaxRate, req.Discount)
		order.Items = items
		order.Subtotal = totals.Subtotal
		order.Discount = totals.Discount
		order.Tax = totals.Tax
		order.Total = totals.Total
	}

	if req.Notes != nil {
		order.Notes = *req.Notes
	}

	if err := h.store.Update(ctx, order); err != nil {
		h.logger.Error("failed to update order", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("order updated", "order_id", order.ID, "total", order.Total)
	h.writeJSON(w, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !req.Status.Valid() {
		h.writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	ctx := r.Context()

	order, err := h.store.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		h.logger.Error("failed to update order status", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if req.Status == domain.OrderStatusCompleted {
		h.releaseTable(ctx, order)
	}

	if h.statusEvents != nil {
		event := domain.OrderStatusChangedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Status:      order.Status,
			Timestamp:   time.Now().UTC(),
		}
		if err := h.statusEvents.Publish(ctx, order.ID, event); err != nil {
			h.logger.Error("failed to publish status event", "error", err, "order_id", order.ID)
		}
	}

	h.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	ctx := r.Context()

	order, err := h.store.GetByID(ctx, id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if err := h.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrOrderHasPayment) {
			h.writeError(w, http.StatusConflict, "cannot delete a paid order")
			return
		}
		h.logger.Error("failed to delete order", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.releaseTable(ctx, order)

	h.logger.Info("order deleted", "order_id", id)
	h.writeJSON(w, http.StatusOK, map[string]string{})
}

func (h *Handler) releaseTable(ctx context.Context, order *domain.Order) {
	if order.Type != domain.OrderTypeDineIn || order.TableNumber == nil {
		return
	}
	if err := h.tables.SetStatusByNumber(ctx, *order.TableNumber, domain.TableStatusAvailable); err != nil {
		h.logger.Error("failed to release table", "error", err, "table_number", *order.TableNumber)
	}
}

func buildLineItems(reqs []lineItemRequest) ([]domain.OrderLineItem, error) {
	items := make([]domain.OrderLineItem, 0, len(reqs))
	for _, it := range reqs {
		item, err := domain.NewOrderLineItem(it.MenuItemID, it.Name, it.Quantity, it.Price, it.Variant, it.Notes)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
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
