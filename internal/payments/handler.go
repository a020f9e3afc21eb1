package payments

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

type PaymentStore interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Payment, error)
}

// OrderStore is the slice of order persistence payment capture needs: the
// order being paid, its completion, and the table-release side effect.
type OrderStore interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

type TableStore interface {
	SetStatusByNumber(ctx context.Context, number int, status domain.TableStatus) error
}

type Handler struct {
	store  PaymentStore
	orders OrderStore
	tables TableStore
	logger *slog.Logger
}

func NewHandler(store PaymentStore, orders OrderStore, tables TableStore, logger *slog.Logger) *Handler {
	return &Handler{store: store, orders: orders, tables: tables, logger: logger}
}

type processRequest struct {
	OrderID        string               `json:"order_id"`
	Method         domain.PaymentMethod `json:"method"`
	ReceivedAmount float64              `json:"received_amount"`
}

// HandleProcess captures payment for a ready order, marks it completed and
// releases its table. Cash payments compute change from the received amount.
func (h *Handler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.OrderID == "" || req.Method == "" {
		h.writeError(w, http.StatusBadRequest, "order_id and method are required")
		return
	}
	if !req.Method.Valid() {
		h.writeError(w, http.StatusBadRequest, "invalid payment method")
		return
	}

	ctx := r.Context()

	order, err := h.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "order_id", req.OrderID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if order.Status != domain.OrderStatusReady {
		h.writeError(w, http.StatusBadRequest, "order must be ready for payment")
		return
	}

	received := order.Total
	var change float64
	if req.Method == domain.PaymentMethodCash && req.ReceivedAmount > 0 {
		received = req.ReceivedAmount
		change = received - order.Total
		if change < 0 {
			h.writeError(w, http.StatusBadRequest, "insufficient payment amount")
			return
		}
	}

	identity, _ := auth.IdentityFromContext(ctx)

	payment := &domain.Payment{
		OrderID:        order.ID,
		Method:         req.Method,
		Amount:         order.Total,
		ReceivedAmount: received,
		Change:         change,
		ProcessedBy:    identity.UserID,
	}

	if err := h.store.Create(ctx, payment); err != nil {
		if errors.Is(err, ErrAlreadyPaid) {
			h.writeError(w, http.StatusBadRequest, "payment already processed for this order")
			return
		}
		h.logger.Error("failed to create payment", "error", err, "order_id", order.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if _, err := h.orders.UpdateStatus(ctx, order.ID, domain.OrderStatusCompleted); err != nil {
		h.logger.Error("failed to complete order", "error", err, "order_id", order.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order.Type == domain.OrderTypeDineIn && order.TableNumber != nil {
		if err := h.tables.SetStatusByNumber(ctx, *order.TableNumber, domain.TableStatusAvailable); err != nil {
			h.logger.Error("failed to release table", "error", err, "table_number", *order.TableNumber)
		}
	}

	h.logger.Info("payment processed", "payment_id", payment.ID, "order_id", order.ID,
		"method", payment.Method, "amount", payment.Amount)
	h.writeJSON(w, http.StatusCreated, payment)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Method: domain.PaymentMethod(r.URL.Query().Get("method"))}

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

	list, err := h.store.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list payments", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing payment id")
		return
	}

	payment, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get payment", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if payment == nil {
		h.writeError(w, http.StatusNotFound, "payment not found")
		return
	}

	h.writeJSON(w, http.StatusOK, payment)
}

func (h *Handler) HandleGetByOrder(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("orderId")
	if orderID == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	payment, err := h.store.GetByOrderID(r.Context(), orderID)
	if err != nil {
		h.logger.Error("failed to get payment", "error", err, "order_id", orderID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if payment == nil {
		h.writeError(w, http.StatusNotFound, "payment not found for this order")
		return
	}

	h.writeJSON(w, http.StatusOK, payment)
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
