package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anshikasharma148/restaurant-management-metro/internal/domain"
)

// KitchenHandler consumes order.created events and forwards a kitchen ticket
// to the configured webhook so the kitchen display picks new orders up
// without polling the API.
type KitchenHandler struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewKitchenHandler(webhookURL string, client *http.Client, logger *slog.Logger) *KitchenHandler {
	return &KitchenHandler{
		webhookURL: webhookURL,
		httpClient: client,
		logger:     logger,
	}
}

type kitchenTicket struct {
	OrderNumber string           `json:"order_number"`
	Type        domain.OrderType `json:"type"`
	TableNumber *int             `json:"table_number,omitempty"`
	Items       []ticketItem     `json:"items"`
	Notes       string           `json:"notes,omitempty"`
	PlacedAt    time.Time        `json:"placed_at"`
}

type ticketItem struct {
	Name     string `json:"name"`
	Variant  string `json:"variant,omitempty"`
	Quantity int    `json:"quantity"`
}

func (h *KitchenHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	h.logger.Info("processing order created event", "order_id", event.OrderID, "order_number", event.OrderNumber)

	if err := h.sendTicket(ctx, event); err != nil {
		h.logger.Error("failed to deliver kitchen ticket", "error", err, "order_number", event.OrderNumber)
		return fmt.Errorf("deliver kitchen ticket: %w", err)
	}

	h.logger.Info("kitchen ticket delivered", "order_number", event.OrderNumber)
	return nil
}

func (h *KitchenHandler) sendTicket(ctx context.Context, event domain.OrderCreatedEvent) error {
	ticket := kitchenTicket{
		OrderNumber: event.OrderNumber,
		Type:        event.Type,
		TableNumber: event.TableNumber,
		Notes:       event.Notes,
		PlacedAt:    event.Timestamp,
	}
	for _, item := range event.Items {
		ticket.Items = append(ticket.Items, ticketItem{
			Name:     item.Name,
			Variant:  item.Variant,
			Quantity: item.Quantity,
		})
	}

	data, err := json.Marshal(ticket)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.webhookURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("kitchen webhook returned status %d", resp.StatusCode)
	}

	return nil
}
