package domain

import "time"

// OrderCreatedEvent is published to Kafka when an order is placed.
type OrderCreatedEvent struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Type        OrderType       `json:"type"`
	TableNumber *int            `json:"table_number,omitempty"`
	Items       []OrderLineItem `json:"items"`
	Notes       string          `json:"notes,omitempty"`
	Total       float64         `json:"total"`
	Timestamp   time.Time       `json:"timestamp"`
}

// OrderStatusChangedEvent is published to Kafka on every status transition.
type OrderStatusChangedEvent struct {
	OrderID     string      `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	Status      OrderStatus `json:"status"`
	Timestamp   time.Time   `json:"timestamp"`
}
