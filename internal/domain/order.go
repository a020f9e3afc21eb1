package domain

import (
	"errors"
	"time"
)

type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine-in"
	OrderTypeTakeaway OrderType = "takeaway"
)

func (t OrderType) Valid() bool {
	return t == OrderTypeDineIn || t == OrderTypeTakeaway
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady, OrderStatusCompleted:
		return true
	}
	return false
}

var (
	ErrNegativePrice       = errors.New("line item price must be non-negative")
	ErrNonPositiveQuantity = errors.New("line item quantity must be positive")
)

// OrderLineItem is one ordered menu item embedded in an Order. Name and
// price are captured at order time so later menu edits do not alter
// historical orders.
type OrderLineItem struct {
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	Variant    string  `json:"variant,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

// NewOrderLineItem validates price and quantity at construction time.
func NewOrderLineItem(menuItemID, name string, quantity int, price float64, variant, notes string) (OrderLineItem, error) {
	if price < 0 {
		return OrderLineItem{}, ErrNegativePrice
	}
	if quantity < 1 {
		return OrderLineItem{}, ErrNonPositiveQuantity
	}
	return OrderLineItem{
		MenuItemID: menuItemID,
		Name:       name,
		Quantity:   quantity,
		Price:      price,
		Variant:    variant,
		Notes:      notes,
	}, nil
}

// OrderTotals holds the four derived money fields of an order.
// Tax is computed on the post-discount amount, never on the raw subtotal.
type OrderTotals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

type Order struct {
	ID          string          `json:"id"`
	OrderNumber string          `json:"order_number"`
	Type        OrderType       `json:"type"`
	Status      OrderStatus     `json:"status"`
	Items       []OrderLineItem `json:"items"`
	TableNumber *int            `json:"table_number,omitempty"`
	Notes       string          `json:"notes"`
	Subtotal    float64         `json:"subtotal"`
	Discount    float64         `json:"discount"`
	Tax         float64         `json:"tax"`
	Total       float64         `json:"total"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
