package domain

import "time"

type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodCard  PaymentMethod = "card"
	PaymentMethodUPI   PaymentMethod = "upi"
	PaymentMethodSplit PaymentMethod = "split"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodUPI, PaymentMethodSplit:
		return true
	}
	return false
}

type Payment struct {
	ID             string        `json:"id"`
	OrderID        string        `json:"order_id"`
	Method         PaymentMethod `json:"method"`
	Amount         float64       `json:"amount"`
	ReceivedAmount float64       `json:"received_amount"`
	Change         float64       `json:"change"`
	ProcessedBy    string        `json:"processed_by"`
	CreatedAt      time.Time     `json:"created_at"`
}
