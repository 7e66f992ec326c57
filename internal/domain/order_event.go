package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated   = "order.created"
	EventOrderPaid      = "order.paid"
	EventOrderShipped   = "order.shipped"
	EventOrderCompleted = "order.completed"
	EventOrderCancelled = "order.cancelled"
)

type OrderEvent struct {
	OrderID     uint64          `json:"orderId"`
	PublicID    string          `json:"publicId"`
	UserID      uint64          `json:"userId"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

func NewOrderEvent(o *Order, now time.Time) OrderEvent {
	return OrderEvent{
		OrderID:     o.ID,
		PublicID:    o.PublicID,
		UserID:      o.UserID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		OccurredAt:  now,
	}
}
