package models

import (
	"time"

	"github.com/google/uuid"
)

// Event types published to SNS and Kafka.
const (
	EventOrderConfirmed  = "order.confirmed"
	EventOrderClaimed    = "order.claimed"
	EventOrderStatus     = "order.status_changed"
	EventPaymentSettled  = "payment.settled"
	EventInventoryLow    = "inventory.low_stock"
	NotificationTypeMail = "order_confirmation_email"
)

// OrderConfirmedEvent is published after a checkout transaction commits. The
// notification consumer turns it into a confirmation email.
type OrderConfirmedEvent struct {
	EventType     string           `json:"event_type"`
	OrderID       uuid.UUID        `json:"order_id"`
	UserID        uuid.UUID        `json:"user_id"`
	CustomerName  string           `json:"customer_name"`
	CustomerEmail string           `json:"customer_email"`
	TotalAmount   float64          `json:"total_amount"`
	PaymentMethod string           `json:"payment_method"`
	Address       string           `json:"address"`
	Items         []OrderEventItem `json:"items"`
	Timestamp     time.Time        `json:"timestamp"`
}

// OrderEventItem is one purchased line inside an order event.
type OrderEventItem struct {
	VariantID   uuid.UUID `json:"variant_id"`
	VariantName string    `json:"variant_name"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
}

// OrderLifecycleEvent is emitted to Kafka on every status change so
// downstream consumers can track the order timeline.
type OrderLifecycleEvent struct {
	EventType string    `json:"event_type"`
	OrderID   uuid.UUID `json:"order_id"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	ActorID   uuid.UUID `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
}
