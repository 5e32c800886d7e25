package models

// Order lifecycle statuses. Orders move forward along
// Pending -> Confirmed -> Shipped -> Delivered; Failed is reachable from the
// in-progress states when a delivery is abandoned.
const (
	OrderStatusPending   = "Pending"
	OrderStatusConfirmed = "Confirmed"
	OrderStatusShipped   = "Shipped"
	OrderStatusDelivered = "Delivered"
	OrderStatusFailed    = "Failed"
)

// Payment statuses.
const (
	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCard = "Card"
	PaymentMethodCOD  = "Cash on Delivery"
)

// Roles carried in the JWT.
const (
	RoleCustomer = "Customer"
	RoleDriver   = "Delivery Driver"
	RoleAdmin    = "Admin"
)

// orderTransitions lists the legal forward moves a driver may request.
// Claiming handles Pending -> Confirmed separately, so it is absent here.
var orderTransitions = map[string][]string{
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusFailed},
	OrderStatusShipped:   {OrderStatusDelivered, OrderStatusFailed},
}

// CanTransition reports whether an order may move from one status to another
// via a driver status update.
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusFailed:
		return true
	}
	return false
}
