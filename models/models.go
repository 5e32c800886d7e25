package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product groups one or more purchasable variants under a catalog entry.
type Product struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(256);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Category    string         `gorm:"type:varchar(128);index" json:"category,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Variants    []Variant      `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
}

// Variant is the sellable unit. StockQuantity is the inventory ledger: it is
// only ever changed through conditional single-statement updates, never via a
// read-modify-write cycle.
type Variant struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	Name          string         `gorm:"type:varchar(256);not null" json:"name"`
	Price         float64        `gorm:"not null" json:"price"`
	StockQuantity int            `gorm:"not null;default:0" json:"stock_quantity"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// User is kept minimal: identity comes from the JWT, this row carries contact
// details for notifications and delivery.
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(256);not null" json:"name"`
	Email     string         `gorm:"type:varchar(256);uniqueIndex;not null" json:"email"`
	Role      string         `gorm:"type:varchar(32);not null;default:'Customer'" json:"role"`
	Address   string         `gorm:"type:text" json:"address,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Cart holds a user's pending selections. One cart per user.
type Cart struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Items     []CartItem     `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

// CartItem is one variant line in a cart. Quantity here is advisory only;
// stock is not held until checkout.
type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CartID    uuid.UUID `gorm:"type:uuid;not null;index" json:"cart_id"`
	VariantID uuid.UUID `gorm:"type:uuid;not null;index" json:"variant_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Order is the single source of truth for order lifecycle state; the linked
// Delivery and Payment rows never carry their own status chain copies beyond
// what OrderStatus implies.
type Order struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	OrderStatus       string         `gorm:"type:varchar(20);not null;default:'Pending';index" json:"order_status"`
	TotalAmount       float64        `gorm:"not null" json:"total_amount"`
	Address           string         `gorm:"type:text;not null" json:"address"`
	DeliveryMode      string         `gorm:"type:varchar(32);not null;default:'Standard'" json:"delivery_mode"`
	EstimatedDelivery time.Time      `json:"estimated_delivery"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
	Items             []OrderItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// OrderItem snapshots the variant price at purchase time.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	VariantID uuid.UUID `gorm:"type:uuid;not null" json:"variant_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Price     float64   `gorm:"not null" json:"price"`
}

// Payment tracks settlement for an order. One row per order, created inside
// the checkout transaction.
type Payment struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	Amount        float64    `gorm:"not null" json:"amount"`
	PaymentMethod string     `gorm:"type:varchar(32);not null" json:"payment_method"`
	PaymentStatus string     `gorm:"type:varchar(20);not null;default:'Pending'" json:"payment_status"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Delivery links an order to at most one driver. DriverID is NULL until a
// driver claims the delivery; the claim is a compare-and-set on that NULL.
type Delivery struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	DriverID  *uuid.UUID `gorm:"type:uuid;index" json:"driver_id,omitempty"`
	Address   string     `gorm:"type:text;not null" json:"address"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// VariantView is a variant joined with its product name for display.
type VariantView struct {
	ID            uuid.UUID `json:"id"`
	ProductID     uuid.UUID `json:"product_id"`
	Name          string    `json:"name"`
	ProductName   string    `json:"product_name"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
}

// NotificationLog records every email the notification consumer attempted.
type NotificationLog struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	Recipient string    `gorm:"type:varchar(256);not null" json:"recipient"`
	Type      string    `gorm:"type:varchar(64);not null" json:"type"`
	Status    string    `gorm:"type:varchar(20);not null" json:"status"`
	Error     string    `gorm:"type:text" json:"error,omitempty"`
	Attempts  int       `gorm:"not null;default:0" json:"attempts"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// DeliverySnapshot is the read model served to drivers and admins: the
// delivery joined with its order, customer contact, payment state and the
// purchased lines.
type DeliverySnapshot struct {
	DeliveryID    uuid.UUID          `json:"delivery_id"`
	OrderID       uuid.UUID          `json:"order_id"`
	OrderStatus   string             `json:"order_status"`
	DriverID      *uuid.UUID         `json:"driver_id,omitempty"`
	DriverName    string             `json:"driver_name,omitempty"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	Address       string             `json:"delivery_address"`
	ArrivalDate   time.Time          `json:"arrival_date"`
	TotalAmount   float64            `json:"total_price"`
	PaymentStatus string             `json:"payment_status"`
	PaymentMethod string             `json:"payment_method"`
	CreatedAt     time.Time          `json:"created_at"`
	Items         []DeliveryLineItem `json:"items,omitempty" gorm:"-"`
}

// DeliveryLineItem is one purchased line inside a DeliverySnapshot.
type DeliveryLineItem struct {
	OrderID     uuid.UUID `json:"-"`
	VariantID   uuid.UUID `json:"variant_id"`
	ProductName string    `json:"product_name"`
	VariantName string    `json:"variant_name"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
}
