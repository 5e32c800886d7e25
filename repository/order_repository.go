package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/KeshRD/BrightBuy-G16/common/errors"
	"github.com/KeshRD/BrightBuy-G16/models"
)

// OrderRepository defines data access for orders, their payments and
// delivery rows. Checkout runs through Transaction so the order, its items,
// the payment row, the delivery row and the stock reservations commit or
// roll back together.
type OrderRepository interface {
	// Transaction runs fn inside a database transaction, exposing the tx
	// handle so other repositories can be rebound to it.
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	CreateOrder(tx *gorm.DB, order *models.Order) error
	CreateOrderItem(tx *gorm.DB, item *models.OrderItem) error
	CreatePayment(tx *gorm.DB, payment *models.Payment) error
	CreateDelivery(tx *gorm.DB, delivery *models.Delivery) error
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindByIDAndUserID(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	FindPaymentByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	FindPaymentsByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]models.Payment, error)
}

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *GormOrderRepository) CreateOrder(tx *gorm.DB, order *models.Order) error {
	return tx.Create(order).Error
}

func (r *GormOrderRepository) CreateOrderItem(tx *gorm.DB, item *models.OrderItem) error {
	return tx.Create(item).Error
}

func (r *GormOrderRepository) CreatePayment(tx *gorm.DB, payment *models.Payment) error {
	return tx.Create(payment).Error
}

func (r *GormOrderRepository) CreateDelivery(tx *gorm.DB, delivery *models.Delivery) error {
	return tx.Create(delivery).Error
}

func (r *GormOrderRepository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "Order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByIDAndUserID(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ? AND user_id = ?", orderID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "Order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormOrderRepository) FindPaymentByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		First(&payment, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNoPaymentRecord, "Payment record not found")
		}
		return nil, err
	}
	return &payment, nil
}

func (r *GormOrderRepository) FindPaymentsByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]models.Payment, error) {
	if len(orderIDs) == 0 {
		return map[uuid.UUID]models.Payment{}, nil
	}
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	byOrder := make(map[uuid.UUID]models.Payment, len(payments))
	for _, p := range payments {
		byOrder[p.OrderID] = p
	}
	return byOrder, nil
}
