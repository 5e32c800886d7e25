package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/KeshRD/BrightBuy-G16/common/errors"
	"github.com/KeshRD/BrightBuy-G16/models"
)

// DeliveryRepository handles the driver-facing delivery lifecycle. All state
// changes are single conditional statements guarded by rows-affected; the
// follow-up reads after a zero-row result exist only to pick the right error
// kind and never influence whether the change happened.
type DeliveryRepository interface {
	ListAvailable(ctx context.Context) ([]models.DeliverySnapshot, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID) ([]models.DeliverySnapshot, error)
	ListUndelivered(ctx context.Context) ([]models.DeliverySnapshot, error)
	FindSnapshot(ctx context.Context, deliveryID uuid.UUID) (*models.DeliverySnapshot, error)
	// Claim assigns the delivery to driverID iff it is unclaimed and its
	// order has not yet shipped, confirming the order in the same statement.
	Claim(ctx context.Context, deliveryID, driverID uuid.UUID) error
	// UpdateOrderStatus moves the order behind the delivery from one status
	// to another, iff the delivery belongs to driverID and the order is
	// currently in fromStatuses.
	UpdateOrderStatus(ctx context.Context, deliveryID, driverID uuid.UUID, toStatus string, fromStatuses []string) (int64, error)
	// SettlePayment marks the payment behind the delivery as Paid, iff the
	// delivery belongs to driverID, the order is Delivered and the payment
	// is still Pending.
	SettlePayment(ctx context.Context, deliveryID, driverID uuid.UUID) (int64, error)
	FindDelivery(ctx context.Context, deliveryID uuid.UUID) (*models.Delivery, error)
	// ListLineItems loads the purchased lines for a batch of orders so
	// snapshots can be filled without per-row queries.
	ListLineItems(ctx context.Context, orderIDs []uuid.UUID) ([]models.DeliveryLineItem, error)
}

type GormDeliveryRepository struct {
	db *gorm.DB
}

func NewGormDeliveryRepository(db *gorm.DB) DeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

const snapshotSelect = `
SELECT d.id AS delivery_id,
       d.order_id,
       o.order_status,
       d.driver_id,
       COALESCE(drv.name, '') AS driver_name,
       u.name AS customer_name,
       u.email AS customer_email,
       d.address,
       o.estimated_delivery AS arrival_date,
       o.total_amount,
       p.payment_status,
       p.payment_method,
       d.created_at
FROM deliveries d
JOIN orders o ON o.id = d.order_id
JOIN users u ON u.id = o.user_id
JOIN payments p ON p.order_id = o.id
LEFT JOIN users drv ON drv.id = d.driver_id`

func (r *GormDeliveryRepository) ListAvailable(ctx context.Context) ([]models.DeliverySnapshot, error) {
	var snapshots []models.DeliverySnapshot
	err := r.db.WithContext(ctx).
		Raw(snapshotSelect+`
WHERE d.driver_id IS NULL AND o.order_status IN (?, ?)
ORDER BY d.created_at ASC`, models.OrderStatusPending, models.OrderStatusConfirmed).
		Scan(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *GormDeliveryRepository) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]models.DeliverySnapshot, error) {
	var snapshots []models.DeliverySnapshot
	err := r.db.WithContext(ctx).
		Raw(snapshotSelect+`
WHERE d.driver_id = ?
ORDER BY d.created_at ASC`, driverID).
		Scan(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

// ListUndelivered backs the admin view of everything still in flight.
func (r *GormDeliveryRepository) ListUndelivered(ctx context.Context) ([]models.DeliverySnapshot, error) {
	var snapshots []models.DeliverySnapshot
	err := r.db.WithContext(ctx).
		Raw(snapshotSelect+`
WHERE o.order_status IN ?
ORDER BY d.created_at ASC`, []string{
			models.OrderStatusPending,
			models.OrderStatusConfirmed,
			models.OrderStatusShipped,
		}).
		Scan(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *GormDeliveryRepository) FindSnapshot(ctx context.Context, deliveryID uuid.UUID) (*models.DeliverySnapshot, error) {
	var snapshot models.DeliverySnapshot
	result := r.db.WithContext(ctx).
		Raw(snapshotSelect+`
WHERE d.id = ?`, deliveryID).
		Scan(&snapshot)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "Delivery not found")
	}
	return &snapshot, nil
}

func (r *GormDeliveryRepository) FindDelivery(ctx context.Context, deliveryID uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.db.WithContext(ctx).First(&delivery, "id = ?", deliveryID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "Delivery not found")
		}
		return nil, err
	}
	return &delivery, nil
}

// Claim sets the driver and confirms the order in one statement. The WHERE
// guard loses the race for every caller but one, so two drivers can never
// hold the same delivery. Card orders are already Confirmed when created, so
// the guard accepts both Pending and Confirmed unclaimed orders.
func (r *GormDeliveryRepository) Claim(ctx context.Context, deliveryID, driverID uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`
WITH claimed AS (
    UPDATE deliveries
    SET driver_id = ?, updated_at = NOW()
    WHERE id = ?
      AND driver_id IS NULL
      AND order_id IN (SELECT id FROM orders WHERE order_status IN (?, ?))
    RETURNING order_id
)
UPDATE orders
SET order_status = ?, updated_at = NOW()
WHERE id IN (SELECT order_id FROM claimed)`,
		driverID, deliveryID,
		models.OrderStatusPending, models.OrderStatusConfirmed,
		models.OrderStatusConfirmed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindDelivery(ctx, deliveryID); err != nil {
			return err
		}
		return apperrors.ErrAlreadyClaimed
	}
	return nil
}

func (r *GormDeliveryRepository) ListLineItems(ctx context.Context, orderIDs []uuid.UUID) ([]models.DeliveryLineItem, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var items []models.DeliveryLineItem
	err := r.db.WithContext(ctx).Raw(`
SELECT oi.order_id,
       oi.variant_id,
       p.name AS product_name,
       v.name AS variant_name,
       oi.quantity,
       oi.price
FROM order_items oi
JOIN variants v ON v.id = oi.variant_id
JOIN products p ON p.id = v.product_id
WHERE oi.order_id IN ?`, orderIDs).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormDeliveryRepository) UpdateOrderStatus(ctx context.Context, deliveryID, driverID uuid.UUID, toStatus string, fromStatuses []string) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
UPDATE orders
SET order_status = ?, updated_at = NOW()
WHERE id = (SELECT order_id FROM deliveries WHERE id = ? AND driver_id = ?)
  AND order_status IN ?`,
		toStatus, deliveryID, driverID, fromStatuses)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *GormDeliveryRepository) SettlePayment(ctx context.Context, deliveryID, driverID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
UPDATE payments
SET payment_status = ?, paid_at = NOW(), updated_at = NOW()
FROM deliveries d
JOIN orders o ON o.id = d.order_id
WHERE d.id = ?
  AND d.driver_id = ?
  AND payments.order_id = d.order_id
  AND o.order_status = ?
  AND payments.payment_status = ?`,
		models.PaymentStatusPaid, deliveryID, driverID,
		models.OrderStatusDelivered, models.PaymentStatusPending)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
