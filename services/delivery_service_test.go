package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	apperrors "github.com/KeshRD/BrightBuy-G16/common/errors"
	"github.com/KeshRD/BrightBuy-G16/models"
	"github.com/KeshRD/BrightBuy-G16/services"
)

// ---- mock delivery repository ----

type mockDeliveryRepo struct {
	available      []models.DeliverySnapshot
	mine           []models.DeliverySnapshot
	snapshot       *models.DeliverySnapshot
	snapshotErr    error
	claimErr       error
	statusAffected int64
	statusErr      error
	settleAffected int64
	settleErr      error
	delivery       *models.Delivery
	deliveryErr    error
	lineItems      []models.DeliveryLineItem
}

func (m *mockDeliveryRepo) ListAvailable(_ context.Context) ([]models.DeliverySnapshot, error) {
	return m.available, nil
}
func (m *mockDeliveryRepo) ListByDriver(_ context.Context, _ uuid.UUID) ([]models.DeliverySnapshot, error) {
	return m.mine, nil
}
func (m *mockDeliveryRepo) ListUndelivered(_ context.Context) ([]models.DeliverySnapshot, error) {
	return m.available, nil
}
func (m *mockDeliveryRepo) FindSnapshot(_ context.Context, _ uuid.UUID) (*models.DeliverySnapshot, error) {
	return m.snapshot, m.snapshotErr
}
func (m *mockDeliveryRepo) Claim(_ context.Context, _, _ uuid.UUID) error {
	return m.claimErr
}
func (m *mockDeliveryRepo) UpdateOrderStatus(_ context.Context, _, _ uuid.UUID, _ string, _ []string) (int64, error) {
	return m.statusAffected, m.statusErr
}
func (m *mockDeliveryRepo) SettlePayment(_ context.Context, _, _ uuid.UUID) (int64, error) {
	return m.settleAffected, m.settleErr
}
func (m *mockDeliveryRepo) FindDelivery(_ context.Context, _ uuid.UUID) (*models.Delivery, error) {
	return m.delivery, m.deliveryErr
}
func (m *mockDeliveryRepo) ListLineItems(_ context.Context, _ []uuid.UUID) ([]models.DeliveryLineItem, error) {
	return m.lineItems, nil
}

// ---- mock order repository ----

type mockOrderRepo struct {
	order           *models.Order
	orderErr        error
	payment         *models.Payment
	paymentErr      error
	txErr           error
	payments        map[uuid.UUID]models.Payment
	userOrders      []models.Order
	createdOrder    *models.Order
	createdDelivery *models.Delivery
}

func (m *mockOrderRepo) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	if err := fn(nil); err != nil {
		return err
	}
	return m.txErr
}
func (m *mockOrderRepo) CreateOrder(_ *gorm.DB, order *models.Order) error {
	order.ID = uuid.New()
	m.createdOrder = order
	return nil
}
func (m *mockOrderRepo) CreateOrderItem(_ *gorm.DB, item *models.OrderItem) error {
	item.ID = uuid.New()
	return nil
}
func (m *mockOrderRepo) CreatePayment(_ *gorm.DB, payment *models.Payment) error {
	payment.ID = uuid.New()
	return nil
}
func (m *mockOrderRepo) CreateDelivery(_ *gorm.DB, delivery *models.Delivery) error {
	delivery.ID = uuid.New()
	m.createdDelivery = delivery
	return nil
}
func (m *mockOrderRepo) FindByID(_ context.Context, _ uuid.UUID) (*models.Order, error) {
	return m.order, m.orderErr
}
func (m *mockOrderRepo) FindByIDAndUserID(_ context.Context, _, _ uuid.UUID) (*models.Order, error) {
	return m.order, m.orderErr
}
func (m *mockOrderRepo) FindByUserID(_ context.Context, _ uuid.UUID) ([]models.Order, error) {
	return m.userOrders, nil
}
func (m *mockOrderRepo) FindPaymentByOrderID(_ context.Context, _ uuid.UUID) (*models.Payment, error) {
	return m.payment, m.paymentErr
}
func (m *mockOrderRepo) FindPaymentsByOrderIDs(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]models.Payment, error) {
	return m.payments, nil
}

// ---- tests ----

func newDeliveryService(deliveryRepo *mockDeliveryRepo, orderRepo *mockOrderRepo) *services.DeliveryService {
	return services.NewDeliveryService(deliveryRepo, orderRepo, nil, "", nil)
}

func TestClaim_ReturnsSnapshot(t *testing.T) {
	deliveryID := uuid.New()
	driverID := uuid.New()
	repo := &mockDeliveryRepo{
		snapshot: &models.DeliverySnapshot{
			DeliveryID:  deliveryID,
			OrderID:     uuid.New(),
			OrderStatus: models.OrderStatusConfirmed,
			DriverID:    &driverID,
		},
		delivery: &models.Delivery{ID: deliveryID, OrderID: uuid.New(), DriverID: &driverID},
	}
	svc := newDeliveryService(repo, &mockOrderRepo{})

	snap, err := svc.Claim(context.Background(), deliveryID, driverID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, snap.OrderStatus)
	assert.Equal(t, driverID, *snap.DriverID)
}

func TestClaim_AlreadyClaimed(t *testing.T) {
	repo := &mockDeliveryRepo{claimErr: apperrors.ErrAlreadyClaimed}
	svc := newDeliveryService(repo, &mockOrderRepo{})

	snap, err := svc.Claim(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrAlreadyClaimed)
	assert.Nil(t, snap)
}

func TestAdvanceStatus_UnknownTarget(t *testing.T) {
	svc := newDeliveryService(&mockDeliveryRepo{}, &mockOrderRepo{})

	_, err := svc.AdvanceStatus(context.Background(), uuid.New(), uuid.New(), "Teleported")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAdvanceStatus_NoRouteToTarget(t *testing.T) {
	svc := newDeliveryService(&mockDeliveryRepo{}, &mockOrderRepo{})

	_, err := svc.AdvanceStatus(context.Background(), uuid.New(), uuid.New(), models.OrderStatusPending)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestAdvanceStatus_NotAssigned(t *testing.T) {
	deliveryID := uuid.New()
	otherDriver := uuid.New()
	repo := &mockDeliveryRepo{
		statusAffected: 0,
		delivery:       &models.Delivery{ID: deliveryID, OrderID: uuid.New(), DriverID: &otherDriver},
	}
	svc := newDeliveryService(repo, &mockOrderRepo{})

	_, err := svc.AdvanceStatus(context.Background(), deliveryID, uuid.New(), models.OrderStatusShipped)
	assert.ErrorIs(t, err, apperrors.ErrNotAssigned)
}

func TestAdvanceStatus_InvalidTransition(t *testing.T) {
	deliveryID := uuid.New()
	driverID := uuid.New()
	repo := &mockDeliveryRepo{
		statusAffected: 0,
		delivery:       &models.Delivery{ID: deliveryID, OrderID: uuid.New(), DriverID: &driverID},
	}
	orderRepo := &mockOrderRepo{
		order: &models.Order{OrderStatus: models.OrderStatusDelivered},
	}
	svc := newDeliveryService(repo, orderRepo)

	// Delivered is terminal: no move back to Shipped
	_, err := svc.AdvanceStatus(context.Background(), deliveryID, driverID, models.OrderStatusShipped)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestAdvanceStatus_Success(t *testing.T) {
	deliveryID := uuid.New()
	driverID := uuid.New()
	repo := &mockDeliveryRepo{
		statusAffected: 1,
		snapshot: &models.DeliverySnapshot{
			DeliveryID:  deliveryID,
			OrderID:     uuid.New(),
			OrderStatus: models.OrderStatusShipped,
			DriverID:    &driverID,
		},
		delivery: &models.Delivery{ID: deliveryID, OrderID: uuid.New(), DriverID: &driverID},
	}
	svc := newDeliveryService(repo, &mockOrderRepo{})

	snap, err := svc.AdvanceStatus(context.Background(), deliveryID, driverID, models.OrderStatusShipped)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, snap.OrderStatus)
}

func TestSettle_NotYetDelivered(t *testing.T) {
	deliveryID := uuid.New()
	driverID := uuid.New()
	repo := &mockDeliveryRepo{
		settleAffected: 0,
		delivery:       &models.Delivery{ID: deliveryID, OrderID: uuid.New(), DriverID: &driverID},
	}
	orderRepo := &mockOrderRepo{
		order:   &models.Order{OrderStatus: models.OrderStatusShipped},
		payment: &models.Payment{PaymentStatus: models.PaymentStatusPending},
	}
	svc := newDeliveryService(repo, orderRepo)

	_, err := svc.Settle(context.Background(), deliveryID, driverID)
	assert.ErrorIs(t, err, apperrors.ErrNotYetDelivered)
}

func TestSettle_AlreadyPaid(t *testing.T) {
	deliveryID := uuid.New()
	driverID := uuid.New()
	repo := &mockDeliveryRepo{
		settleAffected: 0,
		delivery:       &models.Delivery{ID: deliveryID, OrderID: uuid.New(), DriverID: &driverID},
	}
	orderRepo := &mockOrderRepo{
		order:   &models.Order{OrderStatus: models.OrderStatusDelivered},
		payment: &models.Payment{PaymentStatus: models.PaymentStatusPaid},
	}
	svc := newDeliveryService(repo, orderRepo)

	_, err := svc.Settle(context.Background(), deliveryID, driverID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyPaid)
}

func TestSettle_NotAssigned(t *testing.T) {
	deliveryID := uuid.New()
	repo := &mockDeliveryRepo{
		settleAffected: 0,
		delivery:       &models.Delivery{ID: deliveryID, OrderID: uuid.New(), DriverID: nil},
	}
	svc := newDeliveryService(repo, &mockOrderRepo{})

	_, err := svc.Settle(context.Background(), deliveryID, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotAssigned)
}

func TestSettle_Success(t *testing.T) {
	deliveryID := uuid.New()
	driverID := uuid.New()
	repo := &mockDeliveryRepo{
		settleAffected: 1,
		snapshot: &models.DeliverySnapshot{
			DeliveryID:    deliveryID,
			OrderID:       uuid.New(),
			OrderStatus:   models.OrderStatusDelivered,
			PaymentStatus: models.PaymentStatusPaid,
			DriverID:      &driverID,
		},
		delivery: &models.Delivery{ID: deliveryID, OrderID: uuid.New(), DriverID: &driverID},
	}
	svc := newDeliveryService(repo, &mockOrderRepo{})

	snap, err := svc.Settle(context.Background(), deliveryID, driverID)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, snap.PaymentStatus)
}

func TestListDeliveries_UnknownFilter(t *testing.T) {
	svc := newDeliveryService(&mockDeliveryRepo{}, &mockOrderRepo{})

	_, err := svc.ListDeliveries(context.Background(), uuid.New(), "everything")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestListDeliveries_FillsItems(t *testing.T) {
	orderID := uuid.New()
	repo := &mockDeliveryRepo{
		available: []models.DeliverySnapshot{{DeliveryID: uuid.New(), OrderID: orderID}},
		lineItems: []models.DeliveryLineItem{
			{OrderID: orderID, ProductName: "Galaxy S24", VariantName: "128GB", Quantity: 1, Price: 899},
		},
	}
	svc := newDeliveryService(repo, &mockOrderRepo{})

	snaps, err := svc.ListDeliveries(context.Background(), uuid.New(), "")
	assert.NoError(t, err)
	assert.Len(t, snaps, 1)
	assert.Len(t, snaps[0].Items, 1)
	assert.Equal(t, "Galaxy S24", snaps[0].Items[0].ProductName)
}
