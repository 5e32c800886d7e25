package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	apperrors "github.com/KeshRD/BrightBuy-G16/common/errors"
	"github.com/KeshRD/BrightBuy-G16/models"
	repositories "github.com/KeshRD/BrightBuy-G16/repository"
	"github.com/KeshRD/BrightBuy-G16/services"
)

// ---- mock inventory repository ----

type mockInventoryRepo struct {
	variants    map[uuid.UUID]*models.Variant
	reserveErrs map[uuid.UUID]error
	reserved    []uuid.UUID
	restockErr  error
}

func (m *mockInventoryRepo) WithTx(_ *gorm.DB) repositories.InventoryRepository {
	return m
}
func (m *mockInventoryRepo) FindVariant(_ context.Context, id uuid.UUID) (*models.Variant, error) {
	if v, ok := m.variants[id]; ok {
		return v, nil
	}
	return nil, apperrors.Wrap(apperrors.ErrNotFound, "Variant not found")
}
func (m *mockInventoryRepo) FindVariants(_ context.Context, ids []uuid.UUID) ([]models.Variant, error) {
	var out []models.Variant
	for _, id := range ids {
		if v, ok := m.variants[id]; ok {
			out = append(out, *v)
		}
	}
	return out, nil
}
func (m *mockInventoryRepo) FindVariantViews(_ context.Context, ids []uuid.UUID) ([]models.VariantView, error) {
	var out []models.VariantView
	for _, id := range ids {
		if v, ok := m.variants[id]; ok {
			out = append(out, models.VariantView{
				ID:            v.ID,
				ProductID:     v.ProductID,
				Name:          v.Name,
				ProductName:   "Product",
				Price:         v.Price,
				StockQuantity: v.StockQuantity,
			})
		}
	}
	return out, nil
}
func (m *mockInventoryRepo) Reserve(_ context.Context, id uuid.UUID, _ int) error {
	if err, ok := m.reserveErrs[id]; ok {
		return err
	}
	m.reserved = append(m.reserved, id)
	return nil
}
func (m *mockInventoryRepo) Restock(_ context.Context, _ uuid.UUID, _ int) error {
	return m.restockErr
}

// ---- mock cart repository ----

type mockCartRepo struct {
	cart            *models.Cart
	removedVariants []uuid.UUID
	addedItem       *models.CartItem
	updateErr       error
	removeErr       error
}

func (m *mockCartRepo) FindByUserID(_ context.Context, _ uuid.UUID) (*models.Cart, error) {
	return m.cart, nil
}
func (m *mockCartRepo) FindOrCreateByUserID(_ context.Context, userID uuid.UUID) (*models.Cart, error) {
	if m.cart == nil {
		m.cart = &models.Cart{ID: uuid.New(), UserID: userID}
	}
	return m.cart, nil
}
func (m *mockCartRepo) AddItem(_ context.Context, cartID, variantID uuid.UUID, quantity int) (*models.CartItem, error) {
	m.addedItem = &models.CartItem{ID: uuid.New(), CartID: cartID, VariantID: variantID, Quantity: quantity}
	return m.addedItem, nil
}
func (m *mockCartRepo) UpdateItemQuantity(_ context.Context, _, _ uuid.UUID, _ int) error {
	return m.updateErr
}
func (m *mockCartRepo) RemoveItem(_ context.Context, _, _ uuid.UUID) error {
	return m.removeErr
}
func (m *mockCartRepo) ClearByUserID(_ context.Context, _ uuid.UUID) error {
	return nil
}
func (m *mockCartRepo) RemoveByVariantIDs(_ *gorm.DB, _ uuid.UUID, variantIDs []uuid.UUID) error {
	m.removedVariants = variantIDs
	return nil
}

// ---- mock sns publisher ----

type mockSNSPublisher struct {
	events chan models.OrderConfirmedEvent
}

func (m *mockSNSPublisher) PublishOrderConfirmed(_ context.Context, _ string, event models.OrderConfirmedEvent) error {
	m.events <- event
	return nil
}

// ---- mock user repository ----

type mockUserRepo struct {
	user *models.User
	err  error
}

func (m *mockUserRepo) FindByID(_ context.Context, _ uuid.UUID) (*models.User, error) {
	return m.user, m.err
}

// ---- helpers ----

func newOrderService(orderRepo *mockOrderRepo, invRepo *mockInventoryRepo, cartRepo *mockCartRepo) *services.OrderService {
	userRepo := &mockUserRepo{user: &models.User{ID: uuid.New(), Name: "Kasun", Email: "kasun@example.com"}}
	return services.NewOrderService(orderRepo, invRepo, cartRepo, userRepo, nil, nil, nil, "", nil, "", nil)
}

func codRequest(variantID uuid.UUID) *services.CreateOrderRequest {
	req := &services.CreateOrderRequest{
		Address:       "12 Galle Road",
		City:          "Colombo",
		PostalCode:    "00300",
		PaymentMethod: models.PaymentMethodCOD,
	}
	req.Items = append(req.Items, struct {
		VariantID uuid.UUID `json:"variant_id" binding:"required"`
		Quantity  int       `json:"quantity" binding:"required,min=1"`
		Price     float64   `json:"price" binding:"required,gt=0"`
	}{VariantID: variantID, Quantity: 2, Price: 450})
	return req
}

// ---- tests ----

func TestCreateOrder_CashOnDelivery(t *testing.T) {
	variantID := uuid.New()
	invRepo := &mockInventoryRepo{variants: map[uuid.UUID]*models.Variant{
		variantID: {ID: variantID, Name: "128GB", Price: 450, StockQuantity: 10},
	}}
	cartRepo := &mockCartRepo{}
	svc := newOrderService(&mockOrderRepo{}, invRepo, cartRepo)

	resp, err := svc.CreateOrder(context.Background(), uuid.New(), "", codRequest(variantID))
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, resp.OrderStatus)
	assert.Equal(t, models.PaymentStatusPending, resp.PaymentStatus)
	assert.Equal(t, 900.0, resp.Total)
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, []uuid.UUID{variantID}, invRepo.reserved)
	assert.Equal(t, []uuid.UUID{variantID}, cartRepo.removedVariants)
}

func TestCreateOrder_ComposesDeliveryAddress(t *testing.T) {
	variantID := uuid.New()
	invRepo := &mockInventoryRepo{variants: map[uuid.UUID]*models.Variant{
		variantID: {ID: variantID, Name: "128GB", Price: 450, StockQuantity: 10},
	}}
	orderRepo := &mockOrderRepo{}
	svc := newOrderService(orderRepo, invRepo, &mockCartRepo{})

	_, err := svc.CreateOrder(context.Background(), uuid.New(), "", codRequest(variantID))
	assert.NoError(t, err)
	assert.Equal(t, "12 Galle Road, Colombo, 00300", orderRepo.createdOrder.Address)
	assert.Equal(t, "12 Galle Road, Colombo, 00300", orderRepo.createdDelivery.Address)
}

func TestCreateOrder_CardConfirmsImmediately(t *testing.T) {
	variantID := uuid.New()
	invRepo := &mockInventoryRepo{variants: map[uuid.UUID]*models.Variant{
		variantID: {ID: variantID, Name: "128GB", Price: 450, StockQuantity: 10},
	}}
	svc := newOrderService(&mockOrderRepo{}, invRepo, &mockCartRepo{})

	req := codRequest(variantID)
	req.PaymentMethod = models.PaymentMethodCard
	req.Card = &services.CardDetails{Number: "4111111111111234", Expiry: "12/27", CVC: "123"}

	resp, err := svc.CreateOrder(context.Background(), uuid.New(), "", req)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, resp.OrderStatus)
	assert.Equal(t, models.PaymentStatusPaid, resp.PaymentStatus)
}

func TestCreateOrder_DeclinedCardWritesNothing(t *testing.T) {
	variantID := uuid.New()
	invRepo := &mockInventoryRepo{variants: map[uuid.UUID]*models.Variant{
		variantID: {ID: variantID, Name: "128GB", Price: 450, StockQuantity: 10},
	}}
	svc := newOrderService(&mockOrderRepo{}, invRepo, &mockCartRepo{})

	req := codRequest(variantID)
	req.PaymentMethod = models.PaymentMethodCard
	req.Card = &services.CardDetails{Number: "4111111111110000", Expiry: "12/27", CVC: "123"}

	resp, err := svc.CreateOrder(context.Background(), uuid.New(), "", req)
	assert.ErrorIs(t, err, apperrors.ErrCardDeclined)
	assert.Nil(t, resp)
	assert.Empty(t, invRepo.reserved)
}

func TestCreateOrder_ReservationFailureAborts(t *testing.T) {
	variantID := uuid.New()
	stockErr := apperrors.Wrap(apperrors.ErrInsufficientStock, "Insufficient stock for variant 128GB")
	invRepo := &mockInventoryRepo{
		variants:    map[uuid.UUID]*models.Variant{variantID: {ID: variantID, Name: "128GB"}},
		reserveErrs: map[uuid.UUID]error{variantID: stockErr},
	}
	cartRepo := &mockCartRepo{}
	svc := newOrderService(&mockOrderRepo{}, invRepo, cartRepo)

	resp, err := svc.CreateOrder(context.Background(), uuid.New(), "", codRequest(variantID))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)
	assert.Nil(t, resp)
	assert.Empty(t, cartRepo.removedVariants)
}

func TestCreateOrder_UnsupportedPaymentMethod(t *testing.T) {
	variantID := uuid.New()
	svc := newOrderService(&mockOrderRepo{}, &mockInventoryRepo{}, &mockCartRepo{})

	req := codRequest(variantID)
	req.PaymentMethod = "Barter"

	_, err := svc.CreateOrder(context.Background(), uuid.New(), "", req)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateOrder_UnsupportedDeliveryMode(t *testing.T) {
	variantID := uuid.New()
	svc := newOrderService(&mockOrderRepo{}, &mockInventoryRepo{}, &mockCartRepo{})

	req := codRequest(variantID)
	req.DeliveryMode = "Teleport"

	_, err := svc.CreateOrder(context.Background(), uuid.New(), "", req)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateOrder_PublishesOrderConfirmedEvent(t *testing.T) {
	variantID := uuid.New()
	invRepo := &mockInventoryRepo{variants: map[uuid.UUID]*models.Variant{
		variantID: {ID: variantID, Name: "128GB", Price: 450, StockQuantity: 10},
	}}
	userRepo := &mockUserRepo{user: &models.User{ID: uuid.New(), Name: "Kasun", Email: "kasun@example.com"}}
	sns := &mockSNSPublisher{events: make(chan models.OrderConfirmedEvent, 1)}
	svc := services.NewOrderService(&mockOrderRepo{}, invRepo, &mockCartRepo{}, userRepo,
		nil, nil, nil, "", sns, "arn:aws:sns:us-east-1:000000000000:orders", nil)

	_, err := svc.CreateOrder(context.Background(), uuid.New(), "", codRequest(variantID))
	assert.NoError(t, err)

	select {
	case event := <-sns.events:
		assert.Equal(t, models.EventOrderConfirmed, event.EventType)
		assert.Equal(t, "kasun@example.com", event.CustomerEmail)
		assert.Equal(t, "12 Galle Road, Colombo, 00300", event.Address)
		assert.Len(t, event.Items, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("order-confirmed event was not published")
	}
}

func TestGetOrders_Buckets(t *testing.T) {
	userID := uuid.New()
	pending := models.Order{ID: uuid.New(), UserID: userID, OrderStatus: models.OrderStatusPending}
	shipped := models.Order{ID: uuid.New(), UserID: userID, OrderStatus: models.OrderStatusShipped}
	delivered := models.Order{ID: uuid.New(), UserID: userID, OrderStatus: models.OrderStatusDelivered}

	orderRepo := &mockOrderRepo{
		userOrders: []models.Order{pending, shipped, delivered},
		payments: map[uuid.UUID]models.Payment{
			pending.ID:   {OrderID: pending.ID, PaymentStatus: models.PaymentStatusPending},
			shipped.ID:   {OrderID: shipped.ID, PaymentStatus: models.PaymentStatusPaid},
			delivered.ID: {OrderID: delivered.ID, PaymentStatus: models.PaymentStatusPending},
		},
	}
	svc := newOrderService(orderRepo, &mockInventoryRepo{}, &mockCartRepo{})

	buckets, err := svc.GetOrders(context.Background(), userID)
	assert.NoError(t, err)
	assert.Len(t, buckets.ToShip, 1)
	assert.Len(t, buckets.ToReceive, 1)
	assert.Len(t, buckets.Received, 1)
	// the pending COD order and the delivered-but-unsettled order both await payment
	assert.Len(t, buckets.ToPay, 2)
}
