package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/KeshRD/BrightBuy-G16/common/errors"
	"github.com/KeshRD/BrightBuy-G16/common/logger"
	"github.com/KeshRD/BrightBuy-G16/kafka"
	"github.com/KeshRD/BrightBuy-G16/models"
	"github.com/KeshRD/BrightBuy-G16/pkg/aws"
	repositories "github.com/KeshRD/BrightBuy-G16/repository"
)

// CreateOrderRequest is the checkout payload. Item prices are the snapshot
// recorded on the order, decoupled from later catalog price changes.
type CreateOrderRequest struct {
	Items []struct {
		VariantID uuid.UUID `json:"variant_id" binding:"required"`
		Quantity  int       `json:"quantity" binding:"required,min=1"`
		Price     float64   `json:"price" binding:"required,gt=0"`
	} `json:"items" binding:"required,min=1,dive"`
	Address       string       `json:"address" binding:"required"`
	City          string       `json:"city" binding:"required"`
	PostalCode    string       `json:"postal_code" binding:"required"`
	DeliveryMode  string       `json:"delivery_mode"`
	PaymentMethod string       `json:"payment_method" binding:"required"`
	Card          *CardDetails `json:"card,omitempty"`
}

// DeliveryAddress flattens the shipping fields into the single string stored
// on the order and delivery rows.
func (r *CreateOrderRequest) DeliveryAddress() string {
	return fmt.Sprintf("%s, %s, %s", r.Address, r.City, r.PostalCode)
}

type OrderResponse struct {
	OrderID           uuid.UUID          `json:"order_id"`
	OrderDate         time.Time          `json:"order_date"`
	OrderStatus       string             `json:"order_status"`
	PaymentStatus     string             `json:"payment_status"`
	Total             float64            `json:"total"`
	EstimatedDelivery time.Time          `json:"estimated_delivery"`
	Items             []models.OrderItem `json:"items"`
}

// OrderBuckets groups a customer's orders the way the storefront displays
// them. An order can appear in more than one bucket (a delivered
// cash-on-delivery order awaiting settlement is both toPay and received).
type OrderBuckets struct {
	ToPay     []models.Order `json:"to_pay"`
	ToShip    []models.Order `json:"to_ship"`
	ToReceive []models.Order `json:"to_receive"`
	Received  []models.Order `json:"received"`
}

// Delivery lead times per mode.
const (
	DeliveryModeStandard = "Standard"
	DeliveryModeExpress  = "Express"

	standardLeadDays = 5
	expressLeadDays  = 2
)

type OrderService struct {
	orderRepo     repositories.OrderRepository
	inventoryRepo repositories.InventoryRepository
	cartRepo      repositories.CartRepository
	userRepo      repositories.UserRepository
	idempotency   *repositories.IdempotencyStore
	cartCache     *repositories.CartCache
	producer      kafka.ProducerAPI
	ordersTopic   string
	snsClient     aws.SNSPublisher
	snsTopicArn   string
	metrics       *aws.MetricsClient
}

func NewOrderService(
	orderRepo repositories.OrderRepository,
	inventoryRepo repositories.InventoryRepository,
	cartRepo repositories.CartRepository,
	userRepo repositories.UserRepository,
	idempotency *repositories.IdempotencyStore,
	cartCache *repositories.CartCache,
	producer kafka.ProducerAPI,
	ordersTopic string,
	snsClient aws.SNSPublisher,
	snsTopicArn string,
	metrics *aws.MetricsClient,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		inventoryRepo: inventoryRepo,
		cartRepo:      cartRepo,
		userRepo:      userRepo,
		idempotency:   idempotency,
		cartCache:     cartCache,
		producer:      producer,
		ordersTopic:   ordersTopic,
		snsClient:     snsClient,
		snsTopicArn:   snsTopicArn,
		metrics:       metrics,
	}
}

// CreateOrder converts a selection into a durable order. Everything inside
// the transaction is all-or-nothing: if any reservation fails, no order, no
// payment, no delivery row and no stock change persists. Notifications and
// events run only after commit and never roll the order back.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, idempotencyKey string, req *CreateOrderRequest) (*OrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "At least one item is required")
	}

	if idempotencyKey != "" && s.idempotency != nil {
		if existing, err := s.idempotency.Lookup(ctx, userID, idempotencyKey); err != nil {
			logger.Log.Warn("Idempotency lookup failed", zap.Error(err))
		} else if existing != uuid.Nil {
			order, err := s.orderRepo.FindByIDAndUserID(ctx, existing, userID)
			if err != nil {
				return nil, err
			}
			status := ""
			if payment, err := s.orderRepo.FindPaymentByOrderID(ctx, existing); err == nil {
				status = payment.PaymentStatus
			}
			return s.toResponse(order, status), nil
		}
	}

	// Card validation happens before any database write so a declined card
	// leaves no trace.
	orderStatus := models.OrderStatusPending
	paymentStatus := models.PaymentStatusPending
	switch req.PaymentMethod {
	case models.PaymentMethodCard:
		if err := ValidateCard(req.Card); err != nil {
			return nil, err
		}
		orderStatus = models.OrderStatusConfirmed
		paymentStatus = models.PaymentStatusPaid
	case models.PaymentMethodCOD:
	default:
		return nil, apperrors.Wrap(apperrors.ErrValidation, "Unsupported payment method")
	}

	mode := req.DeliveryMode
	if mode == "" {
		mode = DeliveryModeStandard
	}
	leadDays := standardLeadDays
	switch mode {
	case DeliveryModeStandard:
	case DeliveryModeExpress:
		leadDays = expressLeadDays
	default:
		return nil, apperrors.Wrap(apperrors.ErrValidation, "Unsupported delivery mode")
	}

	var total float64
	variantIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		total += item.Price * float64(item.Quantity)
		variantIDs = append(variantIDs, item.VariantID)
	}

	deliveryAddress := req.DeliveryAddress()

	order := &models.Order{
		UserID:            userID,
		OrderStatus:       orderStatus,
		TotalAmount:       total,
		Address:           deliveryAddress,
		DeliveryMode:      mode,
		EstimatedDelivery: time.Now().AddDate(0, 0, leadDays),
	}

	err := s.orderRepo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.orderRepo.CreateOrder(tx, order); err != nil {
			return err
		}

		invTx := s.inventoryRepo.WithTx(tx)
		for _, item := range req.Items {
			orderItem := &models.OrderItem{
				OrderID:   order.ID,
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
				Price:     item.Price,
			}
			if err := s.orderRepo.CreateOrderItem(tx, orderItem); err != nil {
				return err
			}
			order.Items = append(order.Items, *orderItem)

			if err := invTx.Reserve(ctx, item.VariantID, item.Quantity); err != nil {
				return err
			}
		}

		payment := &models.Payment{
			OrderID:       order.ID,
			Amount:        total,
			PaymentMethod: req.PaymentMethod,
			PaymentStatus: paymentStatus,
		}
		if paymentStatus == models.PaymentStatusPaid {
			now := time.Now()
			payment.PaidAt = &now
		}
		if err := s.orderRepo.CreatePayment(tx, payment); err != nil {
			return err
		}

		delivery := &models.Delivery{
			OrderID: order.ID,
			Address: deliveryAddress,
		}
		if err := s.orderRepo.CreateDelivery(tx, delivery); err != nil {
			return err
		}

		return s.cartRepo.RemoveByVariantIDs(tx, userID, variantIDs)
	})
	if err != nil {
		if s.metrics != nil {
			go s.metrics.RecordCount(context.Background(), aws.MetricOrdersFailed, nil)
		}
		return nil, err
	}

	if idempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.Store(ctx, userID, idempotencyKey, order.ID); err != nil {
			logger.Log.Warn("Idempotency store failed", zap.Error(err))
		}
	}
	if s.cartCache != nil {
		if err := s.cartCache.Invalidate(ctx, userID); err != nil {
			logger.Log.Warn("Cart cache invalidation failed", zap.Error(err))
		}
	}

	s.publishOrderConfirmed(order, req)

	if s.metrics != nil {
		go s.metrics.RecordCount(context.Background(), aws.MetricOrdersCreated, nil)
	}

	logger.Log.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("order_status", order.OrderStatus),
		zap.Float64("total", total),
	)

	return s.toResponse(order, paymentStatus), nil
}

// GetOrders returns the customer's orders grouped into storefront buckets.
func (s *OrderService) GetOrders(ctx context.Context, userID uuid.UUID) (*OrderBuckets, error) {
	orders, err := s.orderRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	orderIDs := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}
	payments, err := s.orderRepo.FindPaymentsByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	buckets := &OrderBuckets{
		ToPay:     []models.Order{},
		ToShip:    []models.Order{},
		ToReceive: []models.Order{},
		Received:  []models.Order{},
	}
	for _, o := range orders {
		if p, ok := payments[o.ID]; ok &&
			p.PaymentStatus == models.PaymentStatusPending &&
			o.OrderStatus != models.OrderStatusFailed {
			buckets.ToPay = append(buckets.ToPay, o)
		}
		switch o.OrderStatus {
		case models.OrderStatusPending, models.OrderStatusConfirmed:
			buckets.ToShip = append(buckets.ToShip, o)
		case models.OrderStatusShipped:
			buckets.ToReceive = append(buckets.ToReceive, o)
		case models.OrderStatusDelivered:
			buckets.Received = append(buckets.Received, o)
		}
	}
	return buckets, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	return s.orderRepo.FindByIDAndUserID(ctx, orderID, userID)
}

func (s *OrderService) toResponse(order *models.Order, paymentStatus string) *OrderResponse {
	return &OrderResponse{
		OrderID:           order.ID,
		OrderDate:         order.CreatedAt,
		OrderStatus:       order.OrderStatus,
		PaymentStatus:     paymentStatus,
		Total:             order.TotalAmount,
		EstimatedDelivery: order.EstimatedDelivery,
		Items:             order.Items,
	}
}

// publishOrderConfirmed sends the post-commit notification event to SNS and
// the lifecycle event to Kafka, on its own goroutine so a slow broker never
// delays the checkout response. Both are best-effort: a publish failure is
// logged but never surfaces to the customer, the order already committed.
func (s *OrderService) publishOrderConfirmed(order *models.Order, req *CreateOrderRequest) {
	if s.snsClient == nil && s.producer == nil {
		return
	}
	go s.doPublishOrderConfirmed(order, req)
}

func (s *OrderService) doPublishOrderConfirmed(order *models.Order, req *CreateOrderRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := s.userRepo.FindByID(ctx, order.UserID)
	if err != nil {
		logger.Log.Warn("Failed to load user for order notification",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return
	}

	variantIDs := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		variantIDs = append(variantIDs, item.VariantID)
	}
	views, _ := s.inventoryRepo.FindVariantViews(ctx, variantIDs)
	names := make(map[uuid.UUID]string, len(views))
	for _, v := range views {
		names[v.ID] = v.ProductName + " - " + v.Name
	}

	eventItems := make([]models.OrderEventItem, 0, len(order.Items))
	for _, item := range order.Items {
		eventItems = append(eventItems, models.OrderEventItem{
			VariantID:   item.VariantID,
			VariantName: names[item.VariantID],
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}

	event := models.OrderConfirmedEvent{
		EventType:     models.EventOrderConfirmed,
		OrderID:       order.ID,
		UserID:        order.UserID,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: req.PaymentMethod,
		Address:       order.Address,
		Items:         eventItems,
		Timestamp:     time.Now(),
	}

	if s.snsClient != nil && s.snsTopicArn != "" {
		if err := s.snsClient.PublishOrderConfirmed(ctx, s.snsTopicArn, event); err != nil {
			logger.Log.Error("Failed to publish order-confirmed event",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
		}
	}

	if s.producer != nil {
		lifecycle := models.OrderLifecycleEvent{
			EventType: models.EventOrderConfirmed,
			OrderID:   order.ID,
			To:        order.OrderStatus,
			ActorID:   order.UserID,
			Timestamp: time.Now(),
		}
		if err := s.producer.PublishLifecycleEvent(ctx, s.ordersTopic, lifecycle); err != nil {
			logger.Log.Error("Failed to publish order lifecycle event",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
		}
	}
}
