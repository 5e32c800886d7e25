package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/KeshRD/BrightBuy-G16/common/errors"
	"github.com/KeshRD/BrightBuy-G16/common/logger"
	"github.com/KeshRD/BrightBuy-G16/kafka"
	"github.com/KeshRD/BrightBuy-G16/models"
	"github.com/KeshRD/BrightBuy-G16/pkg/aws"
	repositories "github.com/KeshRD/BrightBuy-G16/repository"
)

// Delivery list filters.
const (
	DeliveryFilterAvailable = "available"
	DeliveryFilterMine      = "mine"
)

type DeliveryService struct {
	deliveryRepo repositories.DeliveryRepository
	orderRepo    repositories.OrderRepository
	producer     kafka.ProducerAPI
	ordersTopic  string
	metrics      *aws.MetricsClient
}

func NewDeliveryService(
	deliveryRepo repositories.DeliveryRepository,
	orderRepo repositories.OrderRepository,
	producer kafka.ProducerAPI,
	ordersTopic string,
	metrics *aws.MetricsClient,
) *DeliveryService {
	return &DeliveryService{
		deliveryRepo: deliveryRepo,
		orderRepo:    orderRepo,
		producer:     producer,
		ordersTopic:  ordersTopic,
		metrics:      metrics,
	}
}

// ListDeliveries is a read-only projection. Drivers see the unclaimed pool
// or their own claims depending on filter; there are no side effects.
func (s *DeliveryService) ListDeliveries(ctx context.Context, driverID uuid.UUID, filter string) ([]models.DeliverySnapshot, error) {
	var snapshots []models.DeliverySnapshot
	var err error
	switch filter {
	case DeliveryFilterMine:
		snapshots, err = s.deliveryRepo.ListByDriver(ctx, driverID)
	case DeliveryFilterAvailable, "":
		snapshots, err = s.deliveryRepo.ListAvailable(ctx)
	default:
		return nil, apperrors.Wrap(apperrors.ErrValidation, "Unknown filter")
	}
	if err != nil {
		return nil, err
	}
	return s.fillItems(ctx, snapshots)
}

// ListUpcoming returns every delivery whose order has not reached a terminal
// state. Admin-facing.
func (s *DeliveryService) ListUpcoming(ctx context.Context) ([]models.DeliverySnapshot, error) {
	snapshots, err := s.deliveryRepo.ListUndelivered(ctx)
	if err != nil {
		return nil, err
	}
	return s.fillItems(ctx, snapshots)
}

// Claim atomically takes ownership of an unclaimed delivery for driverID.
// Exactly one of any set of concurrent claimants succeeds; the rest get
// AlreadyClaimed.
func (s *DeliveryService) Claim(ctx context.Context, deliveryID, driverID uuid.UUID) (*models.DeliverySnapshot, error) {
	if err := s.deliveryRepo.Claim(ctx, deliveryID, driverID); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		go s.metrics.RecordCount(context.Background(), aws.MetricDeliveriesClaimed, nil)
	}
	s.publishLifecycle(deliveryID, driverID, models.EventOrderClaimed, "", models.OrderStatusConfirmed)

	logger.Log.Info("Delivery claimed",
		zap.String("delivery_id", deliveryID.String()),
		zap.String("driver_id", driverID.String()),
	)
	return s.snapshot(ctx, deliveryID)
}

// AdvanceStatus moves the order behind the delivery along the legal chain.
// The change is a single conditional update; the reads below only classify a
// zero-row result into the right error kind.
func (s *DeliveryService) AdvanceStatus(ctx context.Context, deliveryID, driverID uuid.UUID, target string) (*models.DeliverySnapshot, error) {
	if !models.ValidOrderStatus(target) {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "Unknown status "+target)
	}

	fromStatuses := legalSources(target)
	if len(fromStatuses) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidTransition, "No transition leads to "+target)
	}

	affected, err := s.deliveryRepo.UpdateOrderStatus(ctx, deliveryID, driverID, target, fromStatuses)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, s.classifyStatusFailure(ctx, deliveryID, driverID, target)
	}

	s.publishLifecycle(deliveryID, driverID, models.EventOrderStatus, "", target)

	logger.Log.Info("Delivery status advanced",
		zap.String("delivery_id", deliveryID.String()),
		zap.String("driver_id", driverID.String()),
		zap.String("to", target),
	)
	return s.snapshot(ctx, deliveryID)
}

// Settle marks the payment behind a delivered cash-on-delivery order as
// collected. Same pattern as AdvanceStatus: one guarded update, follow-up
// reads only for error classification.
func (s *DeliveryService) Settle(ctx context.Context, deliveryID, driverID uuid.UUID) (*models.DeliverySnapshot, error) {
	affected, err := s.deliveryRepo.SettlePayment(ctx, deliveryID, driverID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, s.classifySettleFailure(ctx, deliveryID, driverID)
	}

	if s.metrics != nil {
		go s.metrics.RecordCount(context.Background(), aws.MetricPaymentsSettled, nil)
	}
	s.publishLifecycle(deliveryID, driverID, models.EventPaymentSettled, "", models.PaymentStatusPaid)

	logger.Log.Info("Payment settled",
		zap.String("delivery_id", deliveryID.String()),
		zap.String("driver_id", driverID.String()),
	)
	return s.snapshot(ctx, deliveryID)
}

func (s *DeliveryService) snapshot(ctx context.Context, deliveryID uuid.UUID) (*models.DeliverySnapshot, error) {
	snap, err := s.deliveryRepo.FindSnapshot(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	filled, err := s.fillItems(ctx, []models.DeliverySnapshot{*snap})
	if err != nil {
		return nil, err
	}
	return &filled[0], nil
}

func (s *DeliveryService) fillItems(ctx context.Context, snapshots []models.DeliverySnapshot) ([]models.DeliverySnapshot, error) {
	if len(snapshots) == 0 {
		return []models.DeliverySnapshot{}, nil
	}
	orderIDs := make([]uuid.UUID, 0, len(snapshots))
	for _, snap := range snapshots {
		orderIDs = append(orderIDs, snap.OrderID)
	}
	items, err := s.deliveryRepo.ListLineItems(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	byOrder := make(map[uuid.UUID][]models.DeliveryLineItem)
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	for i := range snapshots {
		snapshots[i].Items = byOrder[snapshots[i].OrderID]
	}
	return snapshots, nil
}

// legalSources returns the statuses from which a driver may move an order to
// target.
func legalSources(target string) []string {
	var sources []string
	for _, from := range []string{models.OrderStatusConfirmed, models.OrderStatusShipped} {
		if models.CanTransition(from, target) {
			sources = append(sources, from)
		}
	}
	return sources
}

func (s *DeliveryService) classifyStatusFailure(ctx context.Context, deliveryID, driverID uuid.UUID, target string) error {
	delivery, err := s.deliveryRepo.FindDelivery(ctx, deliveryID)
	if err != nil {
		return err
	}
	if delivery.DriverID == nil || *delivery.DriverID != driverID {
		return apperrors.ErrNotAssigned
	}
	order, err := s.orderRepo.FindByID(ctx, delivery.OrderID)
	if err != nil {
		return err
	}
	if !models.CanTransition(order.OrderStatus, target) {
		return apperrors.Wrap(apperrors.ErrInvalidTransition,
			"Cannot move order from "+order.OrderStatus+" to "+target)
	}
	return apperrors.ErrInternalServer
}

func (s *DeliveryService) classifySettleFailure(ctx context.Context, deliveryID, driverID uuid.UUID) error {
	delivery, err := s.deliveryRepo.FindDelivery(ctx, deliveryID)
	if err != nil {
		return err
	}
	if delivery.DriverID == nil || *delivery.DriverID != driverID {
		return apperrors.ErrNotAssigned
	}
	payment, err := s.orderRepo.FindPaymentByOrderID(ctx, delivery.OrderID)
	if err != nil {
		return err
	}
	order, err := s.orderRepo.FindByID(ctx, delivery.OrderID)
	if err != nil {
		return err
	}
	if order.OrderStatus != models.OrderStatusDelivered {
		return apperrors.ErrNotYetDelivered
	}
	if payment.PaymentStatus == models.PaymentStatusPaid {
		return apperrors.ErrAlreadyPaid
	}
	return apperrors.ErrInternalServer
}

// publishLifecycle emits the event on its own goroutine so a slow broker
// never delays the response; the state change has already committed.
func (s *DeliveryService) publishLifecycle(deliveryID, actorID uuid.UUID, eventType, from, to string) {
	if s.producer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		delivery, err := s.deliveryRepo.FindDelivery(ctx, deliveryID)
		if err != nil {
			return
		}
		evt := models.OrderLifecycleEvent{
			EventType: eventType,
			OrderID:   delivery.OrderID,
			From:      from,
			To:        to,
			ActorID:   actorID,
			Timestamp: time.Now(),
		}
		if err := s.producer.PublishLifecycleEvent(ctx, s.ordersTopic, evt); err != nil {
			logger.Log.Error("Failed to publish lifecycle event",
				zap.String("delivery_id", deliveryID.String()),
				zap.Error(err),
			)
		}
	}()
}
