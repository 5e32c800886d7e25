package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/KeshRD/BrightBuy-G16/common/logger"
	"github.com/KeshRD/BrightBuy-G16/models"
)

// ProducerAPI is the publishing surface the services depend on.
type ProducerAPI interface {
	Publish(ctx context.Context, topic string, key string, message []byte) error
	PublishLifecycleEvent(ctx context.Context, topic string, evt models.OrderLifecycleEvent) error
	Close() error
}

type Producer struct {
	writer *kafka.Writer
}

// NewProducer builds a writer without a fixed topic; each message names its
// own topic so one producer serves every lifecycle stream.
func NewProducer(brokers []string) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	logger.Log.Info("Kafka producer initialized", zap.Strings("brokers", brokers))
	return &Producer{writer: w}
}

func (p *Producer) Publish(ctx context.Context, topic string, key string, message []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: message,
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Producer) PublishLifecycleEvent(ctx context.Context, topic string, evt models.OrderLifecycleEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if err := p.Publish(ctx, topic, evt.OrderID.String(), data); err != nil {
		logger.Log.Error("Failed to publish lifecycle event",
			zap.String("order_id", evt.OrderID.String()),
			zap.String("event_type", evt.EventType),
			zap.Error(err),
		)
		return err
	}
	logger.Log.Info("Lifecycle event published",
		zap.String("order_id", evt.OrderID.String()),
		zap.String("event_type", evt.EventType),
		zap.String("to", evt.To),
	)
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
