package notification

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/KeshRD/BrightBuy-G16/models"
	"github.com/KeshRD/BrightBuy-G16/pkg/aws"
)

// snsEnvelope unwraps the SNS → SQS message wrapper.
type snsEnvelope struct {
	Message string `json:"Message"`
}

// Consumer drains the notification queue and hands events to the Service.
type Consumer struct {
	sqs     *aws.SQSConsumer
	service Service
	logger  *zap.Logger
}

func NewConsumer(sqs *aws.SQSConsumer, service Service, logger *zap.Logger) *Consumer {
	return &Consumer{sqs: sqs, service: service, logger: logger}
}

// Start polls until the context is cancelled. A handler error leaves the
// message on the queue so SQS redelivers it after the visibility timeout.
func (c *Consumer) Start(ctx context.Context) {
	c.logger.Info("notification consumer started")
	_ = c.sqs.StartPolling(ctx, c.handle)
	c.logger.Info("notification consumer stopped")
}

func (c *Consumer) handle(ctx context.Context, body string) error {
	var envelope snsEnvelope
	message := body
	if err := json.Unmarshal([]byte(body), &envelope); err == nil && envelope.Message != "" {
		message = envelope.Message
	}

	var evt models.OrderConfirmedEvent
	if err := json.Unmarshal([]byte(message), &evt); err != nil {
		// unparseable, delete rather than loop forever
		c.logger.Error("failed to unmarshal order event", zap.Error(err))
		return nil
	}
	if evt.EventType != models.EventOrderConfirmed {
		return nil
	}

	return c.service.ProcessOrderConfirmed(ctx, &evt)
}
