package aws

import (
	"context"
	"encoding/json"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/KeshRD/BrightBuy-G16/models"
)

// SNSPublisher is the fan-out hook for order events. Consumers filter on the
// event_type message attribute, so publishers must always set it.
type SNSPublisher interface {
	PublishOrderConfirmed(ctx context.Context, topicArn string, event models.OrderConfirmedEvent) error
}

type SNSClient struct {
	client *sns.Client
}

func NewSNSClient(cfg sdkaws.Config) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg)}
}

// PublishOrderConfirmed serializes the event and publishes it to the given
// topic with its event type attached as a message attribute.
func (s *SNSClient) PublishOrderConfirmed(ctx context.Context, topicArn string, event models.OrderConfirmedEvent) error {
	if topicArn == "" {
		return fmt.Errorf("empty topicArn")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order-confirmed event: %w", err)
	}
	input := &sns.PublishInput{
		TopicArn: &topicArn,
		Message:  awsString(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    awsString("String"),
				StringValue: awsString(event.EventType),
			},
		},
	}
	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", topicArn, err)
	}
	return nil
}

func awsString(s string) *string { return &s }
