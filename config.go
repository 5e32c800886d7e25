package main

import (
	"context"
	"fmt"
	"os"

	aws_pkg "github.com/KeshRD/BrightBuy-G16/pkg/aws"
)

type Config struct {
	Port           string
	Env            string
	RedisURL       string
	CartCacheTTL   string
	KafkaBrokers   string
	OrdersTopic    string
	SNSTopicArn    string
	SQSQueueURL    string
	TemplatePath   string
	EnableConsumer bool
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("APP_ENV", "development"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CartCacheTTL:   getEnv("CART_CACHE_TTL", "10m"),
		KafkaBrokers:   os.Getenv("KAFKA_BROKERS"),
		OrdersTopic:    getEnv("ORDERS_TOPIC", "orders.lifecycle"),
		SNSTopicArn:    os.Getenv("ORDER_SNS_TOPIC_ARN"),
		SQSQueueURL:    os.Getenv("NOTIFICATION_SQS_QUEUE_URL"),
		TemplatePath:   getEnv("EMAIL_TEMPLATE_PATH", "templates/order_confirmed.html"),
		EnableConsumer: getEnv("ENABLE_NOTIFICATION_CONSUMER", "true") == "true",
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := aws_pkg.LoadConfig(context.Background()); err == nil {
			sm := aws_pkg.NewSecretsClient(awsCfg)
			if creds, err := sm.DBCredentials(context.Background()); err == nil {
				for key, val := range creds.Env() {
					os.Setenv(key, val)
				}
			}
		}
	}

	if os.Getenv("POSTGRES_USER") == "" || os.Getenv("POSTGRES_PASSWORD") == "" ||
		os.Getenv("POSTGRES_DB") == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
