package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/KeshRD/BrightBuy-G16/common/logger"
	commonmw "github.com/KeshRD/BrightBuy-G16/common/middleware"
	"github.com/KeshRD/BrightBuy-G16/controllers"
	"github.com/KeshRD/BrightBuy-G16/database"
	"github.com/KeshRD/BrightBuy-G16/kafka"
	"github.com/KeshRD/BrightBuy-G16/models"
	"github.com/KeshRD/BrightBuy-G16/notification"
	"github.com/KeshRD/BrightBuy-G16/notification/sender"
	aws_pkg "github.com/KeshRD/BrightBuy-G16/pkg/aws"
	repositories "github.com/KeshRD/BrightBuy-G16/repository"
	"github.com/KeshRD/BrightBuy-G16/routes"
	"github.com/KeshRD/BrightBuy-G16/services"
)

func main() {
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// CloudWatch log sink is optional; when disabled the logger writes to
	// console only.
	awsCfg, awsErr := aws_pkg.LoadConfig(context.Background())
	if awsErr == nil {
		cwLogs, err := aws_pkg.NewCloudWatchLogsClient(context.Background(), "backend")
		if err == nil && cwLogs.IsEnabled() {
			logger.InitializeWithWriter(cfg.Env, cwLogs)
		} else {
			logger.Initialize(cfg.Env)
		}
	} else {
		logger.Initialize(cfg.Env)
	}
	defer logger.Log.Sync()

	db, err := database.ConnectPostgres(logger.Log,
		&models.Product{}, &models.Variant{}, &models.User{},
		&models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{},
		&models.Payment{}, &models.Delivery{},
		&models.NotificationLog{},
	)
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	cacheTTL, err := time.ParseDuration(cfg.CartCacheTTL)
	if err != nil {
		cacheTTL = 10 * time.Minute
	}

	var snsClient aws_pkg.SNSPublisher
	var metrics *aws_pkg.MetricsClient
	if awsErr == nil {
		snsClient = aws_pkg.NewSNSClient(awsCfg)
		metrics, _ = aws_pkg.NewMetricsClient(context.Background())
	} else {
		logger.Log.Warn("AWS config unavailable, SNS and metrics disabled", zap.Error(awsErr))
	}

	var producer kafka.ProducerAPI
	if cfg.KafkaBrokers != "" {
		producer = kafka.NewProducer(strings.Split(cfg.KafkaBrokers, ","))
		defer producer.Close()
	}

	inventoryRepo := repositories.NewGormInventoryRepository(db)
	cartRepo := repositories.NewGormCartRepository(db)
	orderRepo := repositories.NewGormOrderRepository(db)
	deliveryRepo := repositories.NewGormDeliveryRepository(db)
	userRepo := repositories.NewGormUserRepository(db)
	notificationRepo := repositories.NewGormNotificationRepository(db)
	cartCache := repositories.NewCartCache(redisClient, cacheTTL)
	idempotency := repositories.NewIdempotencyStore(redisClient, 24*time.Hour)

	cartService := services.NewCartService(cartRepo, inventoryRepo, cartCache)
	orderService := services.NewOrderService(
		orderRepo, inventoryRepo, cartRepo, userRepo,
		idempotency, cartCache,
		producer, cfg.OrdersTopic,
		snsClient, cfg.SNSTopicArn,
		metrics,
	)
	deliveryService := services.NewDeliveryService(deliveryRepo, orderRepo, producer, cfg.OrdersTopic, metrics)
	inventoryService := services.NewInventoryService(inventoryRepo, metrics)

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	if cfg.EnableConsumer && awsErr == nil && cfg.SQSQueueURL != "" {
		emailSender, err := sender.NewSMTPSender()
		if err != nil {
			logger.Log.Warn("SMTP not configured, notification consumer disabled", zap.Error(err))
		} else {
			notificationService, err := notification.NewService(notificationRepo, emailSender, cfg.TemplatePath, logger.Log)
			if err != nil {
				logger.Log.Error("failed to build notification service", zap.Error(err))
			} else {
				sqsConsumer := aws_pkg.NewSQSConsumer(awsCfg, cfg.SQSQueueURL)
				consumer := notification.NewConsumer(sqsConsumer, notificationService, logger.Log)
				go consumer.Start(consumerCtx)
			}
		}
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(commonmw.RequestLogger(logger.Log))
	router.Use(commonmw.Metrics(metrics))

	routes.Register(router,
		controllers.NewCartController(cartService),
		controllers.NewOrderController(orderService),
		controllers.NewDeliveryController(deliveryService),
		controllers.NewInventoryController(inventoryService),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Log.Info("BrightBuy backend listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("shutting down gracefully")
	cancelConsumer()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("shutdown error", zap.Error(err))
	}
	logger.Log.Info("server shutdown complete")
}
