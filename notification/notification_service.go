package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"github.com/KeshRD/BrightBuy-G16/models"
	"github.com/KeshRD/BrightBuy-G16/notification/sender"
	repositories "github.com/KeshRD/BrightBuy-G16/repository"
)

const (
	confirmationSubject = "Your BrightBuy order is confirmed!"
	maxSendAttempts     = 3
)

// Service turns order-confirmed events into customer emails. Every attempt,
// successful or not, is recorded in notification_logs.
type Service interface {
	ProcessOrderConfirmed(ctx context.Context, evt *models.OrderConfirmedEvent) error
}

type service struct {
	repo        repositories.NotificationRepository
	emailSender sender.EmailSender
	tmpl        *template.Template
	logger      *zap.Logger
}

func NewService(repo repositories.NotificationRepository, emailSender sender.EmailSender, templatePath string, logger *zap.Logger) (Service, error) {
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email template: %w", err)
	}
	return &service{
		repo:        repo,
		emailSender: emailSender,
		tmpl:        tmpl,
		logger:      logger,
	}, nil
}

// ProcessOrderConfirmed renders and sends the confirmation email, retrying
// transient failures. A permanent failure is logged and swallowed so the
// queue message is not redelivered forever.
func (s *service) ProcessOrderConfirmed(ctx context.Context, evt *models.OrderConfirmedEvent) error {
	if evt.CustomerEmail == "" {
		s.logger.Warn("order-confirmed event without customer email",
			zap.String("order_id", evt.OrderID.String()),
		)
		return nil
	}

	var body bytes.Buffer
	if err := s.tmpl.Execute(&body, evt); err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}

	var lastErr error
	attempts := 0
	for attempts < maxSendAttempts {
		attempts++
		_, lastErr = s.emailSender.SendEmail(ctx, evt.CustomerEmail, confirmationSubject, body.String())
		if lastErr == nil {
			break
		}
		s.logger.Warn("email send attempt failed",
			zap.String("order_id", evt.OrderID.String()),
			zap.Int("attempt", attempts),
			zap.Error(lastErr),
		)
	}

	logEntry := &models.NotificationLog{
		OrderID:   evt.OrderID,
		Recipient: evt.CustomerEmail,
		Type:      models.NotificationTypeMail,
		Status:    "sent",
		Attempts:  attempts,
	}
	if lastErr != nil {
		logEntry.Status = "failed"
		logEntry.Error = lastErr.Error()
	}
	if err := s.repo.Create(ctx, logEntry); err != nil {
		s.logger.Error("failed to persist notification log",
			zap.String("order_id", evt.OrderID.String()),
			zap.Error(err),
		)
	}

	if lastErr != nil {
		s.logger.Error("giving up on confirmation email",
			zap.String("order_id", evt.OrderID.String()),
			zap.Int("attempts", attempts),
			zap.Error(lastErr),
		)
	} else {
		s.logger.Info("confirmation email sent",
			zap.String("order_id", evt.OrderID.String()),
			zap.String("recipient", evt.CustomerEmail),
		)
	}
	return nil
}
