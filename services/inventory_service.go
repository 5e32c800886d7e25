package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KeshRD/BrightBuy-G16/common/logger"
	"github.com/KeshRD/BrightBuy-G16/models"
	"github.com/KeshRD/BrightBuy-G16/pkg/aws"
	repositories "github.com/KeshRD/BrightBuy-G16/repository"
)

type InventoryService struct {
	inventoryRepo repositories.InventoryRepository
	metrics       *aws.MetricsClient
}

func NewInventoryService(inventoryRepo repositories.InventoryRepository, metrics *aws.MetricsClient) *InventoryService {
	return &InventoryService{inventoryRepo: inventoryRepo, metrics: metrics}
}

// Restock adds stock to a variant. Used by returns and supplier intake.
func (s *InventoryService) Restock(ctx context.Context, variantID uuid.UUID, quantity int) (*models.Variant, error) {
	if err := s.inventoryRepo.Restock(ctx, variantID, quantity); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		go s.metrics.RecordCount(context.Background(), aws.MetricInventoryRestock, nil)
	}

	variant, err := s.inventoryRepo.FindVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Variant restocked",
		zap.String("variant_id", variantID.String()),
		zap.Int("quantity", quantity),
		zap.Int("stock_quantity", variant.StockQuantity),
	)
	return variant, nil
}

func (s *InventoryService) GetVariant(ctx context.Context, variantID uuid.UUID) (*models.Variant, error) {
	return s.inventoryRepo.FindVariant(ctx, variantID)
}
