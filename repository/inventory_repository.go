package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/KeshRD/BrightBuy-G16/common/errors"
	"github.com/KeshRD/BrightBuy-G16/models"
)

// InventoryRepository is the stock ledger. Reserve and Restock are single
// conditional UPDATE statements; callers never read stock first and write it
// back.
type InventoryRepository interface {
	// WithTx returns a copy of the repository bound to the given transaction
	// so reservations participate in an enclosing checkout transaction.
	WithTx(tx *gorm.DB) InventoryRepository
	FindVariant(ctx context.Context, variantID uuid.UUID) (*models.Variant, error)
	FindVariants(ctx context.Context, variantIDs []uuid.UUID) ([]models.Variant, error)
	// FindVariantViews joins variants with their product names for display.
	FindVariantViews(ctx context.Context, variantIDs []uuid.UUID) ([]models.VariantView, error)
	// Reserve decrements stock only if at least quantity units remain.
	Reserve(ctx context.Context, variantID uuid.UUID, quantity int) error
	// Restock increments stock unconditionally.
	Restock(ctx context.Context, variantID uuid.UUID, quantity int) error
}

type GormInventoryRepository struct {
	db *gorm.DB
}

func NewGormInventoryRepository(db *gorm.DB) InventoryRepository {
	return &GormInventoryRepository{db: db}
}

func (r *GormInventoryRepository) WithTx(tx *gorm.DB) InventoryRepository {
	return &GormInventoryRepository{db: tx}
}

func (r *GormInventoryRepository) FindVariant(ctx context.Context, variantID uuid.UUID) (*models.Variant, error) {
	var variant models.Variant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "Variant not found")
		}
		return nil, err
	}
	return &variant, nil
}

func (r *GormInventoryRepository) FindVariants(ctx context.Context, variantIDs []uuid.UUID) ([]models.Variant, error) {
	var variants []models.Variant
	if err := r.db.WithContext(ctx).Where("id IN ?", variantIDs).Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *GormInventoryRepository) FindVariantViews(ctx context.Context, variantIDs []uuid.UUID) ([]models.VariantView, error) {
	if len(variantIDs) == 0 {
		return nil, nil
	}
	var views []models.VariantView
	err := r.db.WithContext(ctx).Raw(`
SELECT v.id,
       v.product_id,
       v.name,
       p.name AS product_name,
       v.price,
       v.stock_quantity
FROM variants v
JOIN products p ON p.id = v.product_id
WHERE v.id IN ?`, variantIDs).
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

// Reserve performs the decrement and the availability check in one statement.
// Zero rows affected means the guard failed: either the variant does not
// exist or fewer than quantity units remain.
func (r *GormInventoryRepository) Reserve(ctx context.Context, variantID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "Quantity must be positive")
	}

	result := r.db.WithContext(ctx).
		Model(&models.Variant{}).
		Where("id = ? AND stock_quantity >= ?", variantID, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		variant, err := r.FindVariant(ctx, variantID)
		if err != nil {
			return err
		}
		return apperrors.Wrap(apperrors.ErrInsufficientStock,
			"Insufficient stock for variant "+variant.Name)
	}
	return nil
}

func (r *GormInventoryRepository) Restock(ctx context.Context, variantID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "Quantity must be positive")
	}

	result := r.db.WithContext(ctx).
		Model(&models.Variant{}).
		Where("id = ?", variantID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "Variant not found")
	}
	return nil
}
