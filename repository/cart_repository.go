package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/KeshRD/BrightBuy-G16/common/errors"
	"github.com/KeshRD/BrightBuy-G16/models"
)

// CartRepository persists carts. A cart is created lazily on the first write
// for a user.
type CartRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindOrCreateByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, cartID uuid.UUID, variantID uuid.UUID, quantity int) (*models.CartItem, error)
	UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error
	ClearByUserID(ctx context.Context, userID uuid.UUID) error
	// RemoveByVariantIDs deletes only the lines bought at checkout, leaving
	// unselected lines in place. It accepts the handle so it can run inside
	// the checkout transaction.
	RemoveByVariantIDs(tx *gorm.DB, userID uuid.UUID, variantIDs []uuid.UUID) error
}

type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) CartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&cart, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

func (r *GormCartRepository) FindOrCreateByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := r.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	cart = &models.Cart{UserID: userID}
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem merges quantity into an existing line for the same variant instead
// of creating a duplicate row.
func (r *GormCartRepository) AddItem(ctx context.Context, cartID uuid.UUID, variantID uuid.UUID, quantity int) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		First(&item, "cart_id = ? AND variant_id = ?", cartID, variantID).Error
	if err == nil {
		item.Quantity += quantity
		if err := r.db.WithContext(ctx).Save(&item).Error; err != nil {
			return nil, err
		}
		return &item, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item = models.CartItem{
		CartID:    cartID,
		VariantID: variantID,
		Quantity:  quantity,
	}
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormCartRepository) UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "Cart item not found")
	}
	return nil
}

func (r *GormCartRepository) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "Cart item not found")
	}
	return nil
}

func (r *GormCartRepository) RemoveByVariantIDs(tx *gorm.DB, userID uuid.UUID, variantIDs []uuid.UUID) error {
	if len(variantIDs) == 0 {
		return nil
	}
	return tx.
		Where("cart_id = (SELECT id FROM carts WHERE user_id = ?) AND variant_id IN ?", userID, variantIDs).
		Delete(&models.CartItem{}).Error
}

func (r *GormCartRepository) ClearByUserID(ctx context.Context, userID uuid.UUID) error {
	cart, err := r.FindByUserID(ctx, userID)
	if err != nil || cart == nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Delete(&models.CartItem{}).Error
}
