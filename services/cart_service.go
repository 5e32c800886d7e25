package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/KeshRD/BrightBuy-G16/common/errors"
	"github.com/KeshRD/BrightBuy-G16/common/logger"
	"github.com/KeshRD/BrightBuy-G16/models"
	repositories "github.com/KeshRD/BrightBuy-G16/repository"
)

// CartItemView is one cart line joined with live display data. InStock is
// advisory: it reflects stock at read time and reserves nothing.
type CartItemView struct {
	ItemID      uuid.UUID `json:"item_id"`
	VariantID   uuid.UUID `json:"variant_id"`
	ProductName string    `json:"product_name"`
	VariantName string    `json:"variant_name"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Stock       int       `json:"stock_quantity"`
	InStock     bool      `json:"in_stock"`
}

type CartView struct {
	CartID uuid.UUID      `json:"cart_id"`
	Items  []CartItemView `json:"items"`
	Total  float64        `json:"total"`
}

type CartService struct {
	cartRepo      repositories.CartRepository
	inventoryRepo repositories.InventoryRepository
	cache         *repositories.CartCache
}

func NewCartService(cartRepo repositories.CartRepository, inventoryRepo repositories.InventoryRepository, cache *repositories.CartCache) *CartService {
	return &CartService{
		cartRepo:      cartRepo,
		inventoryRepo: inventoryRepo,
		cache:         cache,
	}
}

// GetCart returns the user's cart joined with live variant data. The cart
// rows come through the Redis cache; stock and prices are always read live
// so the advisory flags stay current.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &CartView{Items: []CartItemView{}}, nil
	}

	variantIDs := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		variantIDs = append(variantIDs, item.VariantID)
	}
	views, err := s.inventoryRepo.FindVariantViews(ctx, variantIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.VariantView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}

	result := &CartView{CartID: cart.ID, Items: make([]CartItemView, 0, len(cart.Items))}
	for _, item := range cart.Items {
		v, ok := byID[item.VariantID]
		if !ok {
			// variant removed from catalog since it was added
			continue
		}
		result.Items = append(result.Items, CartItemView{
			ItemID:      item.ID,
			VariantID:   item.VariantID,
			ProductName: v.ProductName,
			VariantName: v.Name,
			Price:       v.Price,
			Quantity:    item.Quantity,
			Stock:       v.StockQuantity,
			InStock:     v.StockQuantity >= item.Quantity,
		})
		result.Total += v.Price * float64(item.Quantity)
	}
	return result, nil
}

// AddItem merges quantity into the user's cart after an advisory stock
// check. The check races with concurrent checkouts on purpose; the
// authoritative reservation happens at order time.
func (s *CartService) AddItem(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "Quantity must be positive")
	}

	variant, err := s.inventoryRepo.FindVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if variant.StockQuantity < quantity {
		return nil, apperrors.Wrap(apperrors.ErrInsufficientStock,
			fmt.Sprintf("Insufficient stock for variant %s", variant.Name))
	}

	cart, err := s.cartRepo.FindOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, err := s.cartRepo.AddItem(ctx, cart.ID, variantID, quantity)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return item, nil
}

func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "Quantity must be positive")
	}

	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if cart == nil {
		return apperrors.Wrap(apperrors.ErrNotFound, "Cart is empty")
	}

	var variantID uuid.UUID
	found := false
	for _, item := range cart.Items {
		if item.ID == itemID {
			variantID = item.VariantID
			found = true
			break
		}
	}
	if !found {
		return apperrors.Wrap(apperrors.ErrNotFound, "Cart item not found")
	}

	variant, err := s.inventoryRepo.FindVariant(ctx, variantID)
	if err != nil {
		return err
	}
	if variant.StockQuantity < quantity {
		return apperrors.Wrap(apperrors.ErrInsufficientStock,
			fmt.Sprintf("Insufficient stock for variant %s", variant.Name))
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, cart.ID, itemID, quantity); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if cart == nil {
		return apperrors.Wrap(apperrors.ErrNotFound, "Cart is empty")
	}
	if err := s.cartRepo.RemoveItem(ctx, cart.ID, itemID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *CartService) loadCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if s.cache != nil {
		cart, err := s.cache.Get(ctx, userID)
		if err != nil {
			logger.Log.Warn("Cart cache read failed", zap.Error(err))
		} else if cart != nil {
			return cart, nil
		}
	}

	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart != nil && s.cache != nil {
		if err := s.cache.Set(ctx, cart); err != nil {
			logger.Log.Warn("Cart cache write failed", zap.Error(err))
		}
	}
	return cart, nil
}

func (s *CartService) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		logger.Log.Warn("Cart cache invalidation failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}
