package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/KeshRD/BrightBuy-G16/services"
)

type InventoryController struct {
	inventoryService *services.InventoryService
}

func NewInventoryController(inventoryService *services.InventoryService) *InventoryController {
	return &InventoryController{inventoryService: inventoryService}
}

type restockRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// Restock adds stock to a variant. Admin only.
func (ic *InventoryController) Restock(c *gin.Context) {
	variantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid variant ID"})
		return
	}

	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	variant, err := ic.inventoryService.Restock(c.Request.Context(), variantID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, variant)
}

// GetVariant returns a variant with its current stock.
func (ic *InventoryController) GetVariant(c *gin.Context) {
	variantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid variant ID"})
		return
	}

	variant, err := ic.inventoryService.GetVariant(c.Request.Context(), variantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, variant)
}
