package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/KeshRD/BrightBuy-G16/middleware"
	"github.com/KeshRD/BrightBuy-G16/services"
)

type DeliveryController struct {
	deliveryService *services.DeliveryService
}

func NewDeliveryController(deliveryService *services.DeliveryService) *DeliveryController {
	return &DeliveryController{deliveryService: deliveryService}
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListDeliveries is a read-only projection for drivers. Responses carry
// Cache-Control: no-store because the claim pool goes stale the moment
// another driver claims.
func (dc *DeliveryController) ListDeliveries(c *gin.Context) {
	driverID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	snapshots, err := dc.deliveryService.ListDeliveries(c.Request.Context(), driverID, c.Query("filter"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, snapshots)
}

// ListUpcoming returns every in-flight delivery. Admin only.
func (dc *DeliveryController) ListUpcoming(c *gin.Context) {
	snapshots, err := dc.deliveryService.ListUpcoming(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, snapshots)
}

// Claim assigns the delivery to the calling driver. Losing a concurrent
// claim race returns 409.
func (dc *DeliveryController) Claim(c *gin.Context) {
	driverID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery ID"})
		return
	}

	snapshot, err := dc.deliveryService.Claim(c.Request.Context(), deliveryID, driverID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// UpdateStatus advances the order behind the delivery along the status
// chain.
func (dc *DeliveryController) UpdateStatus(c *gin.Context) {
	driverID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery ID"})
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	snapshot, err := dc.deliveryService.AdvanceStatus(c.Request.Context(), deliveryID, driverID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// SettlePayment marks a delivered cash-on-delivery order as paid.
func (dc *DeliveryController) SettlePayment(c *gin.Context) {
	driverID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery ID"})
		return
	}

	snapshot, err := dc.deliveryService.Settle(c.Request.Context(), deliveryID, driverID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
