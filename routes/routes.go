package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KeshRD/BrightBuy-G16/controllers"
	"github.com/KeshRD/BrightBuy-G16/middleware"
	"github.com/KeshRD/BrightBuy-G16/models"
)

// Register wires every endpoint onto the engine. Customer routes require a
// valid token; delivery routes additionally require the driver role and
// admin routes the admin role.
func Register(
	r *gin.Engine,
	cartController *controllers.CartController,
	orderController *controllers.OrderController,
	deliveryController *controllers.DeliveryController,
	inventoryController *controllers.InventoryController,
) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	cart := r.Group("/cart")
	cart.Use(middleware.AuthMiddleware())
	cart.GET("", cartController.GetCart)
	cart.POST("/items", cartController.AddItem)
	cart.PATCH("/items/:id", cartController.UpdateItem)
	cart.DELETE("/items/:id", cartController.RemoveItem)

	orders := r.Group("/orders")
	orders.Use(middleware.AuthMiddleware())
	orders.POST("", orderController.CreateOrder)
	orders.GET("", orderController.GetOrders)
	orders.GET("/:id", orderController.GetOrderByID)

	deliveries := r.Group("/deliveries")
	deliveries.Use(middleware.AuthMiddleware(), middleware.RequireRole(models.RoleDriver))
	deliveries.GET("", deliveryController.ListDeliveries)
	deliveries.POST("/:id/claim", deliveryController.Claim)
	deliveries.PATCH("/:id/status", deliveryController.UpdateStatus)
	deliveries.PATCH("/:id/payment", deliveryController.SettlePayment)

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole(models.RoleAdmin))
	admin.GET("/deliveries/upcoming", deliveryController.ListUpcoming)
	admin.POST("/variants/:id/restock", inventoryController.Restock)
	admin.GET("/variants/:id", inventoryController.GetVariant)
}
