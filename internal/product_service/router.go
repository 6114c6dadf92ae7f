// Package product_service is the balance-owning HTTP service the ledger calls
// to read and mutate product balances.
package product_service

import (
	"github.com/finnova-banking-ledger/internal/product_service/handler"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the v1 product endpoints
func RegisterRoutes(r *gin.Engine, productHandler *handler.ProductHandler) {
	v1 := r.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.POST("", productHandler.Create)
			products.GET("", productHandler.ListByCustomer)
			products.GET("/:id", productHandler.GetByID)
			products.PUT("/:id/balance", productHandler.UpdateBalance)
		}
	}
}
