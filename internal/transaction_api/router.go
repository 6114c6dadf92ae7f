// Package transaction_api is the caller-facing HTTP surface of the ledger.
package transaction_api

import (
	"github.com/finnova-banking-ledger/internal/transaction_api/handler"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the v1 ledger and transfer endpoints. Middleware,
// /health and /metrics are installed by the shared HTTP server.
func RegisterRoutes(
	r *gin.Engine,
	transactionHandler *handler.TransactionHandler,
	transferHandler *handler.TransferHandler,
) {
	v1 := r.Group("/api/v1")
	{
		transactions := v1.Group("/transactions")
		{
			transactions.POST("/deposit", transactionHandler.Deposit)
			transactions.POST("/withdrawal", transactionHandler.Withdrawal)
			transactions.POST("/payment", transactionHandler.Payment)
			transactions.POST("/credit-charge", transactionHandler.CreditCharge)
			transactions.POST("/transfer/own", transactionHandler.TransferOwn)
			transactions.POST("/transfer/third-party", transactionHandler.TransferThirdParty)

			transactions.GET("", transactionHandler.List)
			transactions.GET("/:id", transactionHandler.GetByID)
			transactions.PUT("/:id", transactionHandler.Correct)
			transactions.DELETE("/:id", transactionHandler.Delete)

			transactions.GET("/product/:productId", transactionHandler.GetByProduct)
			transactions.GET("/product/:productId/last10", transactionHandler.GetLast10)
			transactions.GET("/product/:productId/balance", transactionHandler.GetBalance)
			transactions.GET("/customer/:customerId", transactionHandler.GetByCustomer)
		}

		transfers := v1.Group("/transfers")
		{
			transfers.GET("", transferHandler.List)
			transfers.GET("/:token", transferHandler.Get)
			transfers.POST("/:token/reverse", transferHandler.Reverse)
		}
	}
}
