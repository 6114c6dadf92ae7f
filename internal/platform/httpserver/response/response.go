// Package response renders the JSON envelope used by every ledger endpoint.
package response

import (
	"net/http"

	"github.com/finnova-banking-ledger/internal/platform/httpserver/middleware"
	"github.com/gin-gonic/gin"
)

// Error codes carried in ErrorInfo.Code
const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeNotFound            = "NOT_FOUND"
	CodeProductNotFound     = "PRODUCT_NOT_FOUND"
	CodeTransactionNotFound = "TRANSACTION_NOT_FOUND"
	CodeTransferNotFound    = "TRANSFER_NOT_FOUND"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeInvalidTransaction  = "INVALID_TRANSACTION"
	CodeInvalidOperation    = "INVALID_OPERATION"
	CodeOverdueDebt         = "OVERDUE_DEBT"
	CodeConflict            = "CONFLICT"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInternal            = "INTERNAL_SERVER_ERROR"
)

const internalErrorMessage = "An internal server error occurred"

// Response represents a standard API response
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Meta          *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo represents error information in a response
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetaInfo carries offset pagination details
type MetaInfo struct {
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	TotalItems int64 `json:"total_items"`
}

func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, &Response{
		Data:          data,
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, &Response{
		Error:         &ErrorInfo{Code: code, Message: message},
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

func RespondWithPage(c *gin.Context, data interface{}, limit, offset int, total int64) {
	c.JSON(http.StatusOK, &Response{
		Data:          data,
		Meta:          &MetaInfo{Limit: limit, Offset: offset, TotalItems: total},
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

// RespondOK sends a 200 OK response with data
func RespondOK(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusOK, data)
}

// RespondCreated sends a 201 Created response with data
func RespondCreated(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusCreated, data)
}

// RespondNoContent sends a 204 No Content response
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondBadRequest sends a 400 Bad Request response with an error
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, CodeBadRequest, message)
}

// RespondInternalError hides the cause from the caller; log it first
func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, CodeInternal, internalErrorMessage)
}
