package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/finnova-banking-ledger/internal/domain/transaction"
	"github.com/finnova-banking-ledger/internal/domain/transfer"
	"github.com/finnova-banking-ledger/internal/platform/httpserver/response"
	"github.com/finnova-banking-ledger/internal/transaction_processor/service"
	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Order matters: a failed transfer leg wraps the remote cause, so the
// business errors are matched before the generic fallbacks.
var errorMappings = []errorMapping{
	{shared.ErrProductNotFound{}, http.StatusNotFound, response.CodeProductNotFound},
	{transaction.ErrTransactionNotFound{}, http.StatusNotFound, response.CodeTransactionNotFound},
	{transfer.ErrTransferNotFound{}, http.StatusNotFound, response.CodeTransferNotFound},
	{shared.ErrInsufficientBalance{}, http.StatusBadRequest, response.CodeInsufficientBalance},
	{shared.ErrInvalidTransaction{}, http.StatusBadRequest, response.CodeInvalidTransaction},
	{shared.ErrOverdueDebt{}, http.StatusForbidden, response.CodeOverdueDebt},
	{transaction.ErrInvalidStatusTransition{}, http.StatusConflict, response.CodeConflict},
	{transfer.ErrInvalidStateTransition{}, http.StatusConflict, response.CodeConflict},
	{transfer.ErrReversalInProgress{}, http.StatusConflict, response.CodeConflict},
	{service.ErrAccountServiceUnavailable, http.StatusServiceUnavailable, response.CodeServiceUnavailable},
}

// respondError renders err with the status of the first matching mapping and
// falls back to an opaque 500.
func respondError(c *gin.Context, logger *slog.Logger, msg string, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			logger.Warn(msg, "error", err, "status", m.status)
			response.RespondWithError(c, m.status, m.code, err.Error())
			return
		}
	}
	logger.Error(msg, "error", err)
	response.RespondInternalError(c)
}
