package handler

import (
	"log/slog"

	"github.com/finnova-banking-ledger/internal/domain/transfer"
	"github.com/finnova-banking-ledger/internal/platform/httpserver/response"
	"github.com/gin-gonic/gin"
)

// TransferHandler exposes saga inspection and manual compensation
type TransferHandler struct {
	transfers Transfers
	logger    *slog.Logger
}

func NewTransferHandler(logger *slog.Logger, transfers Transfers) *TransferHandler {
	return &TransferHandler{
		transfers: transfers,
		logger:    logger,
	}
}

// List returns sagas in the requested state, typically CREDIT_FAILED
func (h *TransferHandler) List(c *gin.Context) {
	var params TransferListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.RespondBadRequest(c, "Query parameter state is required")
		return
	}

	items, err := h.transfers.ListByState(c.Request.Context(), transfer.State(params.State))
	if err != nil {
		respondError(c, h.logger, "Failed to list transfers", err)
		return
	}
	if items == nil {
		items = []*transfer.Transfer{}
	}
	response.RespondOK(c, items)
}

func (h *TransferHandler) Get(c *gin.Context) {
	result, err := h.transfers.Get(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, h.logger, "Failed to get transfer", err)
		return
	}
	response.RespondOK(c, result)
}

// Reverse credits the debited amount back to the source of a CREDIT_FAILED transfer
func (h *TransferHandler) Reverse(c *gin.Context) {
	token := c.Param("token")
	result, err := h.transfers.Reverse(c.Request.Context(), token)
	if err != nil {
		respondError(c, h.logger, "Failed to reverse transfer", err)
		return
	}
	h.logger.Info("Transfer reversed", "transfer_token", token)
	response.RespondCreated(c, result)
}
