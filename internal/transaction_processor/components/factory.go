package components

import (
	"log/slog"

	"github.com/finnova-banking-ledger/internal/config"
	"github.com/finnova-banking-ledger/internal/domain/commission"
	"github.com/finnova-banking-ledger/internal/domain/outbox"
	"github.com/finnova-banking-ledger/internal/domain/transaction"
	"github.com/finnova-banking-ledger/internal/domain/transfer"
	"github.com/finnova-banking-ledger/internal/transaction_processor/saga"
	"github.com/finnova-banking-ledger/internal/transaction_processor/service"
)

// LedgerCore is the wired transaction service
type LedgerCore struct {
	Processor service.TransactionProcessor
	Queries   *service.QueryService
	Transfers *saga.Orchestrator
	pool      *service.WorkerPoolProcessor
}

// Shutdown releases the worker pool when one was built
func (c *LedgerCore) Shutdown() {
	if c.pool != nil {
		c.pool.Shutdown()
	}
}

// CreateEventDispatcher picks the delivery path configured for lifecycle events
func CreateEventDispatcher(cfg *config.Config, outboxRepo outbox.Repository, direct EventDispatcher, logger *slog.Logger) EventDispatcher {
	if cfg.Events.DeliveryMode == config.DeliveryModeDirect && direct != nil {
		logger.Info("Publishing events directly to the broker")
		return direct
	}
	logger.Info("Publishing events through the outbox")
	return NewOutboxDispatcher(outboxRepo, logger.With("component", "outbox_dispatcher"))
}

// CreateLedgerCore creates the processor, query service and transfer
// orchestrator with all their dependencies.
func CreateLedgerCore(
	ledgerRepo transaction.Repository,
	sagaRepo transfer.Repository,
	accounts service.AccountClient,
	events service.EventSink,
	logger *slog.Logger,
	cfg *config.Config,
) *LedgerCore {
	base := service.NewProcessor(
		logger.With("component", "processor"),
		ledgerRepo,
		accounts,
		events,
		commission.DefaultPolicy(),
	)

	core := &LedgerCore{
		Processor: base,
		Queries:   service.NewQueryService(logger.With("component", "queries"), ledgerRepo, accounts),
		Transfers: saga.NewOrchestrator(
			logger.With("component", "transfers"),
			accounts,
			base,
			ledgerRepo,
			sagaRepo,
			events,
			cfg.Saga.ListLimit,
		),
	}

	if cfg.WorkerPool.Size <= 0 {
		logger.Warn("Worker pool disabled, running operations on the caller goroutine")
		return core
	}

	pool, err := service.NewWorkerPoolProcessor(
		base,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool, falling back to base processor", "error", err)
		return core
	}

	logger.Info("Created worker pool processor", "pool_size", cfg.WorkerPool.Size)
	core.Processor = pool
	core.pool = pool
	return core
}
