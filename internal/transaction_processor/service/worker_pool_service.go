package service

import (
	"context"
	"log/slog"

	"github.com/finnova-banking-ledger/internal/domain/transaction"
	"github.com/panjf2000/ants/v2"
)

type WorkerPoolConfig struct {
	Size int
}

// WorkerPoolProcessor bounds the number of operations in flight by running
// each one on an ants worker and waiting for its result.
type WorkerPoolProcessor struct {
	base   TransactionProcessor
	pool   *ants.Pool
	logger *slog.Logger
}

var _ TransactionProcessor = (*WorkerPoolProcessor)(nil)

func NewWorkerPoolProcessor(base TransactionProcessor, config WorkerPoolConfig, logger *slog.Logger) (*WorkerPoolProcessor, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}
	return &WorkerPoolProcessor{base: base, pool: pool, logger: logger}, nil
}

type result struct {
	tx  *transaction.Transaction
	err error
}

// submit runs op on the pool. The result channel is buffered so a worker
// never blocks when the caller has already gone away.
func (s *WorkerPoolProcessor) submit(ctx context.Context, op string, fn func() (*transaction.Transaction, error)) (*transaction.Transaction, error) {
	resultChan := make(chan result, 1)

	if err := s.pool.Submit(func() {
		tx, err := fn()
		resultChan <- result{tx: tx, err: err}
	}); err != nil {
		s.logger.Error("Failed to submit operation to worker pool", "operation", op, "error", err)
		return nil, err
	}

	select {
	case r := <-resultChan:
		return r.tx, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *WorkerPoolProcessor) Deposit(ctx context.Context, req DepositRequest) (*transaction.Transaction, error) {
	return s.submit(ctx, "deposit", func() (*transaction.Transaction, error) {
		return s.base.Deposit(ctx, req)
	})
}

func (s *WorkerPoolProcessor) Withdrawal(ctx context.Context, req WithdrawalRequest) (*transaction.Transaction, error) {
	return s.submit(ctx, "withdrawal", func() (*transaction.Transaction, error) {
		return s.base.Withdrawal(ctx, req)
	})
}

func (s *WorkerPoolProcessor) Payment(ctx context.Context, req PaymentRequest) (*transaction.Transaction, error) {
	return s.submit(ctx, "payment", func() (*transaction.Transaction, error) {
		return s.base.Payment(ctx, req)
	})
}

func (s *WorkerPoolProcessor) CreditCharge(ctx context.Context, req CreditChargeRequest) (*transaction.Transaction, error) {
	return s.submit(ctx, "credit_charge", func() (*transaction.Transaction, error) {
		return s.base.CreditCharge(ctx, req)
	})
}

// Shutdown releases the pool; queued tasks are dropped
func (s *WorkerPoolProcessor) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

func (s *WorkerPoolProcessor) Running() int {
	return s.pool.Running()
}

func (s *WorkerPoolProcessor) Capacity() int {
	return s.pool.Cap()
}
