package components

import (
	"context"
	"testing"

	"github.com/finnova-banking-ledger/internal/config"
	"github.com/finnova-banking-ledger/internal/domain/outbox"
	"github.com/finnova-banking-ledger/internal/transaction_processor/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopDispatcher struct{}

func (nopDispatcher) Publish(context.Context, string, string, []byte) error { return nil }

func TestCreateLedgerCore(t *testing.T) {
	logger := testLogger()

	t.Run("wraps the processor in a worker pool", func(t *testing.T) {
		cfg := &config.Config{WorkerPool: config.WorkerPoolConfig{Size: 5}, Saga: config.SagaConfig{ListLimit: 10}}

		core := CreateLedgerCore(nil, nil, nil, NewEventSink(logger, nopDispatcher{}, "test"), logger, cfg)
		defer core.Shutdown()

		pool, ok := core.Processor.(*service.WorkerPoolProcessor)
		require.True(t, ok)
		assert.Equal(t, 5, pool.Capacity())
		assert.NotNil(t, core.Queries)
		assert.NotNil(t, core.Transfers)
	})

	t.Run("falls back to the base processor without a pool size", func(t *testing.T) {
		cfg := &config.Config{WorkerPool: config.WorkerPoolConfig{Size: 0}}

		core := CreateLedgerCore(nil, nil, nil, NewEventSink(logger, nopDispatcher{}, "test"), logger, cfg)
		core.Shutdown()

		_, ok := core.Processor.(*service.Processor)
		assert.True(t, ok)
	})
}

func TestCreateEventDispatcher(t *testing.T) {
	logger := testLogger()
	repo := new(MockOutboxRepo)

	tests := []struct {
		name       string
		mode       string
		direct     EventDispatcher
		wantOutbox bool
	}{
		{name: "outbox mode", mode: config.DeliveryModeOutbox, direct: nopDispatcher{}, wantOutbox: true},
		{name: "direct mode", mode: config.DeliveryModeDirect, direct: nopDispatcher{}},
		{name: "direct mode without producer", mode: config.DeliveryModeDirect, wantOutbox: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Events: config.EventsConfig{DeliveryMode: tt.mode}}
			d := CreateEventDispatcher(cfg, repo, tt.direct, logger)
			_, isOutbox := d.(*OutboxDispatcher)
			assert.Equal(t, tt.wantOutbox, isOutbox)
		})
	}
}

var _ outbox.Repository = (*MockOutboxRepo)(nil)
