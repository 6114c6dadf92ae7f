package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/outbox"
	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestOutboxRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}

	t.Run("success", func(t *testing.T) {
		msg := outbox.NewMessage("transaction-created", "DEP-0A0B0C0D", []byte(`{"a":1}`))
		mock.ExpectQuery(`INSERT INTO event_outbox`).
			WithArgs(msg.EventID, msg.Topic, msg.MessageKey, msg.Payload, msg.Status, msg.Attempts, msg.CreatedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

		require.NoError(t, repo.Create(ctx, msg))
		assert.Equal(t, int64(42), msg.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate event", func(t *testing.T) {
		msg := outbox.NewMessage("transaction-created", "DEP-0A0B0C0D", []byte(`{}`))
		mock.ExpectQuery(`INSERT INTO event_outbox`).
			WithArgs(msg.EventID, msg.Topic, msg.MessageKey, msg.Payload, msg.Status, msg.Attempts, msg.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.Create(ctx, msg)
		var dup outbox.ErrDuplicateMessage
		assert.ErrorAs(t, err, &dup)
		assert.Equal(t, msg.EventID, dup.EventID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		msg := outbox.NewMessage("transaction-failed", "WTH-0A0B0C0D", []byte(`{}`))
		dbErr := errors.New("connection reset")
		mock.ExpectQuery(`INSERT INTO event_outbox`).
			WithArgs(msg.EventID, msg.Topic, msg.MessageKey, msg.Payload, msg.Status, msg.Attempts, msg.CreatedAt).
			WillReturnError(dbErr)

		err := repo.Create(ctx, msg)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to create outbox message")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_GetPending(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}
	eventID := uuid.New()
	created := time.Now().Add(-time.Minute)

	rows := pgxmock.NewRows([]string{"id", "event_id", "topic", "message_key", "payload", "status", "attempts", "created_at", "last_attempt_at"}).
		AddRow(int64(1), eventID, "transfer-failed", "TRF-0A0B0C0D", json.RawMessage(`{"x":true}`), shared.OutboxStatusPending, 2, created, nil)

	mock.ExpectQuery(`FROM event_outbox\s+WHERE status = \$1`).
		WithArgs(shared.OutboxStatusPending, 50).
		WillReturnRows(rows)

	messages, err := repo.GetPending(ctx, 50)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	assert.Equal(t, int64(1), messages[0].ID)
	assert.Equal(t, eventID, messages[0].EventID)
	assert.Equal(t, "transfer-failed", messages[0].Topic)
	assert.Equal(t, "TRF-0A0B0C0D", messages[0].MessageKey)
	assert.Equal(t, 2, messages[0].Attempts)
	assert.Nil(t, messages[0].LastAttemptAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_StatusUpdates(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}

	t.Run("update status", func(t *testing.T) {
		mock.ExpectExec(`UPDATE event_outbox\s+SET status = \$1`).
			WithArgs(shared.OutboxStatusProcessed, pgxmock.AnyArg(), int64(7)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.UpdateStatus(ctx, 7, shared.OutboxStatusProcessed))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update status missing row", func(t *testing.T) {
		mock.ExpectExec(`UPDATE event_outbox\s+SET status = \$1`).
			WithArgs(shared.OutboxStatusFailedToPublish, pgxmock.AnyArg(), int64(8)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateStatus(ctx, 8, shared.OutboxStatusFailedToPublish)
		assert.ErrorAs(t, err, &outbox.ErrMessageNotFound{})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("increment attempts", func(t *testing.T) {
		mock.ExpectExec(`SET attempts = attempts \+ 1`).
			WithArgs(pgxmock.AnyArg(), int64(9)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.IncrementAttempts(ctx, 9))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_GetByEventID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}
	eventID := uuid.New()

	mock.ExpectQuery(`WHERE event_id = \$1`).WithArgs(eventID).WillReturnError(pgx.ErrNoRows)

	msg, err := repo.GetByEventID(context.Background(), eventID)
	assert.NoError(t, err)
	assert.Nil(t, msg)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_WithTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}
	txRepo := repo.WithTx(tx)

	require.IsType(t, &OutboxRepository{}, txRepo)
	assert.Equal(t, tx, txRepo.(*OutboxRepository).querier)
}
