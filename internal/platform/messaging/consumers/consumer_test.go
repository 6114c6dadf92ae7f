package consumers

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/finnova-banking-ledger/internal/config"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves queued messages then blocks until the context ends
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func (r *fakeReader) committedKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, len(r.committed))
	for i, m := range r.committed {
		keys[i] = string(m.Key)
	}
	return keys
}

func TestNewKafkaConsumer(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := &config.KafkaConfig{
		Brokers:       "localhost:9092",
		ConsumerGroup: "test-group",
		MinBytes:      1024,
		MaxBytes:      10240,
		MaxWait:       time.Second,
	}

	consumer := NewKafkaConsumer(context.Background(), logger, cfg, "transfer-failed")
	require.NotNil(t, consumer)
	require.NotNil(t, consumer.reader)
	assert.Equal(t, "transfer-failed", consumer.topic)
	assert.Equal(t, "test-group", consumer.groupID)
}

func TestKafkaConsumer_CommitsOnlyHandledMessages(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	reader := &fakeReader{queue: []kafka.Message{
		{Key: []byte("ok-1")},
		{Key: []byte("fail")},
		{Key: []byte("ok-2")},
	}}
	consumer := &KafkaConsumer{reader: reader, logger: logger, topic: "t", groupID: "g", retryDelay: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handled := make(chan string, 3)
	require.NoError(t, consumer.Subscribe(ctx, func(_ context.Context, key, _ []byte) error {
		handled <- string(key)
		if string(key) == "fail" {
			return errors.New("handler failed")
		}
		return nil
	}))

	for i := 0; i < 3; i++ {
		select {
		case <-handled:
		case <-time.After(2 * time.Second):
			t.Fatal("handler was not invoked")
		}
	}

	assert.Eventually(t, func() bool {
		return len(reader.committedKeys()) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"ok-1", "ok-2"}, reader.committedKeys())
}

func TestKafkaConsumer_Close(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("ClosesReader", func(t *testing.T) {
		reader := &fakeReader{}
		consumer := &KafkaConsumer{reader: reader, logger: logger}
		require.NoError(t, consumer.Close())
		assert.True(t, reader.closed)
	})

	t.Run("NilReader", func(t *testing.T) {
		consumer := &KafkaConsumer{logger: logger}
		require.NoError(t, consumer.Close())
	})
}
