package outbox

import (
	"encoding/json"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Message holds an encoded event awaiting relay to the broker
type Message struct {
	ID            int64               `json:"id"`
	EventID       uuid.UUID           `json:"event_id"`
	Topic         string              `json:"topic"`
	MessageKey    string              `json:"message_key"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

// NewMessage wraps an already encoded payload for the given topic and key
func NewMessage(topic, key string, payload []byte) *Message {
	return &Message{
		EventID:    uuid.New(),
		Topic:      topic,
		MessageKey: key,
		Payload:    payload,
		Status:     shared.OutboxStatusPending,
		CreatedAt:  time.Now(),
	}
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// Exhausted reports whether the next failed attempt reaches the retry ceiling
func (m *Message) Exhausted(maxAttempts int) bool {
	return m.Attempts+1 >= maxAttempts
}
