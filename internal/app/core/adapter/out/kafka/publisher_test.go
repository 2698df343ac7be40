package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/usecase"
)

func TestBuildMessage(t *testing.T) {
	accountID := uuid.New()
	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	event := usecase.LedgerEvent{
		Type:       usecase.EventTransactionsDeleted,
		OwnerID:    "alice",
		AccountIDs: []uuid.UUID{accountID},
		Count:      2,
		OccurredAt: at,
	}

	msg, err := buildMessage(event)
	assert.NoError(t, err)
	assert.Equal(t, "alice", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	assert.Equal(t, 1, len(msg.Headers))
	assert.Equal(t, "transactions.deleted", string(msg.Headers[0].Value))

	var decoded usecase.LedgerEvent
	assert.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.Type, decoded.Type)
	assert.Equal(t, []uuid.UUID{accountID}, decoded.AccountIDs)
	assert.Equal(t, 2, decoded.Count)
}

func TestNewPublisherDefaultTopic(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "")
	defer p.Close()
	w, ok := p.writer.(*kafka.Writer)
	assert.True(t, ok)
	assert.Equal(t, DefaultTopic, w.Topic)
}

// blockingWriter 在 release 關閉前卡住所有寫入，模擬連不上的 broker
type blockingWriter struct {
	release chan struct{}

	mu      sync.Mutex
	written []kafka.Message
	closed  bool
}

func (w *blockingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	<-w.release
	w.mu.Lock()
	defer w.mu.Unlock()
	w.written = append(w.written, msgs...)
	return nil
}

func (w *blockingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestPublishDoesNotWaitForBroker(t *testing.T) {
	w := &blockingWriter{release: make(chan struct{})}
	p := newPublisher(w)

	start := time.Now()
	for i := 0; i < 20; i++ {
		err := p.Publish(context.Background(), usecase.LedgerEvent{Type: usecase.EventTransactionCreated, OwnerID: "alice", Count: i})
		assert.NoError(t, err)
	}
	assert.True(t, time.Since(start) < time.Second, "publish blocked on the writer")

	close(w.release)
	assert.NoError(t, p.Close())

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Equal(t, 20, len(w.written))
	assert.True(t, w.closed)
}

func TestPublishAfterClose(t *testing.T) {
	w := &blockingWriter{release: make(chan struct{})}
	close(w.release)
	p := newPublisher(w)
	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())

	err := p.Publish(context.Background(), usecase.LedgerEvent{Type: usecase.EventAccountCreated, OwnerID: "alice"})
	assert.IsError(t, err, ErrPublisherClosed)
}

func TestPublishDropsWhenQueueFull(t *testing.T) {
	w := &blockingWriter{release: make(chan struct{})}
	p := newPublisher(w)

	// 背景 goroutine 最多先取走一批，其餘超出佇列容量的事件會被丟棄
	total := queueSize + maxBatch + 50
	for i := 0; i < total; i++ {
		assert.NoError(t, p.Publish(context.Background(), usecase.LedgerEvent{Type: usecase.EventTransactionCreated, OwnerID: "alice"}))
	}
	close(w.release)
	assert.NoError(t, p.Close())

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.True(t, len(w.written) < total)
	assert.True(t, len(w.written) >= queueSize)
}
