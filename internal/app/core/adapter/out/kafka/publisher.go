package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/usecase"
)

// DefaultTopic 帳本事件的預設 topic
const DefaultTopic = "ledger_events"

const (
	// queueSize 待送事件的緩衝數量，滿了就丟棄並記錄
	queueSize = 1024
	// maxBatch 背景 goroutine 單次寫入的最大筆數
	maxBatch = 100
)

// ErrPublisherClosed Close 之後再發布
var ErrPublisherClosed = errors.New("kafka publisher closed")

// messageWriter kafka.Writer 中會用到的部分 (測試可替換)
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher 把提交後的帳本事件寫到 Kafka
//
// 以 owner 作為 message key，同一擁有者的事件落在同一 partition，保持順序。
// Publish 只把訊息放進佇列，實際寫入由背景 goroutine 負責，請求不會等待 broker。
type Publisher struct {
	writer messageWriter
	queue  chan kafka.Message
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return newPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	})
}

func newPublisher(w messageWriter) *Publisher {
	p := &Publisher{
		writer: w,
		queue:  make(chan kafka.Message, queueSize),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish 將事件排入佇列後立即返回
func (p *Publisher) Publish(ctx context.Context, event usecase.LedgerEvent) error {
	msg, err := buildMessage(event)
	if err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.queue <- msg:
	default:
		log.Printf("[kafka] queue full, dropping %s event for owner %s", event.Type, event.OwnerID)
	}
	return nil
}

// run 批次取出佇列中的訊息寫入 Kafka，佇列關閉後寫完剩餘訊息才結束
func (p *Publisher) run() {
	defer close(p.done)
	batch := make([]kafka.Message, 0, maxBatch)
	for msg := range p.queue {
		batch = append(batch[:0], msg)
	fill:
		for len(batch) < maxBatch {
			select {
			case next, ok := <-p.queue:
				if !ok {
					break fill
				}
				batch = append(batch, next)
			default:
				break fill
			}
		}
		if err := p.writer.WriteMessages(context.Background(), batch...); err != nil {
			log.Printf("[kafka] write %d events failed: %v", len(batch), err)
		}
	}
}

// Close 停止接收新事件，等待佇列寫完後關閉 writer
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.writer.Close()
}

func buildMessage(event usecase.LedgerEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.OwnerID),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}, nil
}

var _ usecase.EventPublisher = (*Publisher)(nil)
