package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/domain"
)

// EventType 帳本事件類型
type EventType string

const (
	EventAccountCreated        EventType = "account.created"
	EventDefaultAccountChanged EventType = "account.default_changed"
	EventTransactionCreated    EventType = "transaction.created"
	EventTransactionsDeleted   EventType = "transactions.deleted"
	EventAccountReseeded       EventType = "account.reseeded"
)

// LedgerEvent 在原子單元提交後發布，供通知/排程端 (如預算提醒) 使用
type LedgerEvent struct {
	Type       EventType      `json:"type"`
	OwnerID    domain.OwnerID `json:"owner_id"`
	AccountIDs []uuid.UUID    `json:"account_ids"`
	Count      int            `json:"count,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// EventPublisher 事件發布介面
type EventPublisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
}

// NopPublisher 不發布任何事件
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, LedgerEvent) error { return nil }
