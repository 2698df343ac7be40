package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind 交易類型
type TransactionKind string

const (
	// 收入
	TransactionKindIncome TransactionKind = "INCOME"
	// 支出
	TransactionKindExpense TransactionKind = "EXPENSE"
)

// ParseTransactionKind 不分大小寫解析交易類型
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch TransactionKind(strings.ToUpper(strings.TrimSpace(s))) {
	case TransactionKindIncome:
		return TransactionKindIncome, nil
	case TransactionKindExpense:
		return TransactionKindExpense, nil
	}
	return "", ErrInvalidTransactionKind
}

// TransactionStatus 交易狀態
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction 交易
//
// OwnerID 在建立時必須等於所屬帳戶的 OwnerID，之後不再驗證 (沒有改綁帳戶的操作)。
type Transaction struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	OwnerID     OwnerID
	Kind        TransactionKind
	Amount      decimal.Decimal
	Description string
	Category    string
	Status      TransactionStatus
	OccurredAt  time.Time
	CreatedAt   time.Time
}

// Effect 交易對餘額的影響：收入為正、支出為負。
// 全系統唯一的正負號規則，建立與刪除都必須經過這裡。
func Effect(t *Transaction) decimal.Decimal {
	if t.Kind == TransactionKindIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}

// InverseEffect 刪除交易時套用的 delta
func InverseEffect(t *Transaction) decimal.Decimal {
	return Effect(t).Neg()
}

// SumEffects 回傳一組交易的 signed effect 總和
func SumEffects(trans []*Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range trans {
		total = total.Add(Effect(t))
	}
	return total
}

// Clone 回傳值拷貝
func (t *Transaction) Clone() *Transaction {
	cp := *t
	return &cp
}
