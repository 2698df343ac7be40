package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/domain"
)

// Journal 是 WAL 的最小介面，pkg/wal.WAL 即實作
type Journal interface {
	// Write 寫入一筆資料並刷入硬碟
	Write(v any) error
	// ReadAll 依序讀出所有資料
	ReadAll(callback func(jsonRaw []byte) error) error
}

type opCode string

const (
	opInsertAccount             opCode = "insert_account"
	opClearDefault              opCode = "clear_default"
	opMarkDefault               opCode = "mark_default"
	opIncrementBalance          opCode = "increment_balance"
	opSetBalance                opCode = "set_balance"
	opInsertTransactions        opCode = "insert_transactions"
	opDeleteTransactions        opCode = "delete_transactions"
	opDeleteAccountTransactions opCode = "delete_account_transactions"
)

// walRecord 一個已提交的原子單元 = 一筆 WAL 紀錄
type walRecord struct {
	Seq uint64  `json:"seq"`
	Ops []walOp `json:"ops"`
}

// walOp redo 操作
type walOp struct {
	Op           opCode                `json:"op"`
	Owner        domain.OwnerID        `json:"owner,omitempty"`
	AccountID    uuid.UUID             `json:"account_id,omitempty"`
	Amount       decimal.Decimal       `json:"amount,omitempty"`
	IDs          []uuid.UUID           `json:"ids,omitempty"`
	Account      *domain.Account       `json:"account,omitempty"`
	Transactions []*domain.Transaction `json:"transactions,omitempty"`
}

// recoverFromWAL 從 WAL 檔案恢復帳本狀態
// 只在建構時呼叫，無需 Lock (單執行緒)
func (s *state) recoverFromWAL(journal Journal) error {
	if journal == nil {
		return nil
	}
	ctx := context.Background()
	return journal.ReadAll(func(jsonRaw []byte) error {
		var rec walRecord
		if err := json.Unmarshal(jsonRaw, &rec); err != nil {
			return err
		}
		if rec.Seq <= s.seq {
			return fmt.Errorf("wal: record %d out of order (last %d)", rec.Seq, s.seq)
		}
		tx := &memTx{state: s}
		for _, op := range rec.Ops {
			if err := tx.apply(ctx, op); err != nil {
				return fmt.Errorf("wal: replay record %d op %s: %w", rec.Seq, op.Op, err)
			}
		}
		s.seq = rec.Seq
		return nil
	})
}

// apply 重放單一 redo 操作
func (t *memTx) apply(ctx context.Context, op walOp) error {
	switch op.Op {
	case opInsertAccount:
		return t.InsertAccount(ctx, op.Account)
	case opClearDefault:
		return t.ClearDefault(ctx, op.Owner)
	case opMarkDefault:
		return t.MarkDefault(ctx, op.Owner, op.AccountID)
	case opIncrementBalance:
		return t.IncrementBalance(ctx, op.AccountID, op.Amount)
	case opSetBalance:
		return t.SetBalance(ctx, op.AccountID, op.Amount)
	case opInsertTransactions:
		return t.InsertTransactions(ctx, op.Transactions)
	case opDeleteTransactions:
		_, err := t.DeleteTransactions(ctx, op.Owner, op.IDs)
		return err
	case opDeleteAccountTransactions:
		_, err := t.DeleteAccountTransactions(ctx, op.AccountID)
		return err
	}
	return fmt.Errorf("unknown op %q", op.Op)
}
