package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-expense-ledger/internal/app/core/usecase"
)

var (
	// ErrReadOnlyUnit 唯讀單元內呼叫了寫入
	ErrReadOnlyUnit = errors.New("write inside read-only unit")

	// ErrStoreClosed store 已關閉
	ErrStoreClosed = fmt.Errorf("%w: store closed", domain.ErrStoreCommit)

	errDuplicateID = errors.New("duplicate id")
)

// state 帳本的記憶體狀態，呼叫端負責序列化存取
type state struct {
	accounts     map[uuid.UUID]*domain.Account
	transactions map[uuid.UUID]*domain.Transaction
	// byAccount: accountID -> 交易 id 集合
	byAccount map[uuid.UUID]map[uuid.UUID]struct{}
	// seq 已提交單元的序號，寫入 WAL 用於重放
	seq uint64
}

func newState() *state {
	return &state{
		accounts:     make(map[uuid.UUID]*domain.Account),
		transactions: make(map[uuid.UUID]*domain.Transaction),
		byAccount:    make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// execute 執行一個原子單元
//
// fn 直接修改 state，同時記錄 undo 與 redo；fn 失敗或 WAL 寫入失敗時依 undo 反向還原。
// 呼叫端必須持有互斥權 (mutex 或單一 writer goroutine)，其他人看不到中間狀態。
func (s *state) execute(ctx context.Context, journal Journal, readOnly bool, fn func(ctx context.Context, tx usecase.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memTx{state: s, readOnly: readOnly}
	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	if readOnly || len(tx.redo) == 0 {
		return nil
	}
	if journal != nil {
		if err := journal.Write(walRecord{Seq: s.seq + 1, Ops: tx.redo}); err != nil {
			tx.rollback()
			return fmt.Errorf("%w: wal write: %v", domain.ErrStoreCommit, err)
		}
	}
	s.seq++
	return nil
}

// memTx 實作 usecase.LedgerTx
type memTx struct {
	state    *state
	readOnly bool
	undo     []func()
	redo     []walOp
}

func (t *memTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.redo = nil
}

func (t *memTx) writable() error {
	if t.readOnly {
		return ErrReadOnlyUnit
	}
	return nil
}

func (t *memTx) record(op walOp, undo func()) {
	t.redo = append(t.redo, op)
	t.undo = append(t.undo, undo)
}

func (t *memTx) ownerAccounts(owner domain.OwnerID) []*domain.Account {
	var out []*domain.Account
	for _, a := range t.state.accounts {
		if a.OwnerID == owner {
			out = append(out, a)
		}
	}
	return out
}

func (t *memTx) LockOwnerAccounts(ctx context.Context, owner domain.OwnerID) ([]*domain.Account, error) {
	accounts := t.ownerAccounts(owner)
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	out := make([]*domain.Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Clone())
	}
	return out, nil
}

func (t *memTx) FindAccount(ctx context.Context, owner domain.OwnerID, accountID uuid.UUID) (*domain.Account, error) {
	a, ok := t.state.accounts[accountID]
	if !ok || a.OwnerID != owner {
		return nil, domain.ErrAccountNotFound
	}
	return a.Clone(), nil
}

func (t *memTx) ListAccountSummaries(ctx context.Context, owner domain.OwnerID) ([]domain.AccountSummary, error) {
	accounts := t.ownerAccounts(owner)
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.After(accounts[j].CreatedAt)
	})
	out := make([]domain.AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, domain.AccountSummary{
			Account:          a.Clone(),
			TransactionCount: int64(len(t.state.byAccount[a.ID])),
		})
	}
	return out, nil
}

func (t *memTx) InsertAccount(ctx context.Context, account *domain.Account) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.state.accounts[account.ID]; ok {
		return fmt.Errorf("account %s: %w", account.ID, errDuplicateID)
	}
	stored := account.Clone()
	t.state.accounts[stored.ID] = stored
	t.record(walOp{Op: opInsertAccount, Account: stored.Clone()}, func() {
		delete(t.state.accounts, stored.ID)
	})
	return nil
}

func (t *memTx) ClearDefault(ctx context.Context, owner domain.OwnerID) error {
	if err := t.writable(); err != nil {
		return err
	}
	var cleared []*domain.Account
	for _, a := range t.ownerAccounts(owner) {
		if a.IsDefault {
			a.IsDefault = false
			cleared = append(cleared, a)
		}
	}
	t.record(walOp{Op: opClearDefault, Owner: owner}, func() {
		for _, a := range cleared {
			a.IsDefault = true
		}
	})
	return nil
}

func (t *memTx) MarkDefault(ctx context.Context, owner domain.OwnerID, accountID uuid.UUID) error {
	if err := t.writable(); err != nil {
		return err
	}
	a, ok := t.state.accounts[accountID]
	if !ok || a.OwnerID != owner {
		return domain.ErrAccountNotFound
	}
	prev := a.IsDefault
	a.IsDefault = true
	t.record(walOp{Op: opMarkDefault, Owner: owner, AccountID: accountID}, func() {
		a.IsDefault = prev
	})
	return nil
}

func (t *memTx) IncrementBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	if err := t.writable(); err != nil {
		return err
	}
	a, ok := t.state.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	prev := a.Balance
	a.Balance = prev.Add(delta)
	t.record(walOp{Op: opIncrementBalance, AccountID: accountID, Amount: delta}, func() {
		a.Balance = prev
	})
	return nil
}

func (t *memTx) SetBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	if err := t.writable(); err != nil {
		return err
	}
	a, ok := t.state.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	prev := a.Balance
	a.Balance = balance
	t.record(walOp{Op: opSetBalance, AccountID: accountID, Amount: balance}, func() {
		a.Balance = prev
	})
	return nil
}

func (t *memTx) FindOwnedTransactions(ctx context.Context, owner domain.OwnerID, ids []uuid.UUID) ([]*domain.Transaction, error) {
	out := make([]*domain.Transaction, 0, len(ids))
	for _, id := range ids {
		tr, ok := t.state.transactions[id]
		if !ok || tr.OwnerID != owner {
			continue
		}
		out = append(out, tr.Clone())
	}
	return out, nil
}

func (t *memTx) ListAccountTransactions(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	ids := t.state.byAccount[accountID]
	out := make([]*domain.Transaction, 0, len(ids))
	for id := range ids {
		out = append(out, t.state.transactions[id].Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return out, nil
}

func (t *memTx) InsertTransactions(ctx context.Context, trans []*domain.Transaction) error {
	if err := t.writable(); err != nil {
		return err
	}
	stored := make([]*domain.Transaction, 0, len(trans))
	for _, tr := range trans {
		if _, ok := t.state.accounts[tr.AccountID]; !ok {
			t.dropTransactions(stored)
			return domain.ErrAccountNotFound
		}
		if _, ok := t.state.transactions[tr.ID]; ok {
			t.dropTransactions(stored)
			return fmt.Errorf("transaction %s: %w", tr.ID, errDuplicateID)
		}
		cp := tr.Clone()
		t.putTransaction(cp)
		stored = append(stored, cp)
	}
	journaled := make([]*domain.Transaction, 0, len(stored))
	for _, tr := range stored {
		journaled = append(journaled, tr.Clone())
	}
	t.record(walOp{Op: opInsertTransactions, Transactions: journaled}, func() {
		t.dropTransactions(stored)
	})
	return nil
}

func (t *memTx) DeleteTransactions(ctx context.Context, owner domain.OwnerID, ids []uuid.UUID) (int64, error) {
	if err := t.writable(); err != nil {
		return 0, err
	}
	var removed []*domain.Transaction
	for _, id := range ids {
		tr, ok := t.state.transactions[id]
		if !ok || tr.OwnerID != owner {
			continue
		}
		removed = append(removed, tr)
	}
	t.dropTransactions(removed)
	t.record(walOp{Op: opDeleteTransactions, Owner: owner, IDs: ids}, func() {
		for _, tr := range removed {
			t.putTransaction(tr)
		}
	})
	return int64(len(removed)), nil
}

func (t *memTx) DeleteAccountTransactions(ctx context.Context, accountID uuid.UUID) (int64, error) {
	if err := t.writable(); err != nil {
		return 0, err
	}
	var removed []*domain.Transaction
	for id := range t.state.byAccount[accountID] {
		removed = append(removed, t.state.transactions[id])
	}
	t.dropTransactions(removed)
	t.record(walOp{Op: opDeleteAccountTransactions, AccountID: accountID}, func() {
		for _, tr := range removed {
			t.putTransaction(tr)
		}
	})
	return int64(len(removed)), nil
}

func (t *memTx) putTransaction(tr *domain.Transaction) {
	t.state.transactions[tr.ID] = tr
	idx, ok := t.state.byAccount[tr.AccountID]
	if !ok {
		idx = make(map[uuid.UUID]struct{})
		t.state.byAccount[tr.AccountID] = idx
	}
	idx[tr.ID] = struct{}{}
}

func (t *memTx) dropTransactions(trans []*domain.Transaction) {
	for _, tr := range trans {
		delete(t.state.transactions, tr.ID)
		if idx, ok := t.state.byAccount[tr.AccountID]; ok {
			delete(idx, tr.ID)
			if len(idx) == 0 {
				delete(t.state.byAccount, tr.AccountID)
			}
		}
	}
}

var _ usecase.LedgerTx = (*memTx)(nil)
