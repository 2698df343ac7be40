package memory

import (
	"context"
	"sync"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/usecase"
)

// MutexStore 是一個使用 Mutex 實現的帳本儲存
//
// 結構:
//
//	state: 帳戶與交易資料
//	mu: 寫入單元持有寫鎖直到提交，讀取單元持有讀鎖
//	journal: Write-Ahead Log，可為 nil (純記憶體)
type MutexStore struct {
	mu      sync.RWMutex
	state   *state
	journal Journal
	closed  bool
}

// NewMutexStore 建立一個新的 MutexStore 實例
//
// 參數:
//
//	journal: Write-Ahead Log 實例 (nil 表示不持久化)
//
// 回傳:
//
//	*MutexStore: MutexStore 實例
//	error: 初始化錯誤 (如 WAL 恢復失敗)
func NewMutexStore(journal Journal) (*MutexStore, error) {
	s := newState()
	if err := s.recoverFromWAL(journal); err != nil {
		return nil, err
	}
	return &MutexStore{state: s, journal: journal}, nil
}

// RunInTx 以寫鎖執行原子單元
func (m *MutexStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx usecase.LedgerTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	return m.state.execute(ctx, m.journal, false, fn)
}

// ReadTx 以讀鎖執行唯讀單元
func (m *MutexStore) ReadTx(ctx context.Context, fn func(ctx context.Context, tx usecase.LedgerTx) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrStoreClosed
	}
	return m.state.execute(ctx, nil, true, fn)
}

// Close 之後的單元一律回傳 ErrStoreClosed；WAL 由建立者關閉
func (m *MutexStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ usecase.LedgerStore = (*MutexStore)(nil)
