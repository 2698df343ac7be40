package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/domain"
)

// LedgerStore 是帳務儲存層的介面 (driven port)
//
// 每次 RunInTx / ReadTx 代表一個原子單元：fn 內的所有寫入一起提交，
// fn 回傳錯誤或提交失敗時完全 rollback，其他呼叫者看不到中間狀態。
// 提交失敗一律包裝 domain.ErrStoreCommit。
type LedgerStore interface {
	// RunInTx 以讀寫原子單元執行 fn
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
	// ReadTx 以唯讀原子單元執行 fn
	ReadTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
	// Close 關閉底層資源
	Close() error
}

// LedgerTx 是單一原子單元內可用的操作
type LedgerTx interface {
	// LockOwnerAccounts 鎖定並回傳擁有者的全部帳戶 (依 CreatedAt 遞增)
	LockOwnerAccounts(ctx context.Context, owner domain.OwnerID) ([]*domain.Account, error)
	// FindAccount 以 id + owner 查詢，不屬於 owner 時回傳 domain.ErrAccountNotFound
	FindAccount(ctx context.Context, owner domain.OwnerID, accountID uuid.UUID) (*domain.Account, error)
	// ListAccountSummaries 依 CreatedAt 遞減列出帳戶與交易筆數
	ListAccountSummaries(ctx context.Context, owner domain.OwnerID) ([]domain.AccountSummary, error)
	// InsertAccount 新增帳戶
	InsertAccount(ctx context.Context, account *domain.Account) error
	// ClearDefault 取消擁有者所有帳戶的預設標記
	ClearDefault(ctx context.Context, owner domain.OwnerID) error
	// MarkDefault 將帳戶設為預設
	MarkDefault(ctx context.Context, owner domain.OwnerID, accountID uuid.UUID) error
	// IncrementBalance 以相對增量更新餘額 (balance = balance + delta)
	IncrementBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error
	// SetBalance 以絕對值設定餘額，僅供 reseed 使用
	SetBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error

	// FindOwnedTransactions 回傳 ids 中屬於 owner 的交易，其餘略過
	FindOwnedTransactions(ctx context.Context, owner domain.OwnerID, ids []uuid.UUID) ([]*domain.Transaction, error)
	// ListAccountTransactions 依 OccurredAt 遞減列出帳戶交易
	ListAccountTransactions(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error)
	// InsertTransactions 批次新增交易
	InsertTransactions(ctx context.Context, trans []*domain.Transaction) error
	// DeleteTransactions 刪除指定交易，回傳實際刪除筆數
	DeleteTransactions(ctx context.Context, owner domain.OwnerID, ids []uuid.UUID) (int64, error)
	// DeleteAccountTransactions 刪除帳戶下全部交易
	DeleteAccountTransactions(ctx context.Context, accountID uuid.UUID) (int64, error)
}
