package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-expense-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-expense-ledger/pkg/mysql"
)

// insertBatchSize reseed 時批次寫入的筆數
const insertBatchSize = 500

// MySQLStore 以 GORM Transaction 作為原子單元的帳本儲存
type MySQLStore struct {
	client *mysql.Client
}

func NewMySQLStore(client *mysql.Client) *MySQLStore {
	return &MySQLStore{
		client: client,
	}
}

// Migrate 建立/更新資料表
func (s *MySQLStore) Migrate(ctx context.Context) error {
	return s.client.DB().WithContext(ctx).AutoMigrate(&sqlAccount{}, &sqlTransaction{})
}

// RunInTx 以資料庫交易執行原子單元，fn 回傳錯誤時 GORM 自動 rollback
func (s *MySQLStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx usecase.LedgerTx) error) error {
	err := s.client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormTx{db: tx})
	})
	return domain.AsStoreError(err)
}

// ReadTx 以唯讀交易執行，確保多次查詢看到同一份快照
func (s *MySQLStore) ReadTx(ctx context.Context, fn func(ctx context.Context, tx usecase.LedgerTx) error) error {
	err := s.client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormTx{db: tx})
	}, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	return domain.AsStoreError(err)
}

// Close 關閉資料庫連線
func (s *MySQLStore) Close() error {
	return s.client.Close()
}

// gormTx 實作 usecase.LedgerTx，所有查詢都在同一個 *gorm.DB 交易內
type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) LockOwnerAccounts(ctx context.Context, owner domain.OwnerID) ([]*domain.Account, error) {
	// 悲觀鎖：同一擁有者的預設切換/開戶互相序列化
	var rows []sqlAccount
	if err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_id = ?", string(owner)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return accountsToDomain(rows)
}

func (t *gormTx) FindAccount(ctx context.Context, owner domain.OwnerID, accountID uuid.UUID) (*domain.Account, error) {
	var row sqlAccount
	err := t.db.Where("id = ? AND owner_id = ?", accountID.String(), string(owner)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

func (t *gormTx) ListAccountSummaries(ctx context.Context, owner domain.OwnerID) ([]domain.AccountSummary, error) {
	var rows []summaryRow
	if err := t.db.Table("accounts").
		Select("accounts.*, COUNT(transactions.id) AS transaction_count").
		Joins("LEFT JOIN transactions ON transactions.account_id = accounts.id").
		Where("accounts.owner_id = ?", string(owner)).
		Group("accounts.id").
		Order("accounts.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.AccountSummary, 0, len(rows))
	for i := range rows {
		a, err := rows[i].sqlAccount.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, domain.AccountSummary{Account: a, TransactionCount: rows[i].TransactionCount})
	}
	return out, nil
}

func (t *gormTx) InsertAccount(ctx context.Context, account *domain.Account) error {
	return t.db.Create(toSQLAccount(account)).Error
}

func (t *gormTx) ClearDefault(ctx context.Context, owner domain.OwnerID) error {
	return t.db.Model(&sqlAccount{}).
		Where("owner_id = ? AND is_default = ?", string(owner), true).
		Update("is_default", false).Error
}

func (t *gormTx) MarkDefault(ctx context.Context, owner domain.OwnerID, accountID uuid.UUID) error {
	return expectOne(t.db.Model(&sqlAccount{}).
		Where("id = ? AND owner_id = ?", accountID.String(), string(owner)).
		Update("is_default", true))
}

func (t *gormTx) IncrementBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	// 相對更新：balance = balance + delta，不使用單元開始時讀到的值
	return expectOne(t.db.Model(&sqlAccount{}).
		Where("id = ?", accountID.String()).
		Update("balance", gorm.Expr("balance + ?", delta)))
}

func (t *gormTx) SetBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	return expectOne(t.db.Model(&sqlAccount{}).
		Where("id = ?", accountID.String()).
		Update("balance", balance))
}

// expectOne 沒有任何列被更新時視為帳戶不存在 (DSN 需帶 clientFoundRows=true，值未變也算一列)
func expectOne(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (t *gormTx) FindOwnedTransactions(ctx context.Context, owner domain.OwnerID, ids []uuid.UUID) ([]*domain.Transaction, error) {
	// 鎖住選到的列，避免同時進行的批次刪除重複計算 delta
	var rows []sqlTransaction
	if err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ? AND owner_id = ?", idStrings(ids), string(owner)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return transactionsToDomain(rows)
}

func (t *gormTx) ListAccountTransactions(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	var rows []sqlTransaction
	if err := t.db.Where("account_id = ?", accountID.String()).
		Order("occurred_at DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return transactionsToDomain(rows)
}

func (t *gormTx) InsertTransactions(ctx context.Context, trans []*domain.Transaction) error {
	if len(trans) == 0 {
		return nil
	}
	rows := make([]*sqlTransaction, 0, len(trans))
	for _, tr := range trans {
		rows = append(rows, toSQLTransaction(tr))
	}
	return t.db.CreateInBatches(rows, insertBatchSize).Error
}

func (t *gormTx) DeleteTransactions(ctx context.Context, owner domain.OwnerID, ids []uuid.UUID) (int64, error) {
	res := t.db.Where("id IN ? AND owner_id = ?", idStrings(ids), string(owner)).Delete(&sqlTransaction{})
	return res.RowsAffected, res.Error
}

func (t *gormTx) DeleteAccountTransactions(ctx context.Context, accountID uuid.UUID) (int64, error) {
	res := t.db.Where("account_id = ?", accountID.String()).Delete(&sqlTransaction{})
	return res.RowsAffected, res.Error
}

func accountsToDomain(rows []sqlAccount) ([]*domain.Account, error) {
	out := make([]*domain.Account, 0, len(rows))
	for i := range rows {
		a, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func transactionsToDomain(rows []sqlTransaction) ([]*domain.Transaction, error) {
	out := make([]*domain.Transaction, 0, len(rows))
	for i := range rows {
		t, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

var (
	_ usecase.LedgerStore = (*MySQLStore)(nil)
	_ usecase.LedgerTx    = (*gormTx)(nil)
)
