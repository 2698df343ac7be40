package mysql

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/domain"
)

// sqlAccount 對應資料庫的 accounts 表
type sqlAccount struct {
	ID        string          `gorm:"primaryKey;type:char(36)"`
	OwnerID   string          `gorm:"type:varchar(191);not null;index:idx_accounts_owner_default,priority:1"`
	Name      string          `gorm:"type:varchar(191);not null"`
	Kind      string          `gorm:"type:varchar(16);not null"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	IsDefault bool            `gorm:"not null;default:false;index:idx_accounts_owner_default,priority:2"`
	CreatedAt time.Time       `gorm:"precision:6;index"`
	UpdatedAt time.Time       `gorm:"precision:6"`

	// DefaultOwner 只有預設帳戶才有值，唯一索引讓每個擁有者最多一個預設帳戶 (MySQL 沒有 partial index)
	DefaultOwner *string `gorm:"->;type:varchar(191) GENERATED ALWAYS AS (IF(is_default, owner_id, NULL)) STORED;uniqueIndex:uq_accounts_owner_default"`
}

func (*sqlAccount) TableName() string {
	return "accounts"
}

// sqlTransaction 對應資料庫的 transactions 表
type sqlTransaction struct {
	ID          string          `gorm:"primaryKey;type:char(36)"`
	AccountID   string          `gorm:"type:char(36);not null;index:idx_transactions_account_date,priority:1"`
	OwnerID     string          `gorm:"type:varchar(191);not null;index"`
	Kind        string          `gorm:"type:varchar(16);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Description string          `gorm:"type:varchar(512)"`
	Category    string          `gorm:"type:varchar(64)"`
	Status      string          `gorm:"type:varchar(16);not null;default:COMPLETED"`
	OccurredAt  time.Time       `gorm:"precision:6;index:idx_transactions_account_date,priority:2"`
	CreatedAt   time.Time       `gorm:"precision:6"`
}

func (*sqlTransaction) TableName() string {
	return "transactions"
}

// summaryRow 帳戶列表查詢結果
type summaryRow struct {
	sqlAccount       `gorm:"embedded"`
	TransactionCount int64
}

func toSQLAccount(a *domain.Account) *sqlAccount {
	return &sqlAccount{
		ID:        a.ID.String(),
		OwnerID:   string(a.OwnerID),
		Name:      a.Name,
		Kind:      string(a.Kind),
		Balance:   a.Balance,
		IsDefault: a.IsDefault,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (r *sqlAccount) toDomain() (*domain.Account, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, err
	}
	return &domain.Account{
		ID:        id,
		OwnerID:   domain.OwnerID(r.OwnerID),
		Name:      r.Name,
		Kind:      domain.AccountKind(r.Kind),
		Balance:   r.Balance,
		IsDefault: r.IsDefault,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func toSQLTransaction(t *domain.Transaction) *sqlTransaction {
	return &sqlTransaction{
		ID:          t.ID.String(),
		AccountID:   t.AccountID.String(),
		OwnerID:     string(t.OwnerID),
		Kind:        string(t.Kind),
		Amount:      t.Amount,
		Description: t.Description,
		Category:    t.Category,
		Status:      string(t.Status),
		OccurredAt:  t.OccurredAt,
		CreatedAt:   t.CreatedAt,
	}
}

func (r *sqlTransaction) toDomain() (*domain.Transaction, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, err
	}
	accountID, err := uuid.Parse(r.AccountID)
	if err != nil {
		return nil, err
	}
	return &domain.Transaction{
		ID:          id,
		AccountID:   accountID,
		OwnerID:     domain.OwnerID(r.OwnerID),
		Kind:        domain.TransactionKind(r.Kind),
		Amount:      r.Amount,
		Description: r.Description,
		Category:    r.Category,
		Status:      domain.TransactionStatus(r.Status),
		OccurredAt:  r.OccurredAt,
		CreatedAt:   r.CreatedAt,
	}, nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
