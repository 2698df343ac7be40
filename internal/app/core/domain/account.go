package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OwnerID 由身分驗證端提供的擁有者識別，核心不解析其內容
type OwnerID string

// Validate 空的身分視為未授權
func (o OwnerID) Validate() error {
	if strings.TrimSpace(string(o)) == "" {
		return ErrUnauthorized
	}
	return nil
}

// AccountKind 帳戶類型
type AccountKind string

const (
	AccountKindCurrent AccountKind = "CURRENT"
	AccountKindSavings AccountKind = "SAVINGS"
)

// ParseAccountKind 不分大小寫解析帳戶類型
func ParseAccountKind(s string) (AccountKind, error) {
	switch AccountKind(strings.ToUpper(strings.TrimSpace(s))) {
	case AccountKindCurrent:
		return AccountKindCurrent, nil
	case AccountKindSavings:
		return AccountKindSavings, nil
	}
	return "", ErrInvalidAccountKind
}

// Account 帳戶
//
// Balance 必須永遠等於目前所屬交易的 signed effect 總和，
// 只能透過 Effect / InverseEffect 算出的 delta 修改。
type Account struct {
	ID        uuid.UUID
	OwnerID   OwnerID
	Name      string
	Kind      AccountKind
	Balance   decimal.Decimal
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAccount 建立尚未持久化的帳戶
func NewAccount(owner OwnerID, name string, kind AccountKind, balance decimal.Decimal, now time.Time) *Account {
	return &Account{
		ID:        uuid.New(),
		OwnerID:   owner,
		Name:      name,
		Kind:      kind,
		Balance:   balance,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone 回傳值拷貝，避免呼叫端改寫 store 內部狀態
func (a *Account) Clone() *Account {
	cp := *a
	return &cp
}

// AccountSummary 帳戶列表用，附帶交易筆數
type AccountSummary struct {
	Account          *Account
	TransactionCount int64
}
