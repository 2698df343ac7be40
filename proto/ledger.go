// Package proto 定義 ledger.v1.LedgerService 的訊息與服務描述。
//
// 訊息以 JSON codec (content-subtype "json") 傳輸；金額一律以十進位字串表示，
// 時間為 RFC3339。
package proto

// Account 帳戶
type Account struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Balance   string `json:"balance"`
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// AccountSummary 帳戶與交易筆數
type AccountSummary struct {
	Account          *Account `json:"account"`
	TransactionCount int64    `json:"transaction_count"`
}

// Transaction 交易
type Transaction struct {
	Id          string `json:"id"`
	AccountId   string `json:"account_id"`
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	OccurredAt  string `json:"occurred_at"`
	CreatedAt   string `json:"created_at"`
}

// BalanceDelta 刪除後套用到帳戶的淨變動
type BalanceDelta struct {
	AccountId string `json:"account_id"`
	Amount    string `json:"amount"`
}

type CreateAccountRequest struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	InitialBalance string `json:"initial_balance"`
	IsDefault      bool   `json:"is_default"`
}

type SetDefaultAccountRequest struct {
	AccountId string `json:"account_id"`
}

type AccountResponse struct {
	Account *Account `json:"account"`
}

type GetAccountRequest struct {
	AccountId string `json:"account_id"`
}

type GetAccountResponse struct {
	Account      *Account       `json:"account"`
	Transactions []*Transaction `json:"transactions"`
}

type ListAccountsRequest struct{}

type ListAccountsResponse struct {
	Accounts []*AccountSummary `json:"accounts"`
}

type CreateTransactionRequest struct {
	AccountId   string `json:"account_id"`
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	OccurredAt  string `json:"occurred_at,omitempty"` // 空字串表示現在
}

type TransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type DeleteTransactionsRequest struct {
	TransactionIds []string `json:"transaction_ids"`
}

type DeleteTransactionsResponse struct {
	Deleted int32           `json:"deleted"`
	Skipped []string        `json:"skipped"`
	Deltas  []*BalanceDelta `json:"deltas"`
}

type ReseedAccountRequest struct {
	AccountId string `json:"account_id"`
	// 0 使用預設 (90 天)
	WindowDays int32 `json:"window_days,omitempty"`
	// nil 使用預設 (0.4)
	IncomeProbability *float64 `json:"income_probability,omitempty"`
}

type ReseedAccountResponse struct {
	Inserted int32  `json:"inserted"`
	Balance  string `json:"balance"`
}
