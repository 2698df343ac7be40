package usecase

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/domain"
)

// CoreUseCase 是核心業務邏輯層
//
// 每個公開方法都是一個原子單元；失敗時回傳 domain 的錯誤分類之一，
// 不做任何自動重試。
type CoreUseCase struct {
	store     LedgerStore
	publisher EventPublisher
	now       func() time.Time

	genMu     sync.Mutex
	generator *Generator
}

// Option 設定 CoreUseCase
type Option func(*CoreUseCase)

// WithPublisher 設定提交後的事件發布器
func WithPublisher(p EventPublisher) Option {
	return func(c *CoreUseCase) {
		c.publisher = p
	}
}

// WithClock 替換時間來源 (測試用)
func WithClock(now func() time.Time) Option {
	return func(c *CoreUseCase) {
		c.now = now
	}
}

// WithGenerator 替換合成交易產生器
func WithGenerator(g *Generator) Option {
	return func(c *CoreUseCase) {
		c.generator = g
	}
}

func NewCoreUseCase(store LedgerStore, opts ...Option) *CoreUseCase {
	c := &CoreUseCase{
		store:     store,
		publisher: NopPublisher{},
		now:       time.Now,
		generator: NewGenerator(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateAccountParams 建立帳戶參數
type CreateAccountParams struct {
	Name           string
	Kind           domain.AccountKind
	InitialBalance string
	RequestDefault bool
}

// CreateAccount 建立帳戶
//
// 擁有者的第一個帳戶或 RequestDefault 為 true 時，新帳戶成為預設，
// 同一單元內先清除其他帳戶的預設標記。
func (c *CoreUseCase) CreateAccount(ctx context.Context, owner domain.OwnerID, params CreateAccountParams) (*domain.Account, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	kind, err := domain.ParseAccountKind(string(params.Kind))
	if err != nil {
		return nil, err
	}
	balance, err := domain.ParseAmount(params.InitialBalance)
	if err != nil {
		return nil, err
	}

	account := domain.NewAccount(owner, name, kind, balance, c.now())
	err = c.store.RunInTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		existing, err := tx.LockOwnerAccounts(ctx, owner)
		if err != nil {
			return err
		}
		if err := tx.InsertAccount(ctx, account); err != nil {
			return err
		}
		if shouldPromote(existing, params.RequestDefault) {
			if err := promoteDefault(ctx, tx, owner, account.ID); err != nil {
				return err
			}
			account.IsDefault = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, EventAccountCreated, owner, 0, account.ID)
	return account, nil
}

// SetDefaultAccount 將帳戶設為擁有者唯一的預設帳戶
func (c *CoreUseCase) SetDefaultAccount(ctx context.Context, owner domain.OwnerID, accountID uuid.UUID) (*domain.Account, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	var target *domain.Account
	err := c.store.RunInTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		accounts, err := tx.LockOwnerAccounts(ctx, owner)
		if err != nil {
			return err
		}
		found, ok := findOwned(accounts, accountID)
		if !ok {
			return domain.ErrAccountNotFound
		}
		if err := promoteDefault(ctx, tx, owner, accountID); err != nil {
			return err
		}
		target = found.Clone()
		target.IsDefault = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, EventDefaultAccountChanged, owner, 0, accountID)
	return target, nil
}

// GetAccountWithTransactions 取得帳戶與其交易 (OccurredAt 遞減)
func (c *CoreUseCase) GetAccountWithTransactions(ctx context.Context, owner domain.OwnerID, accountID uuid.UUID) (*domain.Account, []*domain.Transaction, error) {
	if err := owner.Validate(); err != nil {
		return nil, nil, err
	}
	var (
		account *domain.Account
		trans   []*domain.Transaction
	)
	err := c.store.ReadTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		var err error
		account, err = tx.FindAccount(ctx, owner, accountID)
		if err != nil {
			return err
		}
		trans, err = tx.ListAccountTransactions(ctx, accountID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return account, trans, nil
}

// ListAccounts 列出擁有者的帳戶 (CreatedAt 遞減) 與交易筆數
func (c *CoreUseCase) ListAccounts(ctx context.Context, owner domain.OwnerID) ([]domain.AccountSummary, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	var summaries []domain.AccountSummary
	err := c.store.ReadTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		var err error
		summaries, err = tx.ListAccountSummaries(ctx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// CreateTransactionParams 建立交易參數
type CreateTransactionParams struct {
	AccountID   uuid.UUID
	Kind        domain.TransactionKind
	Amount      string
	Description string
	Category    string
	OccurredAt  time.Time // zero 時使用現在時間
}

// CreateTransaction 新增交易並以 Effect 增量更新帳戶餘額
func (c *CoreUseCase) CreateTransaction(ctx context.Context, owner domain.OwnerID, params CreateTransactionParams) (*domain.Transaction, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	kind, err := domain.ParseTransactionKind(string(params.Kind))
	if err != nil {
		return nil, err
	}
	amount, err := domain.ParseNonNegativeAmount(params.Amount)
	if err != nil {
		return nil, err
	}
	now := c.now()
	occurredAt := params.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}

	var created *domain.Transaction
	err = c.store.RunInTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		account, err := tx.FindAccount(ctx, owner, params.AccountID)
		if err != nil {
			return err
		}
		created = &domain.Transaction{
			ID:          uuid.New(),
			AccountID:   account.ID,
			OwnerID:     account.OwnerID,
			Kind:        kind,
			Amount:      amount,
			Description: params.Description,
			Category:    params.Category,
			Status:      domain.TransactionStatusCompleted,
			OccurredAt:  occurredAt,
			CreatedAt:   now,
		}
		if err := tx.InsertTransactions(ctx, []*domain.Transaction{created}); err != nil {
			return err
		}
		return tx.IncrementBalance(ctx, account.ID, domain.Effect(created))
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, EventTransactionCreated, owner, 1, created.AccountID)
	return created, nil
}

// DeleteResult 批次刪除結果
type DeleteResult struct {
	Deleted int
	// Skipped 不屬於呼叫者、不存在或已刪除的 id
	Skipped []uuid.UUID
	// Deltas 每個受影響帳戶套用的淨變動
	Deltas []domain.BalanceDelta
}

// DeleteTransactions 批次刪除交易
//
// 不屬於 owner、不存在或已刪除的 id 會被略過並列在 Skipped，其餘照常處理。
// 同一單元內刪除所有選取的交易，並對每個受影響帳戶只套用一次相對增量。
// 任一步驟失敗則整批 rollback。
func (c *CoreUseCase) DeleteTransactions(ctx context.Context, owner domain.OwnerID, ids []uuid.UUID) (*DeleteResult, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	ids = uniqueIDs(ids)
	result := &DeleteResult{}
	if len(ids) == 0 {
		return result, nil
	}

	err := c.store.RunInTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		found, err := tx.FindOwnedTransactions(ctx, owner, ids)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return nil
		}
		selected := make([]uuid.UUID, 0, len(found))
		for _, t := range found {
			selected = append(selected, t.ID)
		}
		deleted, err := tx.DeleteTransactions(ctx, owner, selected)
		if err != nil {
			return err
		}
		if deleted != int64(len(selected)) {
			return fmt.Errorf("%w: expected to delete %d transactions, deleted %d", domain.ErrStoreCommit, len(selected), deleted)
		}
		deltas := domain.DeletionDeltas(found)
		for _, d := range deltas {
			if err := tx.IncrementBalance(ctx, d.AccountID, d.Amount); err != nil {
				return err
			}
		}
		result.Deleted = len(found)
		result.Deltas = deltas
		result.Skipped = skippedIDs(ids, found)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.Deleted == 0 {
		result.Skipped = ids
		return result, nil
	}

	if len(result.Skipped) > 0 {
		log.Printf("delete transactions: owner %s skipped %d foreign or missing ids", owner, len(result.Skipped))
	}
	accountIDs := make([]uuid.UUID, 0, len(result.Deltas))
	for _, d := range result.Deltas {
		accountIDs = append(accountIDs, d.AccountID)
	}
	c.publish(ctx, EventTransactionsDeleted, owner, result.Deleted, accountIDs...)
	return result, nil
}

// ReseedResult 重新產生結果
type ReseedResult struct {
	Inserted int
	Balance  decimal.Decimal
}

// ReseedAccount 以合成交易流完全取代帳戶的交易，並把餘額設為新交易流的 signed effect 總和
func (c *CoreUseCase) ReseedAccount(ctx context.Context, owner domain.OwnerID, accountID uuid.UUID, gen GeneratorConfig) (*ReseedResult, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}

	c.genMu.Lock()
	stream := c.generator.Generate(gen, owner, accountID, c.now())
	c.genMu.Unlock()
	balance := domain.SumEffects(stream)

	err := c.store.RunInTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		if _, err := tx.FindAccount(ctx, owner, accountID); err != nil {
			return err
		}
		if _, err := tx.DeleteAccountTransactions(ctx, accountID); err != nil {
			return err
		}
		if err := tx.InsertTransactions(ctx, stream); err != nil {
			return err
		}
		return tx.SetBalance(ctx, accountID, balance)
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, EventAccountReseeded, owner, len(stream), accountID)
	return &ReseedResult{Inserted: len(stream), Balance: balance}, nil
}

// publish 於提交後發布事件；失敗只記錄，不影響已提交的結果
func (c *CoreUseCase) publish(ctx context.Context, typ EventType, owner domain.OwnerID, count int, accountIDs ...uuid.UUID) {
	event := LedgerEvent{
		Type:       typ,
		OwnerID:    owner,
		AccountIDs: accountIDs,
		Count:      count,
		OccurredAt: c.now(),
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		log.Printf("publish %s for owner %s failed: %v", typ, owner, err)
	}
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func skippedIDs(ids []uuid.UUID, found []*domain.Transaction) []uuid.UUID {
	hit := make(map[uuid.UUID]struct{}, len(found))
	for _, t := range found {
		hit[t.ID] = struct{}{}
	}
	var skipped []uuid.UUID
	for _, id := range ids {
		if _, ok := hit[id]; !ok {
			skipped = append(skipped, id)
		}
	}
	return skipped
}
