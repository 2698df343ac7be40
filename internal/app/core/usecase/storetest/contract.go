// Package storetest 提供所有 usecase.LedgerStore 實作共用的行為測試
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-expense-ledger/internal/app/core/usecase"
)

// Run 對 store 執行行為測試；每個子測試使用獨立的 owner，共用同一個 store 也不互相干擾
func Run(t *testing.T, store usecase.LedgerStore) {
	core := usecase.NewCoreUseCase(store)

	t.Run("BalanceScenario", func(t *testing.T) { balanceScenario(t, core, newOwner()) })
	t.Run("DefaultPromotion", func(t *testing.T) { defaultPromotion(t, core, newOwner()) })
	t.Run("DeleteSkipsForeign", func(t *testing.T) { deleteSkipsForeign(t, core, newOwner(), newOwner()) })
	t.Run("Reseed", func(t *testing.T) { reseed(t, core, newOwner()) })
	t.Run("ConcurrentPromotions", func(t *testing.T) { concurrentPromotions(t, core, newOwner()) })
	t.Run("ConcurrentFirstAccounts", func(t *testing.T) { concurrentFirstAccounts(t, core, newOwner()) })
	t.Run("CreateDefaultRacesSetDefault", func(t *testing.T) { createDefaultRacesSetDefault(t, core, newOwner()) })
}

func newOwner() domain.OwnerID {
	return domain.OwnerID("contract_" + uuid.NewString())
}

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mustAccount(t *testing.T, core *usecase.CoreUseCase, owner domain.OwnerID, name, balance string, def bool) *domain.Account {
	t.Helper()
	a, err := core.CreateAccount(context.Background(), owner, usecase.CreateAccountParams{
		Name: name, Kind: domain.AccountKindCurrent, InitialBalance: balance, RequestDefault: def,
	})
	assert.NoError(t, err)
	return a
}

func mustTx(t *testing.T, core *usecase.CoreUseCase, owner domain.OwnerID, account uuid.UUID, kind domain.TransactionKind, amt string) *domain.Transaction {
	t.Helper()
	tr, err := core.CreateTransaction(context.Background(), owner, usecase.CreateTransactionParams{
		AccountID: account, Kind: kind, Amount: amt, Category: "contract",
	})
	assert.NoError(t, err)
	return tr
}

func balanceOf(t *testing.T, core *usecase.CoreUseCase, owner domain.OwnerID, id uuid.UUID) decimal.Decimal {
	t.Helper()
	a, _, err := core.GetAccountWithTransactions(context.Background(), owner, id)
	assert.NoError(t, err)
	return a.Balance
}

func defaultOf(t *testing.T, core *usecase.CoreUseCase, owner domain.OwnerID) uuid.UUID {
	t.Helper()
	summaries, err := core.ListAccounts(context.Background(), owner)
	assert.NoError(t, err)
	var ids []uuid.UUID
	for _, s := range summaries {
		if s.Account.IsDefault {
			ids = append(ids, s.Account.ID)
		}
	}
	assert.Equal(t, 1, len(ids), "exactly one default account")
	return ids[0]
}

func balanceScenario(t *testing.T, core *usecase.CoreUseCase, owner domain.OwnerID) {
	acc := mustAccount(t, core, owner, "Main", "1000.00", false)
	e := mustTx(t, core, owner, acc.ID, domain.TransactionKindExpense, "50.00")
	assert.True(t, balanceOf(t, core, owner, acc.ID).Equal(amount("950")))
	i := mustTx(t, core, owner, acc.ID, domain.TransactionKindIncome, "200.00")
	assert.True(t, balanceOf(t, core, owner, acc.ID).Equal(amount("1150")))

	res, err := core.DeleteTransactions(context.Background(), owner, []uuid.UUID{e.ID, i.ID})
	assert.NoError(t, err)
	assert.Equal(t, 2, res.Deleted)
	assert.True(t, balanceOf(t, core, owner, acc.ID).Equal(amount("1000")))
}

func defaultPromotion(t *testing.T, core *usecase.CoreUseCase, owner domain.OwnerID) {
	a := mustAccount(t, core, owner, "A", "0", false)
	assert.Equal(t, a.ID, defaultOf(t, core, owner))
	mustAccount(t, core, owner, "B", "0", false)
	assert.Equal(t, a.ID, defaultOf(t, core, owner))
	c := mustAccount(t, core, owner, "C", "0", true)
	assert.Equal(t, c.ID, defaultOf(t, core, owner))

	_, err := core.SetDefaultAccount(context.Background(), owner, a.ID)
	assert.NoError(t, err)
	assert.Equal(t, a.ID, defaultOf(t, core, owner))

	_, err = core.SetDefaultAccount(context.Background(), owner, uuid.New())
	assert.IsError(t, err, domain.ErrNotFound)
	assert.Equal(t, a.ID, defaultOf(t, core, owner))
}

func deleteSkipsForeign(t *testing.T, core *usecase.CoreUseCase, owner, other domain.OwnerID) {
	mine := mustAccount(t, core, owner, "Mine", "0", false)
	theirs := mustAccount(t, core, other, "Theirs", "0", false)
	m := mustTx(t, core, owner, mine.ID, domain.TransactionKindIncome, "10")
	f := mustTx(t, core, other, theirs.ID, domain.TransactionKindIncome, "10")

	res, err := core.DeleteTransactions(context.Background(), owner, []uuid.UUID{m.ID, f.ID})
	assert.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, []uuid.UUID{f.ID}, res.Skipped)
	assert.True(t, balanceOf(t, core, owner, mine.ID).IsZero())
	assert.True(t, balanceOf(t, core, other, theirs.ID).Equal(amount("10")))
}

func reseed(t *testing.T, core *usecase.CoreUseCase, owner domain.OwnerID) {
	ctx := context.Background()
	acc := mustAccount(t, core, owner, "Demo", "1000", false)
	old := mustTx(t, core, owner, acc.ID, domain.TransactionKindExpense, "1")

	gen := usecase.DefaultGeneratorConfig()
	gen.WindowDays = 10
	res, err := core.ReseedAccount(ctx, owner, acc.ID, gen)
	assert.NoError(t, err)

	got, trans, err := core.GetAccountWithTransactions(ctx, owner, acc.ID)
	assert.NoError(t, err)
	assert.Equal(t, res.Inserted, len(trans))
	assert.True(t, got.Balance.Equal(domain.SumEffects(trans)), fmt.Sprintf("balance %s", got.Balance))
	for _, tr := range trans {
		assert.NotEqual(t, old.ID, tr.ID)
	}
}

func concurrentPromotions(t *testing.T, core *usecase.CoreUseCase, owner domain.OwnerID) {
	var ids []uuid.UUID
	for i := 0; i < 4; i++ {
		ids = append(ids, mustAccount(t, core, owner, fmt.Sprintf("acc-%d", i), "0", false).ID)
	}
	var wg sync.WaitGroup
	for round := 0; round < 3; round++ {
		for _, id := range ids {
			wg.Add(1)
			go func(id uuid.UUID) {
				defer wg.Done()
				// 資料庫可能因死鎖中止其中一個單元，這是允許的失敗
				_, err := core.SetDefaultAccount(context.Background(), owner, id)
				if err != nil && !errors.Is(err, domain.ErrStoreCommit) {
					t.Errorf("set default %s: %v", id, err)
				}
			}(id)
		}
	}
	wg.Wait()
	defaultOf(t, core, owner)
}

// concurrentFirstAccounts 同一擁有者同時開第一個帳戶，提交後仍只能有一個預設
func concurrentFirstAccounts(t *testing.T, core *usecase.CoreUseCase, owner domain.OwnerID) {
	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := core.CreateAccount(context.Background(), owner, usecase.CreateAccountParams{
				Name: fmt.Sprintf("first-%d", i), Kind: domain.AccountKindCurrent, InitialBalance: "0",
			})
			if err != nil {
				if !errors.Is(err, domain.ErrStoreCommit) {
					t.Errorf("create account %d: %v", i, err)
				}
				return
			}
			mu.Lock()
			created++
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	assert.True(t, created >= 1, "at least one account created")
	summaries, err := core.ListAccounts(context.Background(), owner)
	assert.NoError(t, err)
	assert.Equal(t, created, len(summaries))
	defaultOf(t, core, owner)
}

func createDefaultRacesSetDefault(t *testing.T, core *usecase.CoreUseCase, owner domain.OwnerID) {
	base := mustAccount(t, core, owner, "base", "0", false)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := core.CreateAccount(context.Background(), owner, usecase.CreateAccountParams{
				Name: fmt.Sprintf("promoted-%d", i), Kind: domain.AccountKindSavings, InitialBalance: "0", RequestDefault: true,
			})
			if err != nil && !errors.Is(err, domain.ErrStoreCommit) {
				t.Errorf("create default %d: %v", i, err)
			}
		}(i)
		go func() {
			defer wg.Done()
			_, err := core.SetDefaultAccount(context.Background(), owner, base.ID)
			if err != nil && !errors.Is(err, domain.ErrStoreCommit) {
				t.Errorf("set default: %v", err)
			}
		}()
	}
	wg.Wait()
	defaultOf(t, core, owner)
}
