package memory

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/google/uuid"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-expense-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-expense-ledger/pkg/wal"
)

func TestRecoverFromWAL(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "wal.log")
	const owner = domain.OwnerID("owner")

	w, err := wal.NewWAL(path)
	assert.NoError(t, err)
	store, err := NewMutexStore(w)
	assert.NoError(t, err)
	core := usecase.NewCoreUseCase(store, usecase.WithGenerator(usecase.NewGenerator(rand.NewPCG(7, 7))))

	a, err := core.CreateAccount(ctx, owner, usecase.CreateAccountParams{Name: "A", Kind: domain.AccountKindCurrent, InitialBalance: "1000"})
	assert.NoError(t, err)
	b, err := core.CreateAccount(ctx, owner, usecase.CreateAccountParams{Name: "B", Kind: domain.AccountKindSavings, InitialBalance: "0", RequestDefault: true})
	assert.NoError(t, err)
	e, err := core.CreateTransaction(ctx, owner, usecase.CreateTransactionParams{AccountID: a.ID, Kind: domain.TransactionKindExpense, Amount: "50"})
	assert.NoError(t, err)
	_, err = core.CreateTransaction(ctx, owner, usecase.CreateTransactionParams{AccountID: a.ID, Kind: domain.TransactionKindIncome, Amount: "200"})
	assert.NoError(t, err)
	_, err = core.DeleteTransactions(ctx, owner, []uuid.UUID{e.ID})
	assert.NoError(t, err)
	reseed, err := core.ReseedAccount(ctx, owner, b.ID, usecase.GeneratorConfig{WindowDays: 5, IncomeProbability: 0.5, MinPerDay: 1, MaxPerDay: 2})
	assert.NoError(t, err)

	wantA, wantTransA, err := core.GetAccountWithTransactions(ctx, owner, a.ID)
	assert.NoError(t, err)
	assert.NoError(t, store.Close())
	assert.NoError(t, w.Close())

	// 重新開啟：兩種 store 都應從 WAL 恢復出相同狀態
	for _, name := range []string{"mutex", "lmax"} {
		t.Run(name, func(t *testing.T) {
			w, err := wal.NewWAL(path)
			assert.NoError(t, err)
			defer w.Close()

			var reopened usecase.LedgerStore
			if name == "mutex" {
				reopened, err = NewMutexStore(w)
			} else {
				var l *LMAXStore
				l, err = NewLMAXStore(w, 8)
				if err == nil {
					l.Start(ctx)
				}
				reopened = l
			}
			assert.NoError(t, err)
			defer reopened.Close()
			core := usecase.NewCoreUseCase(reopened)

			gotA, gotTransA, err := core.GetAccountWithTransactions(ctx, owner, a.ID)
			assert.NoError(t, err)
			assert.True(t, gotA.Balance.Equal(wantA.Balance))
			assert.True(t, gotA.Balance.Equal(domain.RequireAmount("1200")))
			assert.False(t, gotA.IsDefault)
			assert.Equal(t, len(wantTransA), len(gotTransA))

			gotB, gotTransB, err := core.GetAccountWithTransactions(ctx, owner, b.ID)
			assert.NoError(t, err)
			assert.True(t, gotB.IsDefault)
			assert.Equal(t, reseed.Inserted, len(gotTransB))
			assert.True(t, gotB.Balance.Equal(reseed.Balance))
		})
	}
}

func TestReadOnlyUnitRejectsWrites(t *testing.T) {
	store, err := NewMutexStore(nil)
	assert.NoError(t, err)
	err = store.ReadTx(context.Background(), func(ctx context.Context, tx usecase.LedgerTx) error {
		return tx.InsertAccount(ctx, domain.NewAccount("o", "A", domain.AccountKindCurrent, domain.RequireAmount("1"), time.Now()))
	})
	assert.IsError(t, err, ErrReadOnlyUnit)
}

func TestUnitErrorUndoesEverything(t *testing.T) {
	ctx := context.Background()
	store, err := NewMutexStore(nil)
	assert.NoError(t, err)
	acc := domain.NewAccount("o", "A", domain.AccountKindCurrent, domain.RequireAmount("10"), time.Now())
	assert.NoError(t, store.RunInTx(ctx, func(ctx context.Context, tx usecase.LedgerTx) error {
		if err := tx.InsertAccount(ctx, acc); err != nil {
			return err
		}
		return tx.MarkDefault(ctx, "o", acc.ID)
	}))

	err = store.RunInTx(ctx, func(ctx context.Context, tx usecase.LedgerTx) error {
		if err := tx.ClearDefault(ctx, "o"); err != nil {
			return err
		}
		if err := tx.IncrementBalance(ctx, acc.ID, domain.RequireAmount("5")); err != nil {
			return err
		}
		if err := tx.InsertTransactions(ctx, []*domain.Transaction{{ID: uuid.New(), AccountID: acc.ID, OwnerID: "o"}}); err != nil {
			return err
		}
		// 不存在的帳戶 -> 整個單元還原
		return tx.IncrementBalance(ctx, uuid.New(), domain.RequireAmount("1"))
	})
	assert.IsError(t, err, domain.ErrNotFound)

	assert.NoError(t, store.ReadTx(ctx, func(ctx context.Context, tx usecase.LedgerTx) error {
		got, err := tx.FindAccount(ctx, "o", acc.ID)
		assert.NoError(t, err)
		assert.True(t, got.IsDefault)
		assert.True(t, got.Balance.Equal(domain.RequireAmount("10")))
		trans, err := tx.ListAccountTransactions(ctx, acc.ID)
		assert.NoError(t, err)
		assert.Equal(t, 0, len(trans))
		return nil
	}))
}

func TestClosedStores(t *testing.T) {
	ctx := context.Background()
	noop := func(context.Context, usecase.LedgerTx) error { return nil }

	m, err := NewMutexStore(nil)
	assert.NoError(t, err)
	assert.NoError(t, m.Close())
	assert.IsError(t, m.RunInTx(ctx, noop), ErrStoreClosed)

	l, err := NewLMAXStore(nil, 1)
	assert.NoError(t, err)
	l.Start(ctx)
	assert.NoError(t, l.RunInTx(ctx, noop))
	assert.NoError(t, l.Close())
	assert.IsError(t, l.ReadTx(ctx, noop), domain.ErrStoreCommit)

	never, err := NewLMAXStore(nil, 1)
	assert.NoError(t, err)
	assert.NoError(t, never.Close())
	assert.IsError(t, never.RunInTx(ctx, noop), ErrStoreClosed)
}
