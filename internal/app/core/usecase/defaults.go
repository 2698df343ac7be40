package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/domain"
)

// promoteDefault 在同一個原子單元內先清除擁有者全部預設，再設定目標帳戶。
// 單元內短暫出現 0 個預設是允許的，提交後必定恰好一個。
func promoteDefault(ctx context.Context, tx LedgerTx, owner domain.OwnerID, accountID uuid.UUID) error {
	if err := tx.ClearDefault(ctx, owner); err != nil {
		return err
	}
	return tx.MarkDefault(ctx, owner, accountID)
}

// shouldPromote 第一個帳戶或明確要求時才成為預設
func shouldPromote(existing []*domain.Account, requestDefault bool) bool {
	return len(existing) == 0 || requestDefault
}

// findOwned 從已鎖定的帳戶列表中找出目標
func findOwned(accounts []*domain.Account, accountID uuid.UUID) (*domain.Account, bool) {
	for _, a := range accounts {
		if a.ID == accountID {
			return a, true
		}
	}
	return nil, false
}
