package domain

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceDelta 單一帳戶的淨變動，以「目前儲存值 + Amount」套用，絕不覆寫
type BalanceDelta struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal
}

// DeletionDeltas 依帳戶分組，加總被刪交易的 inverse effect。
// 每個受影響帳戶只產生一筆 delta，依 AccountID 排序 (固定上鎖順序，避免死鎖)。
func DeletionDeltas(trans []*Transaction) []BalanceDelta {
	sums := make(map[uuid.UUID]decimal.Decimal)
	for _, t := range trans {
		sums[t.AccountID] = sums[t.AccountID].Add(InverseEffect(t))
	}
	deltas := make([]BalanceDelta, 0, len(sums))
	for id, amount := range sums {
		deltas = append(deltas, BalanceDelta{AccountID: id, Amount: amount})
	}
	sort.Slice(deltas, func(i, j int) bool {
		return deltas[i].AccountID.String() < deltas[j].AccountID.String()
	})
	return deltas
}
