package domain

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency 顯示用幣別，核心不做匯率換算
const DefaultCurrency = money.USD

// FormatAmount 依幣別格式化金額 (僅供顯示)
func FormatAmount(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	cur := money.GetCurrency(currency)
	if cur == nil {
		cur = money.GetCurrency(DefaultCurrency)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}
