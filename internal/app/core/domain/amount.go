package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AmountScale 金額小數位數
const AmountScale = 2

// MaxAmountDigits 整數部分最多位數，對應資料庫的 DECIMAL(20,2)
const MaxAmountDigits = 18

// minAmountExponent 小於此指數的輸入 (如 1e-100000) 直接拒絕
const minAmountExponent = -64

// maxAmount 金額絕對值必須小於 10^MaxAmountDigits
var maxAmount = decimal.New(1, MaxAmountDigits)

// ParseAmount 解析使用者輸入的金額字串，並四捨五入到 AmountScale 位。
// 空字串、NaN、Inf、非十進位表示或超出 DECIMAL(20,2) 範圍都回傳 ErrInvalidAmount。
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	// 先擋極端指數，Round 的成本隨指數成長
	if exp := d.Exponent(); exp > MaxAmountDigits || exp < minAmountExponent {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(AmountScale)
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseNonNegativeAmount 交易金額必須 >= 0
func ParseNonNegativeAmount(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, ErrAmountMustBePositive
	}
	return d, nil
}

// RequireAmount 解析失敗時 panic，只用於常數與測試
func RequireAmount(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return d
}
