package usecase

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/domain"
)

// Category 產生器使用的類別與金額區間
type Category struct {
	Name   string
	Min    decimal.Decimal
	Max    decimal.Decimal
	Weight int // <= 0 視為 1
}

// maxCategoryAmount 單筆合成金額上限，總和才不會超出帳戶餘額欄位
var maxCategoryAmount = decimal.New(1, domain.MaxAmountDigits-8)

func cat(name string, min, max int64) Category {
	return Category{Name: name, Min: decimal.NewFromInt(min), Max: decimal.NewFromInt(max), Weight: 1}
}

// DefaultCategories demo 帳戶使用的類別表
func DefaultCategories() map[domain.TransactionKind][]Category {
	return map[domain.TransactionKind][]Category{
		domain.TransactionKindIncome: {
			cat("salary", 5000, 8000),
			cat("freelance", 1000, 3000),
			cat("investments", 500, 2000),
			cat("other-income", 100, 1000),
		},
		domain.TransactionKindExpense: {
			cat("housing", 1000, 2000),
			cat("transportation", 100, 500),
			cat("groceries", 200, 600),
			cat("utilities", 100, 300),
			cat("entertainment", 50, 200),
			cat("food", 50, 150),
			cat("shopping", 100, 500),
			cat("healthcare", 100, 1000),
			cat("education", 200, 1000),
			cat("travel", 500, 2000),
		},
	}
}

// GeneratorConfig 控制合成交易流的形狀
type GeneratorConfig struct {
	WindowDays        int     // 往回幾天 (含今天共 WindowDays+1 天)
	IncomeProbability float64 // 每筆交易為收入的機率
	MinPerDay         int
	MaxPerDay         int
	Categories        map[domain.TransactionKind][]Category // nil 使用 DefaultCategories
}

const (
	// MaxWindowDays 最多往回產生 10 年
	MaxWindowDays = 3650
	// MaxPerDay 每天最多產生的筆數
	MaxPerDay = 50
)

// DefaultGeneratorConfig 90 天、每天 1-3 筆、40% 收入
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		WindowDays:        90,
		IncomeProbability: 0.4,
		MinPerDay:         1,
		MaxPerDay:         3,
	}
}

// Validate 檢查參數
func (s GeneratorConfig) Validate() error {
	if s.WindowDays < 0 || s.WindowDays > MaxWindowDays {
		return fmt.Errorf("%w: windowDays must be within [0,%d]", domain.ErrInvalidGenerator, MaxWindowDays)
	}
	if s.IncomeProbability < 0 || s.IncomeProbability > 1 {
		return fmt.Errorf("%w: incomeProbability must be within [0,1]", domain.ErrInvalidGenerator)
	}
	if s.MinPerDay < 0 || s.MaxPerDay < s.MinPerDay || s.MaxPerDay > MaxPerDay {
		return fmt.Errorf("%w: per-day range [%d,%d]", domain.ErrInvalidGenerator, s.MinPerDay, s.MaxPerDay)
	}
	cats := s.categories()
	// 兩種類型都必須有類別，否則 pick 無從選起
	for _, kind := range []domain.TransactionKind{domain.TransactionKindIncome, domain.TransactionKindExpense} {
		if len(cats[kind]) == 0 {
			return fmt.Errorf("%w: no categories for %s", domain.ErrInvalidGenerator, kind)
		}
		for _, c := range cats[kind] {
			if c.Min.IsNegative() || c.Max.LessThan(c.Min) || c.Max.GreaterThanOrEqual(maxCategoryAmount) {
				return fmt.Errorf("%w: category %q range", domain.ErrInvalidGenerator, c.Name)
			}
		}
	}
	return nil
}

func (s GeneratorConfig) categories() map[domain.TransactionKind][]Category {
	if s.Categories != nil {
		return s.Categories
	}
	return DefaultCategories()
}

// Generator 產生 demo/test 帳戶的歷史交易；*rand.Rand 非 thread-safe，由呼叫端序列化
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator 以指定亂數來源建立產生器 (測試可傳固定 seed)
func NewGenerator(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// Generate 產生交易流，日期由 now 往回推 WindowDays 天
func (g *Generator) Generate(gen GeneratorConfig, owner domain.OwnerID, accountID uuid.UUID, now time.Time) []*domain.Transaction {
	cats := gen.categories()
	trans := make([]*domain.Transaction, 0, (gen.WindowDays+1)*gen.MaxPerDay)
	for i := gen.WindowDays; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		perDay := gen.MinPerDay + g.rnd.IntN(gen.MaxPerDay-gen.MinPerDay+1)
		for j := 0; j < perDay; j++ {
			kind := domain.TransactionKindExpense
			if g.rnd.Float64() < gen.IncomeProbability {
				kind = domain.TransactionKindIncome
			}
			c := g.pick(cats[kind])
			trans = append(trans, &domain.Transaction{
				ID:          uuid.New(),
				AccountID:   accountID,
				OwnerID:     owner,
				Kind:        kind,
				Amount:      g.amount(c),
				Description: describe(kind, c.Name),
				Category:    c.Name,
				Status:      domain.TransactionStatusCompleted,
				OccurredAt:  date,
				CreatedAt:   date,
			})
		}
	}
	return trans
}

// pick 依 Weight 加權選擇類別
func (g *Generator) pick(cats []Category) Category {
	total := 0
	for _, c := range cats {
		total += weight(c)
	}
	n := g.rnd.IntN(total)
	for _, c := range cats {
		n -= weight(c)
		if n < 0 {
			return c
		}
	}
	return cats[len(cats)-1]
}

// amount 在 [Min, Max] 均勻取值並四捨五入到小數點後 2 位
func (g *Generator) amount(c Category) decimal.Decimal {
	span := c.Max.Sub(c.Min)
	return c.Min.Add(span.Mul(decimal.NewFromFloat(g.rnd.Float64()))).Round(domain.AmountScale)
}

func weight(c Category) int {
	if c.Weight <= 0 {
		return 1
	}
	return c.Weight
}

func describe(kind domain.TransactionKind, category string) string {
	if kind == domain.TransactionKindIncome {
		return "Received " + category
	}
	return "Paid for " + category
}
