package usecase

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/domain"
)

func TestGeneratorShape(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	accountID := uuid.New()
	g := NewGenerator(rand.NewPCG(1, 2))
	gen := DefaultGeneratorConfig()

	trans := g.Generate(gen, "alice", accountID, now)

	perDay := map[string]int{}
	for _, tr := range trans {
		perDay[tr.OccurredAt.Format(time.DateOnly)]++
		assert.Equal(t, accountID, tr.AccountID)
		assert.Equal(t, domain.OwnerID("alice"), tr.OwnerID)
		assert.Equal(t, domain.TransactionStatusCompleted, tr.Status)
		assert.False(t, tr.Amount.IsNegative())
		assert.True(t, tr.Amount.Exponent() >= -domain.AmountScale)
		if tr.Kind == domain.TransactionKindIncome {
			assert.True(t, strings.HasPrefix(tr.Description, "Received "))
		} else {
			assert.True(t, strings.HasPrefix(tr.Description, "Paid for "))
		}
	}
	// 今天加上往回 90 天
	assert.Equal(t, 91, len(perDay))
	for day, n := range perDay {
		assert.True(t, n >= 1 && n <= 3, "%s has %d transactions", day, n)
	}
	_, ok := perDay[now.AddDate(0, 0, -90).Format(time.DateOnly)]
	assert.True(t, ok)
}

func TestGeneratorCategoryRanges(t *testing.T) {
	g := NewGenerator(rand.NewPCG(3, 4))
	ranges := map[string]Category{}
	for _, cats := range DefaultCategories() {
		for _, c := range cats {
			ranges[c.Name] = c
		}
	}
	for _, tr := range g.Generate(DefaultGeneratorConfig(), "alice", uuid.New(), time.Now()) {
		c, ok := ranges[tr.Category]
		assert.True(t, ok, "unknown category %q", tr.Category)
		assert.False(t, tr.Amount.LessThan(c.Min))
		assert.False(t, tr.Amount.GreaterThan(c.Max))
	}
}

func TestGeneratorIncomeProbabilityExtremes(t *testing.T) {
	g := NewGenerator(rand.NewPCG(5, 6))
	gen := DefaultGeneratorConfig()

	gen.IncomeProbability = 0
	for _, tr := range g.Generate(gen, "alice", uuid.New(), time.Now()) {
		assert.Equal(t, domain.TransactionKindExpense, tr.Kind)
	}
	gen.IncomeProbability = 1
	for _, tr := range g.Generate(gen, "alice", uuid.New(), time.Now()) {
		assert.Equal(t, domain.TransactionKindIncome, tr.Kind)
	}
}

func TestGeneratorDeterministicWithSeed(t *testing.T) {
	now := time.Now()
	id := uuid.New()
	a := NewGenerator(rand.NewPCG(7, 8)).Generate(DefaultGeneratorConfig(), "alice", id, now)
	b := NewGenerator(rand.NewPCG(7, 8)).Generate(DefaultGeneratorConfig(), "alice", id, now)
	assert.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Kind, b[i].Kind)
		assert.Equal(t, a[i].Category, b[i].Category)
		assert.True(t, a[i].Amount.Equal(b[i].Amount))
	}
}

func TestGeneratorConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultGeneratorConfig().Validate())

	bad := []GeneratorConfig{
		{WindowDays: -1, IncomeProbability: 0.4, MinPerDay: 1, MaxPerDay: 3},
		{WindowDays: 1, IncomeProbability: 1.1, MinPerDay: 1, MaxPerDay: 3},
		{WindowDays: 1, IncomeProbability: 0.4, MinPerDay: 3, MaxPerDay: 1},
		{WindowDays: 1, IncomeProbability: 0.4, MinPerDay: 1, MaxPerDay: 1, Categories: map[domain.TransactionKind][]Category{
			domain.TransactionKindIncome:  {{Name: "x", Min: decimal.NewFromInt(5), Max: decimal.NewFromInt(1)}},
			domain.TransactionKindExpense: {{Name: "y", Min: decimal.Zero, Max: decimal.NewFromInt(1)}},
		}},
		{WindowDays: MaxWindowDays + 1, IncomeProbability: 0.4, MinPerDay: 1, MaxPerDay: 3},
		{WindowDays: 2147483646, IncomeProbability: 0.4, MinPerDay: 1, MaxPerDay: 3},
		{WindowDays: 1, IncomeProbability: 0.4, MinPerDay: 1, MaxPerDay: MaxPerDay + 1},
		// 缺少收入類別
		{WindowDays: 1, IncomeProbability: 0.4, MinPerDay: 1, MaxPerDay: 1, Categories: map[domain.TransactionKind][]Category{
			domain.TransactionKindExpense: {{Name: "y", Min: decimal.Zero, Max: decimal.NewFromInt(1)}},
		}},
		// 支出類別為空
		{WindowDays: 1, IncomeProbability: 0.4, MinPerDay: 1, MaxPerDay: 1, Categories: map[domain.TransactionKind][]Category{
			domain.TransactionKindIncome:  {{Name: "x", Min: decimal.Zero, Max: decimal.NewFromInt(1)}},
			domain.TransactionKindExpense: {},
		}},
		{WindowDays: 1, IncomeProbability: 0.4, MinPerDay: 1, MaxPerDay: 1, Categories: map[domain.TransactionKind][]Category{
			domain.TransactionKindIncome:  {{Name: "huge", Min: decimal.Zero, Max: decimal.RequireFromString("1e20")}},
			domain.TransactionKindExpense: {{Name: "y", Min: decimal.Zero, Max: decimal.NewFromInt(1)}},
		}},
	}
	for _, gen := range bad {
		assert.IsError(t, gen.Validate(), domain.ErrValidation)
	}
}

func TestGeneratorConfigUpperBounds(t *testing.T) {
	gen := DefaultGeneratorConfig()
	gen.WindowDays = MaxWindowDays
	gen.MaxPerDay = MaxPerDay
	assert.NoError(t, gen.Validate())
}
