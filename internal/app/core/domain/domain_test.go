package domain

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func tx(account uuid.UUID, kind TransactionKind, amount string) *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		AccountID: account,
		Kind:      kind,
		Amount:    decimal.RequireFromString(amount),
	}
}

func TestEffect(t *testing.T) {
	acc := uuid.New()
	income := tx(acc, TransactionKindIncome, "200.00")
	expense := tx(acc, TransactionKindExpense, "50.00")

	assert.True(t, Effect(income).Equal(decimal.RequireFromString("200")))
	assert.True(t, Effect(expense).Equal(decimal.RequireFromString("-50")))
	assert.True(t, InverseEffect(income).Equal(decimal.RequireFromString("-200")))
	assert.True(t, InverseEffect(expense).Equal(decimal.RequireFromString("50")))
	assert.True(t, SumEffects([]*Transaction{income, expense}).Equal(decimal.RequireFromString("150")))
}

func TestDeletionDeltas(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	trans := []*Transaction{
		tx(a, TransactionKindExpense, "50.00"),
		tx(a, TransactionKindIncome, "200.00"),
		tx(b, TransactionKindExpense, "10.25"),
		tx(b, TransactionKindExpense, "0.75"),
	}

	deltas := DeletionDeltas(trans)
	assert.Equal(t, 2, len(deltas))

	got := map[uuid.UUID]decimal.Decimal{}
	for _, d := range deltas {
		got[d.AccountID] = d.Amount
	}
	assert.True(t, got[a].Equal(decimal.RequireFromString("-150")))
	assert.True(t, got[b].Equal(decimal.RequireFromString("11")))
}

func TestDeletionDeltasOrderIndependent(t *testing.T) {
	a := uuid.New()
	x := tx(a, TransactionKindExpense, "12.34")
	y := tx(a, TransactionKindIncome, "99.99")

	batch := DeletionDeltas([]*Transaction{x, y})[0].Amount
	first := DeletionDeltas([]*Transaction{x})[0].Amount.Add(DeletionDeltas([]*Transaction{y})[0].Amount)
	reversed := DeletionDeltas([]*Transaction{y, x})[0].Amount

	assert.True(t, batch.Equal(first))
	assert.True(t, batch.Equal(reversed))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "1000", want: "1000"},
		{in: " 12.50 ", want: "12.5"},
		{in: "-3.1", want: "-3.1"},
		{in: "", wantErr: ErrInvalidAmount},
		{in: "abc", wantErr: ErrInvalidAmount},
		{in: "NaN", wantErr: ErrInvalidAmount},
		{in: "Inf", wantErr: ErrInvalidAmount},
		{in: "999999999999999999.99", want: "999999999999999999.99"},
		{in: "-999999999999999999.99", want: "-999999999999999999.99"},
		{in: "1.005e3", want: "1005"},
		{in: "1000000000000000000", wantErr: ErrInvalidAmount},
		{in: "999999999999999999.999", wantErr: ErrInvalidAmount},
		{in: "1e30", wantErr: ErrInvalidAmount},
		{in: "-1e30", wantErr: ErrInvalidAmount},
		{in: "1e200000", wantErr: ErrInvalidAmount},
		{in: "1e-200000", wantErr: ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr != nil {
				assert.IsError(t, err, tt.wantErr)
				assert.True(t, errors.Is(err, ErrValidation))
				return
			}
			assert.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)))
		})
	}
}

func TestParseNonNegativeAmount(t *testing.T) {
	_, err := ParseNonNegativeAmount("-1")
	assert.IsError(t, err, ErrAmountMustBePositive)
	assert.True(t, errors.Is(err, ErrValidation))

	d, err := ParseNonNegativeAmount("0")
	assert.NoError(t, err)
	assert.True(t, d.IsZero())
}

func TestParseKinds(t *testing.T) {
	k, err := ParseAccountKind("savings")
	assert.NoError(t, err)
	assert.Equal(t, AccountKindSavings, k)
	_, err = ParseAccountKind("credit")
	assert.IsError(t, err, ErrInvalidAccountKind)

	tk, err := ParseTransactionKind("Income")
	assert.NoError(t, err)
	assert.Equal(t, TransactionKindIncome, tk)
	_, err = ParseTransactionKind("transfer")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestOwnerValidate(t *testing.T) {
	assert.IsError(t, OwnerID("").Validate(), ErrUnauthorized)
	assert.IsError(t, OwnerID("   ").Validate(), ErrUnauthorized)
	assert.NoError(t, OwnerID("user_1").Validate())
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$1,150.00", FormatAmount(decimal.RequireFromString("1150"), "USD"))
	assert.Equal(t, "-$50.00", FormatAmount(decimal.RequireFromString("-50"), ""))
}
