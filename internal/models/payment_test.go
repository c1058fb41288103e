package models

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentTypeTable(t *testing.T) {
	tests := []struct {
		typ   PaymentType
		name  string
		spend string
		debt  string
	}{
		{PaymentUser, "USER", "1", "0"},
		{PaymentUserSplit, "USER_SPLIT", "0", "-0.5"},
		{PaymentFriendSplit, "FRIEND_SPLIT", "0", "0.5"},
		{PaymentUserPaysFriend, "USER_PAYS_FRIEND", "1", "-1"},
		{PaymentFriendPaysUser, "FRIEND_PAYS_USER", "0", "-1"},
		{PaymentDebtToFriend, "DEBT_TO_FRIEND", "0", "1"},
		{PaymentDebtToUser, "DEBT_TO_USER", "0", "-1"},
	}
	require.Len(t, PaymentTypes(), len(tests))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := tt.typ.Info()
			assert.Equal(t, tt.name, info.Name)
			assert.Equal(t, tt.name, tt.typ.String())
			assert.True(t, info.SpendFactor.Equal(decimal.RequireFromString(tt.spend)), "spend factor %s", info.SpendFactor)
			assert.True(t, info.DebtFactor.Equal(decimal.RequireFromString(tt.debt)), "debt factor %s", info.DebtFactor)
			assert.NotEmpty(t, info.Label)
			assert.NotEmpty(t, info.Color)

			parsed, err := ParsePaymentType(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, parsed)
		})
	}
}

func TestPaymentTypeInvalid(t *testing.T) {
	assert.False(t, PaymentType(-1).Valid())
	assert.False(t, PaymentType(7).Valid())
	assert.Equal(t, "PaymentType(9)", PaymentType(9).String())
	assert.True(t, PaymentType(9).Info().DebtFactor.IsZero())

	_, err := ParsePaymentType("SOMEONE_ELSE")
	assert.ErrorIs(t, err, ErrValidation)

	parsed, err := ParsePaymentType(" friend_split ")
	require.NoError(t, err)
	assert.Equal(t, PaymentFriendSplit, parsed)
}

func TestPaymentRecordValidate(t *testing.T) {
	valid := PaymentRecord{
		Title:      "Dinner",
		Amount:     decimal.RequireFromString("42.50"),
		Type:       PaymentUserSplit,
		OccurredAt: time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC),
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(p *PaymentRecord)
		field  string
	}{
		{"empty title", func(p *PaymentRecord) { p.Title = "" }, "title"},
		{"blank title", func(p *PaymentRecord) { p.Title = "   " }, "title"},
		{"zero amount", func(p *PaymentRecord) { p.Amount = decimal.Zero }, "amount"},
		{"negative amount", func(p *PaymentRecord) { p.Amount = decimal.NewFromInt(-3) }, "amount"},
		{"unknown type", func(p *PaymentRecord) { p.Type = 12 }, "type"},
		{"zero time", func(p *PaymentRecord) { p.OccurredAt = time.Time{} }, "occurred_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{" 7 ", "7", true},
		{"0.01", "0.01", true},
		{"0", "", false},
		{"-1", "", false},
		{"abc", "", false},
		{"NaN", "", false},
		{"Inf", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, ErrValidation, "ParseAmount(%q)", tc.in)
			continue
		}
		require.NoError(t, err, "ParseAmount(%q)", tc.in)
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "ParseAmount(%q) = %s", tc.in, got)
	}
}

func TestAmountFromFloat(t *testing.T) {
	_, err := AmountFromFloat(math.NaN())
	assert.ErrorIs(t, err, ErrValidation)
	_, err = AmountFromFloat(math.Inf(1))
	assert.ErrorIs(t, err, ErrValidation)

	d, err := AmountFromFloat(19.99)
	require.NoError(t, err)
	assert.Equal(t, "19.99", d.String())
}
