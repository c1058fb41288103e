package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/duoledger/internal/models"
	"github.com/mmynk/duoledger/internal/storage/sqlite"
)

func newTestServices(t *testing.T) (*LedgerService, *SettingsService) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	settings := NewSettingsService(store)
	return NewLedgerService(store, settings), settings
}

func input(title, amount string, typ models.PaymentType) PaymentInput {
	return PaymentInput{
		Title:      title,
		Amount:     decimal.RequireFromString(amount),
		Type:       typ,
		OccurredAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestLedgerService_Create(t *testing.T) {
	ledger, _ := newTestServices(t)
	ctx := context.Background()

	payment, err := ledger.Create(ctx, input("  Dinner  ", "42.50", models.PaymentUserSplit))
	require.NoError(t, err)
	assert.NotZero(t, payment.ID)
	assert.Equal(t, "Dinner", payment.Title)

	stored, err := ledger.Get(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.Title, stored.Title)
	assert.True(t, stored.Amount.Equal(payment.Amount))
}

func TestLedgerService_CreateRejectsInvalidInput(t *testing.T) {
	ledger, _ := newTestServices(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    PaymentInput
		field string
	}{
		{"empty title", input("   ", "1", models.PaymentUser), "title"},
		{"zero amount", input("Lunch", "0", models.PaymentUser), "amount"},
		{"negative amount", input("Lunch", "-3", models.PaymentUser), "amount"},
		{"unknown type", input("Lunch", "3", models.PaymentType(7)), "type"},
		{"missing time", PaymentInput{Title: "Lunch", Amount: decimal.NewFromInt(3)}, "occurred_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.Create(ctx, tt.in)
			require.ErrorIs(t, err, models.ErrValidation)

			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	payments, err := ledger.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, payments, "rejected input must not be stored")
}

func TestLedgerService_UpdateAndDelete(t *testing.T) {
	ledger, _ := newTestServices(t)
	ctx := context.Background()

	keep, err := ledger.Create(ctx, input("Groceries", "12.40", models.PaymentFriendSplit))
	require.NoError(t, err)
	payment, err := ledger.Create(ctx, input("Cinema", "20", models.PaymentUser))
	require.NoError(t, err)

	changed := input("Cinema and snacks", "26.35", models.PaymentUserPaysFriend)
	changed.OccurredAt = time.Date(2025, 3, 2, 21, 15, 30, 250*int(time.Millisecond), time.UTC)
	updated, err := ledger.Update(ctx, payment.ID, changed)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, updated.ID)

	listed, err := ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	var stored *models.PaymentRecord
	for i := range listed {
		if listed[i].ID == payment.ID {
			stored = &listed[i]
		}
	}
	require.NotNil(t, stored, "updated payment missing from list")
	assert.Equal(t, "Cinema and snacks", stored.Title)
	assert.True(t, stored.Amount.Equal(decimal.RequireFromString("26.35")), "got %s", stored.Amount)
	assert.Equal(t, models.PaymentUserPaysFriend, stored.Type)
	assert.True(t, changed.OccurredAt.Equal(stored.OccurredAt), "got %s", stored.OccurredAt)

	_, err = ledger.Update(ctx, payment.ID, input("", "26", models.PaymentUser))
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = ledger.Update(ctx, 9999, input("Nobody", "1", models.PaymentUser))
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, ledger.Delete(ctx, payment.ID))
	assert.ErrorIs(t, ledger.Delete(ctx, payment.ID), models.ErrNotFound)

	_, err = ledger.Get(ctx, payment.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	before, err := ledger.List(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, ledger.Delete(ctx, 9999), models.ErrNotFound)
	after, err := ledger.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed delete must leave the ledger unchanged")
	require.Len(t, after, 1)
	assert.Equal(t, keep.ID, after[0].ID)
}

func TestLedgerService_Summary(t *testing.T) {
	ledger, settings := newTestServices(t)
	ctx := context.Background()

	summary, err := ledger.Summary(ctx)
	require.NoError(t, err)
	assert.Empty(t, summary.Payments)
	assert.True(t, summary.Totals.Spent.IsZero())
	assert.True(t, summary.Totals.Debt.IsZero())
	assert.Equal(t, "7.8", summary.Rate.String())

	for _, in := range []PaymentInput{
		input("Rent", "100", models.PaymentUser),
		input("Groceries", "30", models.PaymentFriendSplit),
		input("Loan", "10", models.PaymentDebtToUser),
	} {
		_, err := ledger.Create(ctx, in)
		require.NoError(t, err)
	}

	summary, err = ledger.Summary(ctx)
	require.NoError(t, err)
	assert.Len(t, summary.Payments, 3)
	assert.Equal(t, "100", summary.Totals.Spent.String())
	assert.Equal(t, "5", summary.Totals.Debt.String())
	assert.Equal(t, "12.82", summary.SpentForeign.StringFixed(2))

	require.NoError(t, settings.Set(ctx, KeyConversionRate, "10"))
	summary, err = ledger.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10", summary.SpentForeign.String())
	assert.Equal(t, "0.5", summary.DebtForeign.String())
}
