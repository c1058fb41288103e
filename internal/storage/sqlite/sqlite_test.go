package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/duoledger/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreatePayment assigns ID", func(t *testing.T) {
		payment := &models.PaymentRecord{
			Title:      "Groceries",
			Amount:     decimal.RequireFromString("23.40"),
			Type:       models.PaymentUserSplit,
			OccurredAt: time.Date(2025, 2, 10, 18, 30, 0, 0, time.UTC),
		}

		if err := store.CreatePayment(ctx, payment); err != nil {
			t.Fatalf("CreatePayment failed: %v", err)
		}
		if payment.ID == 0 {
			t.Error("Expected payment ID to be assigned")
		}
	})

	t.Run("GetPayment round trips every field", func(t *testing.T) {
		original := &models.PaymentRecord{
			Title:      "Train tickets",
			Amount:     decimal.RequireFromString("118.75"),
			Type:       models.PaymentFriendSplit,
			OccurredAt: time.Date(2025, 2, 11, 7, 15, 30, 123456789, time.UTC),
		}
		if err := store.CreatePayment(ctx, original); err != nil {
			t.Fatalf("CreatePayment failed: %v", err)
		}

		retrieved, err := store.GetPayment(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetPayment failed: %v", err)
		}

		if retrieved.Title != original.Title {
			t.Errorf("Title mismatch: got %s, want %s", retrieved.Title, original.Title)
		}
		if !retrieved.Amount.Equal(original.Amount) {
			t.Errorf("Amount mismatch: got %s, want %s", retrieved.Amount, original.Amount)
		}
		if retrieved.Type != original.Type {
			t.Errorf("Type mismatch: got %s, want %s", retrieved.Type, original.Type)
		}
		if !retrieved.OccurredAt.Equal(original.OccurredAt) {
			t.Errorf("OccurredAt mismatch: got %s, want %s", retrieved.OccurredAt, original.OccurredAt)
		}
		if retrieved.OccurredAt.Nanosecond() != 123000000 {
			t.Errorf("Expected millisecond precision, got %d ns", retrieved.OccurredAt.Nanosecond())
		}
	})

	t.Run("GetPayment returns ErrNotFound for nonexistent payment", func(t *testing.T) {
		_, err := store.GetPayment(ctx, 99999)
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdatePayment replaces fields", func(t *testing.T) {
		payment := &models.PaymentRecord{
			Title:      "Taxi",
			Amount:     decimal.RequireFromString("12"),
			Type:       models.PaymentUser,
			OccurredAt: time.Date(2025, 2, 12, 23, 0, 0, 0, time.UTC),
		}
		if err := store.CreatePayment(ctx, payment); err != nil {
			t.Fatalf("CreatePayment failed: %v", err)
		}

		payment.Title = "Late taxi"
		payment.Amount = decimal.RequireFromString("14.5")
		payment.Type = models.PaymentUserPaysFriend
		if err := store.UpdatePayment(ctx, payment); err != nil {
			t.Fatalf("UpdatePayment failed: %v", err)
		}

		retrieved, err := store.GetPayment(ctx, payment.ID)
		if err != nil {
			t.Fatalf("GetPayment failed: %v", err)
		}
		if retrieved.Title != "Late taxi" || !retrieved.Amount.Equal(payment.Amount) || retrieved.Type != models.PaymentUserPaysFriend {
			t.Errorf("Update not applied: %+v", retrieved)
		}
	})

	t.Run("UpdatePayment returns ErrNotFound for nonexistent payment", func(t *testing.T) {
		err := store.UpdatePayment(ctx, &models.PaymentRecord{
			ID:         424242,
			Title:      "Ghost",
			Amount:     decimal.NewFromInt(1),
			OccurredAt: time.Now(),
		})
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeletePayment is not idempotent", func(t *testing.T) {
		payment := &models.PaymentRecord{
			Title:      "Coffee",
			Amount:     decimal.RequireFromString("3.2"),
			Type:       models.PaymentUser,
			OccurredAt: time.Date(2025, 2, 13, 9, 0, 0, 0, time.UTC),
		}
		if err := store.CreatePayment(ctx, payment); err != nil {
			t.Fatalf("CreatePayment failed: %v", err)
		}

		if err := store.DeletePayment(ctx, payment.ID); err != nil {
			t.Fatalf("DeletePayment failed: %v", err)
		}
		if err := store.DeletePayment(ctx, payment.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestListPaymentsOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	offsets := []int{2, 0, 5, 1}
	for i, days := range offsets {
		err := store.CreatePayment(ctx, &models.PaymentRecord{
			Title:      "payment",
			Amount:     decimal.NewFromInt(int64(i + 1)),
			Type:       models.PaymentUser,
			OccurredAt: base.AddDate(0, 0, days),
		})
		if err != nil {
			t.Fatalf("CreatePayment failed: %v", err)
		}
	}

	payments, err := store.ListPayments(ctx)
	if err != nil {
		t.Fatalf("ListPayments failed: %v", err)
	}
	if len(payments) != len(offsets) {
		t.Fatalf("Expected %d payments, got %d", len(offsets), len(payments))
	}
	for i := 1; i < len(payments); i++ {
		if payments[i].OccurredAt.After(payments[i-1].OccurredAt) {
			t.Errorf("Payments not ordered most recent first at index %d", i)
		}
	}
}

func TestListPaymentsEmpty(t *testing.T) {
	store := newTestStore(t)

	payments, err := store.ListPayments(context.Background())
	if err != nil {
		t.Fatalf("ListPayments failed: %v", err)
	}
	if payments == nil || len(payments) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", payments)
	}
}

func TestConfiguration(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	value, ok, err := store.GetConfig(ctx, "conversion_rate")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if !ok || value != "7.8" {
		t.Errorf("Expected seeded conversion_rate 7.8, got %q (ok=%v)", value, ok)
	}

	if _, ok, _ := store.GetConfig(ctx, "sync_token"); ok {
		t.Error("Expected sync_token to be absent")
	}

	if err := store.SetConfig(ctx, "sync_token", "first"); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	if err := store.SetConfig(ctx, "sync_token", "second"); err != nil {
		t.Fatalf("SetConfig overwrite failed: %v", err)
	}

	value, ok, err = store.GetConfig(ctx, "sync_token")
	if err != nil || !ok || value != "second" {
		t.Errorf("Expected overwritten value 'second', got %q (ok=%v, err=%v)", value, ok, err)
	}
}
