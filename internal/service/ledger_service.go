package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/duoledger/internal/calculator"
	"github.com/mmynk/duoledger/internal/models"
	"github.com/mmynk/duoledger/internal/storage"
)

// PaymentInput holds the client-supplied fields of a payment.
type PaymentInput struct {
	Title      string
	Amount     decimal.Decimal
	Type       models.PaymentType
	OccurredAt time.Time
}

func (in PaymentInput) record(id int64) models.PaymentRecord {
	return models.PaymentRecord{
		ID:         id,
		Title:      strings.TrimSpace(in.Title),
		Amount:     in.Amount,
		Type:       in.Type,
		OccurredAt: in.OccurredAt,
	}
}

// Summary is the ledger read model: every record plus the derived totals in
// both currency units. Converted totals are unrounded.
type Summary struct {
	Payments []models.PaymentRecord
	Totals   calculator.Totals

	Rate         decimal.Decimal
	SpentForeign decimal.Decimal
	DebtForeign  decimal.Decimal
}

// LedgerService manages payment records.
type LedgerService struct {
	store    storage.Store
	settings *SettingsService
}

// NewLedgerService creates a new LedgerService with the given storage backend.
func NewLedgerService(store storage.Store, settings *SettingsService) *LedgerService {
	return &LedgerService{store: store, settings: settings}
}

// Create validates and persists a new payment.
func (s *LedgerService) Create(ctx context.Context, in PaymentInput) (*models.PaymentRecord, error) {
	payment := in.record(0)
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreatePayment(ctx, &payment); err != nil {
		slog.Error("CreatePayment failed", "error", err)
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	slog.Info("Payment created",
		"payment_id", payment.ID,
		"type", payment.Type.String(),
		"amount", payment.Amount.String(),
	)
	return &payment, nil
}

// Get returns a single payment.
func (s *LedgerService) Get(ctx context.Context, id int64) (*models.PaymentRecord, error) {
	return s.store.GetPayment(ctx, id)
}

// Update validates and replaces every mutable field of an existing payment.
func (s *LedgerService) Update(ctx context.Context, id int64, in PaymentInput) (*models.PaymentRecord, error) {
	payment := in.record(id)
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.UpdatePayment(ctx, &payment); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	slog.Info("Payment updated", "payment_id", id, "type", payment.Type.String())
	return &payment, nil
}

// Delete removes a payment. Unknown IDs fail with models.ErrNotFound.
func (s *LedgerService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeletePayment(ctx, id); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	slog.Info("Payment deleted", "payment_id", id)
	return nil
}

// List returns every payment, most recent first.
func (s *LedgerService) List(ctx context.Context) ([]models.PaymentRecord, error) {
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// Summary lists payments, aggregates them and converts the totals with the
// configured rate.
func (s *LedgerService) Summary(ctx context.Context) (*Summary, error) {
	payments, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	rate, err := s.settings.ConversionRate(ctx)
	if err != nil {
		return nil, err
	}

	totals := calculator.Aggregate(payments)

	spentForeign, err := calculator.ToForeign(totals.Spent, rate)
	if err != nil {
		return nil, err
	}
	debtForeign, err := calculator.ToForeign(totals.Debt, rate)
	if err != nil {
		return nil, err
	}

	slog.Debug("Ledger summarized",
		"payments", len(payments),
		"spent", totals.Spent.String(),
		"debt", totals.Debt.String(),
	)

	return &Summary{
		Payments:     payments,
		Totals:       totals,
		Rate:         rate,
		SpentForeign: spentForeign,
		DebtForeign:  debtForeign,
	}, nil
}
