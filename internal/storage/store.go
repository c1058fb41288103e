// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/duoledger/internal/models"
)

// Store defines the persistence operations used by the ledger and settings services.
// This abstraction keeps the service layer independent of the SQLite backend.
type Store interface {
	// CreatePayment persists a new payment. The record's ID field is populated by the store.
	CreatePayment(ctx context.Context, payment *models.PaymentRecord) error

	// GetPayment retrieves a payment by ID.
	// Returns models.ErrNotFound if the payment does not exist.
	GetPayment(ctx context.Context, id int64) (*models.PaymentRecord, error)

	// UpdatePayment replaces every field except the ID.
	// Returns models.ErrNotFound if the payment does not exist.
	UpdatePayment(ctx context.Context, payment *models.PaymentRecord) error

	// DeletePayment removes a payment.
	// Returns models.ErrNotFound if the payment does not exist.
	DeletePayment(ctx context.Context, id int64) error

	// ListPayments returns every payment, most recent first.
	ListPayments(ctx context.Context) ([]models.PaymentRecord, error)

	// GetConfig returns the value stored under key and whether it exists.
	GetConfig(ctx context.Context, key string) (string, bool, error)

	// SetConfig inserts or overwrites the value stored under key.
	SetConfig(ctx context.Context, key, value string) error

	// Close releases any resources held by the store.
	Close() error
}
