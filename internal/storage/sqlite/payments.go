package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/duoledger/internal/models"
)

const paymentColumns = "id, title, total, type, made_on"

// CreatePayment persists a new payment and sets its ID.
// OccurredAt is normalized to the stored millisecond precision.
func (s *SQLiteStore) CreatePayment(ctx context.Context, payment *models.PaymentRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("failed to begin transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO payment (title, total, type, made_on) VALUES (?, ?, ?, ?)",
		payment.Title, payment.Amount.InexactFloat64(), int(payment.Type), payment.OccurredAt.UnixMilli(),
	)
	if err != nil {
		return unavailable("failed to insert payment", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return unavailable("failed to read payment id", err)
	}

	if err := tx.Commit(); err != nil {
		return unavailable("failed to commit transaction", err)
	}

	payment.ID = id
	payment.OccurredAt = fromMillis(payment.OccurredAt.UnixMilli())
	return nil
}

// GetPayment retrieves a payment by ID.
func (s *SQLiteStore) GetPayment(ctx context.Context, id int64) (*models.PaymentRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payment WHERE id = ?",
		id,
	)
	payment, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payment %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// UpdatePayment replaces title, amount, type and date of an existing payment.
func (s *SQLiteStore) UpdatePayment(ctx context.Context, payment *models.PaymentRecord) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE payment SET title = ?, total = ?, type = ?, made_on = ? WHERE id = ?",
		payment.Title, payment.Amount.InexactFloat64(), int(payment.Type), payment.OccurredAt.UnixMilli(), payment.ID,
	)
	if err != nil {
		return unavailable("failed to update payment", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("failed to update payment", err)
	}
	if n == 0 {
		return fmt.Errorf("payment %d: %w", payment.ID, models.ErrNotFound)
	}

	payment.OccurredAt = fromMillis(payment.OccurredAt.UnixMilli())
	return nil
}

// DeletePayment removes a payment by ID. Deleting the same ID twice fails.
func (s *SQLiteStore) DeletePayment(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM payment WHERE id = ?", id)
	if err != nil {
		return unavailable("failed to delete payment", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("failed to delete payment", err)
	}
	if n == 0 {
		return fmt.Errorf("payment %d: %w", id, models.ErrNotFound)
	}

	return nil
}

// ListPayments returns all payments ordered by date, most recent first.
func (s *SQLiteStore) ListPayments(ctx context.Context) ([]models.PaymentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+paymentColumns+" FROM payment ORDER BY made_on DESC, id DESC",
	)
	if err != nil {
		return nil, unavailable("failed to list payments", err)
	}
	defer rows.Close()

	payments := []models.PaymentRecord{}
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *payment)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("failed to iterate payments", err)
	}

	return payments, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPayment(row scanner) (*models.PaymentRecord, error) {
	var (
		payment models.PaymentRecord
		total   float64
		typ     int
		madeOn  int64
	)
	if err := row.Scan(&payment.ID, &payment.Title, &total, &typ, &madeOn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, unavailable("failed to scan payment", err)
	}

	payment.Type = models.PaymentType(typ)
	if !payment.Type.Valid() {
		return nil, fmt.Errorf("%w: payment %d has unknown type %d", models.ErrStorageUnavailable, payment.ID, typ)
	}
	payment.Amount = decimal.NewFromFloat(total)
	payment.OccurredAt = fromMillis(madeOn)

	return &payment, nil
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
