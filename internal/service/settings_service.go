package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/duoledger/internal/models"
	"github.com/mmynk/duoledger/internal/storage"
)

// Recognized configuration keys.
const (
	KeyConversionRate = "conversion_rate"
	KeySyncToken      = "sync_token"
)

// DefaultConversionRate is seeded by the first migration.
var DefaultConversionRate = decimal.RequireFromString("7.8")

// SettingsService is the key/value configuration store. Values are validated
// per key before they are written; writes overwrite, nothing is deleted.
type SettingsService struct {
	store storage.Store
}

// NewSettingsService creates a new SettingsService with the given storage backend.
func NewSettingsService(store storage.Store) *SettingsService {
	return &SettingsService{store: store}
}

// Keys returns the recognized configuration keys.
func Keys() []string {
	return []string{KeyConversionRate, KeySyncToken}
}

// Get returns the stored value for key and whether it is set.
func (s *SettingsService) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	return s.store.GetConfig(ctx, key)
}

// Set validates value for key and stores it.
func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	switch key {
	case KeyConversionRate:
		rate, err := parseRate(value)
		if err != nil {
			return err
		}
		value = rate.String()
	case KeySyncToken:
		value = strings.TrimSpace(value)
		if value == "" {
			return models.NewValidationError(KeySyncToken, "must not be empty")
		}
	}

	if err := s.store.SetConfig(ctx, key, value); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}

	// Never log the token itself.
	if key == KeySyncToken {
		slog.Info("Setting updated", "key", key)
	} else {
		slog.Info("Setting updated", "key", key, "value", value)
	}
	return nil
}

// ConversionRate returns the stored rate in home units per foreign unit.
// A missing row falls back to DefaultConversionRate; an unparsable one is ErrInvalidRate.
func (s *SettingsService) ConversionRate(ctx context.Context) (decimal.Decimal, error) {
	value, ok, err := s.store.GetConfig(ctx, KeyConversionRate)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return DefaultConversionRate, nil
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: stored value %q", models.ErrInvalidRate, value)
	}
	return rate, nil
}

// SyncToken returns the configured sync token, if any.
func (s *SettingsService) SyncToken(ctx context.Context) (string, bool, error) {
	token, ok, err := s.store.GetConfig(ctx, KeySyncToken)
	if err != nil || !ok || strings.TrimSpace(token) == "" {
		return "", false, err
	}
	return token, true, nil
}

func validateKey(key string) error {
	for _, k := range Keys() {
		if k == key {
			return nil
		}
	}
	return models.NewValidationError("key", fmt.Sprintf("unknown setting %q", key))
}

func parseRate(value string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(strings.ReplaceAll(value, ",", ".")))
	if err != nil {
		return decimal.Zero, models.NewValidationError(KeyConversionRate, fmt.Sprintf("%q is not a number", value))
	}
	if rate.LessThan(decimal.NewFromInt(1)) {
		return decimal.Zero, models.NewValidationError(KeyConversionRate, "must be at least 1")
	}
	return rate, nil
}
