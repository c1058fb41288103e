package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/duoledger/internal/models"
)

func runCLI(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--db", dbPath}, args...))

	err := root.Execute()
	return out.String(), err
}

func TestPaymentsLifecycle(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	out, err := runCLI(t, db, "payments", "add", "--title", "Dinner", "--amount", "31,20",
		"--type", "user_split", "--date", "2025-03-04")
	require.NoError(t, err)
	assert.Equal(t, "Added payment 1\n", out)

	out, err = runCLI(t, db, "payments", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Dinner")
	assert.Contains(t, out, "USER_SPLIT")
	assert.Contains(t, out, "31.20")
	assert.Contains(t, out, "2025-03-04")

	_, err = runCLI(t, db, "payments", "update", "1", "--amount", "40")
	require.NoError(t, err)

	out, err = runCLI(t, db, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Your friend owes you 20.00")

	_, err = runCLI(t, db, "payments", "delete", "1")
	require.NoError(t, err)

	_, err = runCLI(t, db, "payments", "delete", "1")
	assert.ErrorIs(t, err, models.ErrNotFound)

	out, err = runCLI(t, db, "payments", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No payments recorded")
}

func TestPaymentsAddRejectsBadInput(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	_, err := runCLI(t, db, "payments", "add", "--title", "Lunch", "--amount", "abc")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = runCLI(t, db, "payments", "add", "--title", "Lunch", "--amount", "5", "--type", "both")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = runCLI(t, db, "payments", "add", "--title", "   ", "--amount", "5")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = runCLI(t, db, "payments", "update", "x", "--amount", "5")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestSettingsCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	out, err := runCLI(t, db, "settings", "get")
	require.NoError(t, err)
	assert.Contains(t, out, "conversion_rate = 7.8")
	assert.Contains(t, out, "sync_token = (not set)")

	_, err = runCLI(t, db, "settings", "set", "conversion_rate", "0.3")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = runCLI(t, db, "settings", "set", "sync_token", "abc")
	require.NoError(t, err)

	out, err = runCLI(t, db, "settings", "get", "sync_token")
	require.NoError(t, err)
	assert.Equal(t, "sync_token = (set)\n", out)
}

func TestMigrateCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	out, err := runCLI(t, db, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Applied migration 1")
	assert.Contains(t, out, "Applied migration 2")

	out, err = runCLI(t, db, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema is up to date (version 2)")
}

func TestSyncCheckWithoutToken(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	out, err := runCLI(t, db, "sync", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "No sync token configured")
}

func TestPaymentTypesListing(t *testing.T) {
	out, err := runCLI(t, filepath.Join(t.TempDir(), "unused.db"), "payments", "types")
	require.NoError(t, err)
	for _, typ := range models.PaymentTypes() {
		assert.Contains(t, out, typ.String())
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := runCLI(t, filepath.Join(t.TempDir(), "unused.db"), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (commit: none")
}
