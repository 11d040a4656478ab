package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("INVOICER_LOWER_CLIENT_ID", "10000")
	t.Setenv("INVOICER_UPPER_CLIENT_ID", "11000")
}

func TestLoadRequiresClientRange(t *testing.T) {
	t.Setenv("INVOICER_LOWER_CLIENT_ID", "")
	t.Setenv("INVOICER_UPPER_CLIENT_ID", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVOICER_LOWER_CLIENT_ID")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10000, cfg.LowerClientID)
	assert.Equal(t, 11000, cfg.UpperClientID)
	assert.True(t, cfg.UploadReports)
	assert.True(t, cfg.CreateInvoices)
	assert.True(t, cfg.UpdateContractCounters)
	assert.Equal(t, "client-reports", cfg.ArchiveBasePath)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadTogglesAndLists(t *testing.T) {
	setRequired(t)
	t.Setenv("INVOICER_CREATE_INVOICES", "false")
	t.Setenv("INVOICER_NET30_CLIENT_IDS", "10020,10045")
	t.Setenv("INVOICER_EXCLUDED_CUSTOMERS", "Internal Test Co")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.CreateInvoices)
	assert.True(t, cfg.UploadReports)

	_, ok := cfg.Net30Set()["10020"]
	assert.True(t, ok)
	_, ok = cfg.Net30Set()["10045"]
	assert.True(t, ok)
	_, ok = cfg.ExcludedSet()["Internal Test Co"]
	assert.True(t, ok)
}

func TestLoadRejectsBadReferenceDate(t *testing.T) {
	setRequired(t)
	t.Setenv("INVOICER_BILLING_REFERENCE_DATE", "October 1st")

	_, err := Load()
	require.Error(t, err)
}

func TestReferenceDateOverride(t *testing.T) {
	t.Parallel()

	cfg := Config{BillingReferenceDate: "2025-10-01"}
	got, err := cfg.ReferenceDate(time.Now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestReferenceDateFallsBackToClock(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.November, 12, 8, 0, 0, 0, time.UTC)
	cfg := Config{}
	got, err := cfg.ReferenceDate(func() time.Time { return now })
	require.NoError(t, err)
	assert.Equal(t, now, got)
}
