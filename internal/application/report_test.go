package application

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whartman-APD/invoice-send-aws/internal/domain"
	"github.com/whartman-APD/invoice-send-aws/internal/ports"
)

func TestBuildUsageReportSections(t *testing.T) {
	t.Parallel()

	summary := domain.UsageSummary{
		TotalRuntimeMinutes: 120,
		Months:              []string{"2025-09", "2025-10"},
		Pivot: []domain.PivotRow{
			{Process: "Invoice Import", Minutes: map[string]int{"2025-09": 45, "2025-10": 40}},
			{Process: domain.TotalRowLabel, Minutes: map[string]int{"2025-09": 45, "2025-10": 40}},
		},
		Daily: []domain.DailyRow{
			{Day: 3, Minutes: map[string]int{"2025-09": 45}},
		},
	}
	contract := domain.Contract{
		IncludedMinutes: 100,
		ConsumptionRate: decimal.RequireFromString("0.5"),
	}

	report := string(BuildUsageReport(summary, contract))

	assert.True(t, strings.HasPrefix(report, "Process,2025-09,2025-10\n"))
	assert.Contains(t, report, "Invoice Import,45,40\n")
	assert.Contains(t, report, "Total,45,40\n")
	assert.Contains(t, report, "Day,2025-09,2025-10\n")
	assert.Contains(t, report, "3,45,0\n")
	assert.Contains(t, report, "Prior Month Total Runtime,120\n")
	assert.Contains(t, report, "Included Minutes,100\n")
	assert.Contains(t, report, "Overage Minutes,20\n")
	assert.Contains(t, report, "Total Overage Cost,10\n")
}

func TestBuildUsageReportNoUsageOmitsOverageBlock(t *testing.T) {
	t.Parallel()

	report := string(BuildUsageReport(domain.UsageSummary{}, domain.DefaultContract("10010")))

	assert.NotContains(t, report, "Overage Minutes")
}

func TestBuildAssistantExport(t *testing.T) {
	t.Parallel()

	records := []domain.RunRecord{{
		ProcessID:      "a1",
		ProcessName:    "Helper",
		StartedAt:      time.Date(2025, time.September, 10, 8, 30, 0, 0, time.UTC),
		RuntimeMinutes: 3,
	}}

	export := string(BuildAssistantExport(records))

	require.Contains(t, export, "Process ID,Process Name,Started At,Runtime Minutes\n")
	assert.Contains(t, export, "a1,Helper,2025-09-10 08:30:00,3\n")
}

func TestBuildSnapshotExport(t *testing.T) {
	t.Parallel()

	rows := []ports.SnapshotRow{{
		OrganizationID:     "org-1",
		OrganizationName:   "Acme Corp",
		ProcessID:          "p1",
		ProcessName:        "Nightly Sync",
		TotalRunMinutes:    12.5,
		OnDemandRunMinutes: 2,
	}}

	export := string(BuildSnapshotExport(rows))

	assert.Contains(t, export, "org-1,Acme Corp,Nightly Sync,p1,12.5,2\n")
}

func TestReportFileName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "10010_runtime_report_2025-9.csv", ReportFileName("10010", "runtime_report", "2025-9"))
}
