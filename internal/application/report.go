package application

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/whartman-APD/invoice-send-aws/internal/domain"
	"github.com/whartman-APD/invoice-send-aws/internal/ports"
)

// BuildUsageReport renders the per-client runtime report as CSV: the
// per-process pivot with its Total row, the daily two-month comparison, and
// an overage calculation block when there is anything to bill. This is the
// artifact attached to the invoice and archived to the document store.
func BuildUsageReport(summary domain.UsageSummary, contract domain.Contract) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write(append([]string{"Process"}, summary.Months...))
	for _, row := range summary.Pivot {
		record := []string{row.Process}
		for _, month := range summary.Months {
			record = append(record, strconv.Itoa(row.Minutes[month]))
		}
		w.Write(record)
	}

	w.Write(nil)
	w.Write(append([]string{"Day"}, summary.Months...))
	for _, row := range summary.Daily {
		record := []string{strconv.Itoa(row.Day)}
		for _, month := range summary.Months {
			record = append(record, strconv.Itoa(row.Minutes[month]))
		}
		w.Write(record)
	}

	if summary.TotalRuntimeMinutes > 0 {
		overage := contract.OverageMinutes(summary.TotalRuntimeMinutes)
		cost := contract.ConsumptionRate.Mul(decimal.NewFromInt(int64(overage)))
		w.Write(nil)
		w.Write([]string{"Prior Month Total Runtime", strconv.Itoa(summary.TotalRuntimeMinutes)})
		w.Write([]string{"Included Minutes", strconv.Itoa(contract.IncludedMinutes)})
		w.Write([]string{"Overage Minutes", strconv.Itoa(overage)})
		w.Write([]string{"Consumption Rate", contract.ConsumptionRate.String()})
		w.Write([]string{"Total Overage Cost", cost.String()})
	}

	w.Flush()
	return buf.Bytes()
}

// BuildAssistantExport renders the normalized assistant runs for archiving.
func BuildAssistantExport(records []domain.RunRecord) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"Process ID", "Process Name", "Started At", "Runtime Minutes"})
	for _, r := range records {
		w.Write([]string{r.ProcessID, r.ProcessName, r.StartedAt.Format("2006-01-02 15:04:05"), strconv.Itoa(r.RuntimeMinutes)})
	}

	w.Flush()
	return buf.Bytes()
}

// BuildSnapshotExport renders the client's slice of the shared unattended
// snapshot for archiving.
func BuildSnapshotExport(rows []ports.SnapshotRow) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"Organization ID", "Organization name", "Process name", "Process ID",
		"Process total run minutes used", "Process On-demand run minutes used"})
	for _, row := range rows {
		w.Write([]string{
			row.OrganizationID,
			row.OrganizationName,
			row.ProcessName,
			row.ProcessID,
			strconv.FormatFloat(row.TotalRunMinutes, 'f', -1, 64),
			strconv.FormatFloat(row.OnDemandRunMinutes, 'f', -1, 64),
		})
	}

	w.Flush()
	return buf.Bytes()
}

// ReportFileName builds the archive name for a per-client artifact, keyed by
// the billing period label.
func ReportFileName(clientID, kind, periodLabel string) string {
	return fmt.Sprintf("%s_%s_%s.csv", clientID, kind, periodLabel)
}
