package application

import (
	"sort"

	"github.com/samber/lo"

	"github.com/whartman-APD/invoice-send-aws/internal/domain"
)

// Aggregate merges normalized run records from both sources into a
// UsageSummary. The records arrive pre-filtered to their per-source windows,
// so the pivot can span two months when the unattended window runs long.
//
// The invoiced total is the Total-row value in the rightmost (most recent)
// month column plus the snapshot-file minutes, not a plain sum over the
// records. Empty input is a zero summary, never an error.
func Aggregate(records []domain.RunRecord, snapshotMinutes int) domain.UsageSummary {
	summary := domain.UsageSummary{
		SnapshotMinutes:     snapshotMinutes,
		TotalRuntimeMinutes: snapshotMinutes,
	}
	if len(records) == 0 {
		return summary
	}

	months := lo.Uniq(lo.Map(records, func(r domain.RunRecord, _ int) string {
		return r.Month()
	}))
	sort.Strings(months)
	summary.Months = months

	byProcess := lo.GroupBy(records, func(r domain.RunRecord) string {
		return r.ProcessName
	})
	processes := lo.Keys(byProcess)
	sort.Strings(processes)

	totals := make(map[string]int, len(months))
	for _, process := range processes {
		row := domain.PivotRow{Process: process, Minutes: make(map[string]int, len(months))}
		for _, r := range byProcess[process] {
			row.Minutes[r.Month()] += r.RuntimeMinutes
			totals[r.Month()] += r.RuntimeMinutes
		}
		summary.Pivot = append(summary.Pivot, row)
	}
	summary.Pivot = append(summary.Pivot, domain.PivotRow{
		Process: domain.TotalRowLabel,
		Minutes: totals,
	})

	summary.PivotTotal = totals[months[len(months)-1]]
	summary.TotalRuntimeMinutes = summary.PivotTotal + snapshotMinutes

	byDay := lo.GroupBy(records, func(r domain.RunRecord) int {
		return r.StartedAt.UTC().Day()
	})
	days := lo.Keys(byDay)
	sort.Ints(days)
	for _, day := range days {
		row := domain.DailyRow{Day: day, Minutes: make(map[string]int, len(months))}
		for _, r := range byDay[day] {
			row.Minutes[r.Month()] += r.RuntimeMinutes
		}
		summary.Daily = append(summary.Daily, row)
	}

	return summary
}
