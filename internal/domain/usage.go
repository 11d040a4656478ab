package domain

// PivotRow is one process's runtime minutes bucketed by calendar month
// ("YYYY-MM" keys). The aggregator appends a synthetic row named TotalRowLabel
// holding the column-wise sums.
type PivotRow struct {
	Process string
	Minutes map[string]int
}

// DailyRow is runtime minutes for one day-of-month across the months in
// scope, for trend reporting only; it never feeds invoicing.
type DailyRow struct {
	Day     int
	Minutes map[string]int
}

const TotalRowLabel = "Total"

// UsageSummary is the aggregated result for one client and one billing
// period.
//
// TotalRuntimeMinutes is what invoicing consumes: the pivot's Total-row value
// in the most recent month column, plus the snapshot-file unattended total.
// The two addends are kept visible because they are independent measurement
// paths for overlapping usage and summing them is a suspected double count
// pending a ruling from the domain owner.
type UsageSummary struct {
	TotalRuntimeMinutes int
	PivotTotal          int
	SnapshotMinutes     int

	Months []string // ascending "YYYY-MM"
	Pivot  []PivotRow
	Daily  []DailyRow
}
