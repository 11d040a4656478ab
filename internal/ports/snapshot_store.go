package ports

import "context"

// SnapshotRow is one row of the pre-aggregated monthly unattended usage
// export. Minutes come pre-rounded from the platform and are summed as-is.
type SnapshotRow struct {
	OrganizationID     string
	OrganizationName   string
	ProcessID          string
	ProcessName        string
	TotalRunMinutes    float64
	OnDemandRunMinutes float64
}

// SnapshotStore fetches the shared usage snapshot for a billing period.
// Absence of the expected file is domain.ErrSnapshotNotFound and fatal for
// the batch.
type SnapshotStore interface {
	FetchCSVSnapshot(ctx context.Context, periodLabel string) ([]SnapshotRow, error)
}
