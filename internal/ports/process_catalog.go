package ports

import (
	"context"
	"time"
)

// ProcessRow is one row of the process dimension kept in SQL for reporting.
type ProcessRow struct {
	ProcessID       string
	ProcessName     string
	WorkspaceID     string
	WorkspaceTextID string
	WorkspaceName   string
	ClientNumber    string
	ClientName      string
	LastSyncedAt    time.Time
}

type ProcessCatalog interface {
	UpsertProcesses(ctx context.Context, rows []ProcessRow) error
}
