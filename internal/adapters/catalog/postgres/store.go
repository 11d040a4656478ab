// Package postgres persists the process/assistant dimension table used by
// downstream reporting.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/whartman-APD/invoice-send-aws/internal/ports"
)

// DB is the subset of pgxpool.Pool the store needs; tests supply a fake.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Store struct {
	db DB
}

var _ ports.ProcessCatalog = (*Store)(nil)

func NewStore(db DB) *Store {
	return &Store{db: db}
}

// UpsertProcesses inserts or refreshes one row per process, keyed by the
// platform process id.
func (s *Store) UpsertProcesses(ctx context.Context, rows []ports.ProcessRow) error {
	query := `
		INSERT INTO processes (process_id, process_name, workspace_id, workspace_text_id, workspace_name, client_number, client_name, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (process_id) DO UPDATE SET
			process_name = EXCLUDED.process_name,
			workspace_id = EXCLUDED.workspace_id,
			workspace_text_id = EXCLUDED.workspace_text_id,
			workspace_name = EXCLUDED.workspace_name,
			client_number = EXCLUDED.client_number,
			client_name = EXCLUDED.client_name,
			last_synced_at = EXCLUDED.last_synced_at
	`
	for _, row := range rows {
		_, err := s.db.Exec(ctx, query,
			row.ProcessID, row.ProcessName, row.WorkspaceID, row.WorkspaceTextID,
			row.WorkspaceName, row.ClientNumber, row.ClientName, row.LastSyncedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert process %s: %w", row.ProcessID, err)
		}
	}

	return nil
}
