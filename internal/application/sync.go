package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/whartman-APD/invoice-send-aws/internal/ports"
)

// SyncResult summarizes one catalog sync run.
type SyncResult struct {
	Clients   int
	Processes int
	Failed    int
	Success   bool
}

// Sync refreshes the process/assistant dimension table from every client's
// workspace. Used by reporting, independent of the billing batch.
type Sync struct {
	registry  ports.ClientRegistry
	secrets   ports.SecretStore
	platforms ports.UsagePlatformFactory
	catalog   ports.ProcessCatalog
	clock     ports.Clock
	logger    *slog.Logger
}

func NewSync(registry ports.ClientRegistry, secrets ports.SecretStore, platforms ports.UsagePlatformFactory, catalog ports.ProcessCatalog, clock ports.Clock, logger *slog.Logger) *Sync {
	return &Sync{registry: registry, secrets: secrets, platforms: platforms, catalog: catalog, clock: clock, logger: logger}
}

// Run upserts every client's processes and assistants into the catalog.
// Per-client errors are counted and logged; the run continues.
func (s *Sync) Run(ctx context.Context) (SyncResult, error) {
	clients, err := s.registry.List(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("list clients: %w", err)
	}

	var result SyncResult
	for _, client := range clients {
		result.Clients++
		logger := s.logger.With("client_id", client.ClientID)

		rows, err := s.clientRows(ctx, client)
		if err != nil {
			result.Failed++
			logger.Error("sync client failed", "err", err)
			continue
		}
		if err := s.catalog.UpsertProcesses(ctx, rows); err != nil {
			result.Failed++
			logger.Error("upsert processes failed", "err", err)
			continue
		}
		result.Processes += len(rows)
		logger.Info("client synced", "processes", len(rows))
	}

	result.Success = result.Failed == 0
	s.logger.Info("catalog sync finished",
		"clients", result.Clients, "processes", result.Processes,
		"failed", result.Failed, "success", result.Success)
	return result, nil
}

func (s *Sync) clientRows(ctx context.Context, client ports.ClientRecord) ([]ports.ProcessRow, error) {
	token, err := s.secrets.Get(ctx, client.APIKeyRef)
	if err != nil {
		return nil, fmt.Errorf("load usage platform credential: %w", err)
	}
	platform := s.platforms.ForToken(token)

	workspace, err := platform.GetWorkspace(ctx, client.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("get workspace: %w", err)
	}
	processes, err := platform.ListProcesses(ctx, client.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	assistants, err := platform.ListAssistants(ctx, client.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("list assistants: %w", err)
	}

	now := s.clock.Now()
	textID := workspaceTextID(workspace.URL)
	rows := make([]ports.ProcessRow, 0, len(processes)+len(assistants))
	for _, item := range append(processes, assistants...) {
		rows = append(rows, ports.ProcessRow{
			ProcessID:       item.ID,
			ProcessName:     item.Name,
			WorkspaceID:     workspace.ID,
			WorkspaceTextID: textID,
			WorkspaceName:   workspace.Name,
			ClientNumber:    client.ClientID,
			ClientName:      workspace.OrganizationName,
			LastSyncedAt:    now,
		})
	}
	return rows, nil
}

// workspaceTextID extracts the human-readable workspace slug from its console
// URL, e.g. "acme-ops" from "https://cloud.example.com/acme-ops/workspaces".
func workspaceTextID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return ""
	}
	return parts[0]
}
