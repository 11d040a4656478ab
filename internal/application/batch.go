package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/whartman-APD/invoice-send-aws/internal/domain"
	"github.com/whartman-APD/invoice-send-aws/internal/ports"
)

// ReservedClientID is the provider's own internal account. It is never
// billed, regardless of the configured id range.
const ReservedClientID = "10000"

// BatchConfig is the explicit per-run configuration. It is built once at
// process start and passed in; nothing here is read from ambient globals.
type BatchConfig struct {
	// Clients with LowerClientID <= id < UpperClientID are processed.
	LowerClientID int
	UpperClientID int

	// Net30ClientIDs get their invoice due date pushed one month.
	Net30ClientIDs map[string]struct{}

	// Feature toggles. Each disables only its side effect; everything is
	// still computed and logged for inspection.
	UploadReports          bool
	CreateInvoices         bool
	UpdateContractCounters bool

	// ReferenceDate is the first day of the current billing month.
	ReferenceDate time.Time

	// ArchiveBasePath is the document-store folder reports land in.
	ArchiveBasePath string
}

func (c BatchConfig) validate() error {
	if c.LowerClientID <= 0 || c.UpperClientID <= 0 {
		return errors.New("client id range bounds are required")
	}
	if c.UpperClientID <= c.LowerClientID {
		return fmt.Errorf("upper client id %d must exceed lower client id %d", c.UpperClientID, c.LowerClientID)
	}
	return nil
}

// BatchDeps carries the external collaborators the batch drives.
type BatchDeps struct {
	Registry   ports.ClientRegistry
	Secrets    ports.SecretStore
	Platforms  ports.UsagePlatformFactory
	Snapshots  ports.SnapshotStore
	Contracts  *ContractResolver
	Accounting ports.Accounting
	Documents  ports.DocumentStore
}

// BatchResult summarizes one run. Success is true iff no in-range client
// failed; skipped clients are not failures.
type BatchResult struct {
	Processed int
	Skipped   int
	Failed    int
	Success   bool
}

// Batch runs the monthly reconciliation over every registered client,
// sequentially: the downstream APIs are rate-limited and one client at a
// time keeps the run easy to reason about from its logs.
type Batch struct {
	cfg    BatchConfig
	deps   BatchDeps
	logger *slog.Logger
}

func NewBatch(cfg BatchConfig, deps BatchDeps, logger *slog.Logger) *Batch {
	return &Batch{cfg: cfg, deps: deps, logger: logger}
}

// Run executes the batch. Configuration and snapshot errors abort before any
// client is touched; per-client errors are logged, counted, and never stop
// the remaining clients.
func (b *Batch) Run(ctx context.Context) (BatchResult, error) {
	if err := b.cfg.validate(); err != nil {
		return BatchResult{}, fmt.Errorf("batch config: %w", err)
	}

	period := domain.NewBillingPeriod(b.cfg.ReferenceDate)
	logger := b.logger.With("run_id", uuid.NewString(), "period", period.Label())
	logger.Info("starting billing batch",
		"lower_client_id", b.cfg.LowerClientID, "upper_client_id", b.cfg.UpperClientID)

	snapshot, err := b.deps.Snapshots.FetchCSVSnapshot(ctx, period.Label())
	if err != nil {
		return BatchResult{}, fmt.Errorf("fetch usage snapshot for %s: %w", period.Label(), err)
	}

	clients, err := b.deps.Registry.List(ctx)
	if err != nil {
		return BatchResult{}, fmt.Errorf("list clients: %w", err)
	}

	var result BatchResult
	for _, client := range clients {
		if !b.inRange(client.ClientID) {
			result.Skipped++
			continue
		}

		result.Processed++
		clientLogger := logger.With("client_id", client.ClientID)
		if err := b.processClient(ctx, clientLogger, client, period, snapshot); err != nil {
			result.Failed++
			clientLogger.Error("client failed", "err", err)
			continue
		}
		clientLogger.Info("client complete")
	}

	result.Success = result.Failed == 0
	logger.Info("billing batch finished",
		"processed", result.Processed, "skipped", result.Skipped,
		"failed", result.Failed, "success", result.Success)
	return result, nil
}

func (b *Batch) inRange(clientID string) bool {
	if clientID == ReservedClientID {
		return false
	}
	id, err := strconv.Atoi(clientID)
	if err != nil {
		return false
	}
	return b.cfg.LowerClientID <= id && id < b.cfg.UpperClientID
}

func (b *Batch) processClient(ctx context.Context, logger *slog.Logger, client ports.ClientRecord, period domain.BillingPeriod, snapshot []ports.SnapshotRow) error {
	token, err := b.deps.Secrets.Get(ctx, client.APIKeyRef)
	if err != nil {
		return fmt.Errorf("load usage platform credential: %w", err)
	}
	normalizer := NewNormalizer(b.deps.Platforms.ForToken(token), logger)

	assistant, _, err := normalizer.AssistantRuns(ctx, client.WorkspaceID, period)
	if err != nil {
		return fmt.Errorf("normalize assistant runs: %w", err)
	}
	unattended, _, err := normalizer.UnattendedRuns(ctx, client.WorkspaceID, period)
	if err != nil {
		return fmt.Errorf("normalize unattended runs: %w", err)
	}
	snapshotMinutes, snapshotRows := SnapshotUsage(snapshot, client.OrganizationID)

	summary := Aggregate(append(assistant, unattended...), snapshotMinutes)
	logger.Info("usage aggregated",
		"total_minutes", summary.TotalRuntimeMinutes,
		"pivot_minutes", summary.PivotTotal,
		"snapshot_minutes", summary.SnapshotMinutes)

	contract, err := b.deps.Contracts.Resolve(ctx, client.ClientID)
	if err != nil {
		return fmt.Errorf("resolve contract: %w", err)
	}
	contract.WorkspaceID = client.WorkspaceID
	contract.OrganizationID = client.OrganizationID

	lifetime, err := b.deps.Contracts.CommitUsage(ctx, contract, summary.TotalRuntimeMinutes)
	if err != nil {
		return fmt.Errorf("commit usage counters: %w", err)
	}
	logger.Info("contract resolved",
		"found", contract.Found, "included_minutes", contract.IncludedMinutes,
		"overage_minutes", contract.OverageMinutes(summary.TotalRuntimeMinutes),
		"lifetime_minutes", lifetime)

	customer, err := b.deps.Accounting.FindCustomerByClientID(ctx, client.ClientID)
	if err != nil {
		return fmt.Errorf("find customer: %w", err)
	}

	invoice := BuildInvoice(contract, summary, customer, period, b.cfg.Net30ClientIDs)
	report := BuildUsageReport(summary, contract)
	reportName := ReportFileName(client.ClientID, "runtime_report", period.Label())

	if b.cfg.CreateInvoices {
		created, err := b.deps.Accounting.CreateInvoice(ctx, invoice)
		if err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		if err := b.deps.Accounting.AttachFile(ctx, created.ID, reportName, report, "text/csv"); err != nil {
			return fmt.Errorf("attach report to invoice %s: %w", created.ID, err)
		}
		logger.Info("invoice created", "invoice_id", created.ID, "txn_date", invoice.TxnDate, "due_date", invoice.DueDate)
	} else {
		logger.Info("invoice creation disabled",
			"txn_date", invoice.TxnDate, "due_date", invoice.DueDate, "lines", len(invoice.Lines))
	}

	if b.cfg.UploadReports {
		uploads := map[string][]byte{
			reportName: report,
			ReportFileName(client.ClientID, "assistant_processes", period.Label()):  BuildAssistantExport(assistant),
			ReportFileName(client.ClientID, "unattended_processes", period.Label()): BuildSnapshotExport(snapshotRows),
		}
		for name, content := range uploads {
			if err := b.deps.Documents.UploadFile(ctx, path.Join(b.cfg.ArchiveBasePath, name), content); err != nil {
				return fmt.Errorf("upload %s: %w", name, err)
			}
		}
	}

	return nil
}
