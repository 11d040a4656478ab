package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/whartman-APD/invoice-send-aws/internal/domain"
	"github.com/whartman-APD/invoice-send-aws/internal/ports"
)

// stepRunRetryDelay is the single fixed wait before re-fetching step runs
// after a transient failure. Not exponential; one retry only.
const stepRunRetryDelay = 15 * time.Second

// Normalizer converts raw platform run records into domain.RunRecord values
// for one client. It holds no cross-call state; every invocation refetches.
type Normalizer struct {
	platform   ports.UsagePlatform
	logger     *slog.Logger
	retryDelay time.Duration
	sleep      func(time.Duration)
}

func NewNormalizer(platform ports.UsagePlatform, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		platform:   platform,
		logger:     logger,
		retryDelay: stepRunRetryDelay,
		sleep:      time.Sleep,
	}
}

// AssistantRuns fetches and normalizes interactive runs started inside the
// assistant window. Runs with missing or zone-less timestamps are dropped and
// counted, never coerced. Empty input yields empty output.
func (n *Normalizer) AssistantRuns(ctx context.Context, workspaceID string, period domain.BillingPeriod) ([]domain.RunRecord, int, error) {
	raw, err := n.platform.ListAssistantRuns(ctx, workspaceID)
	if err != nil {
		return nil, 0, fmt.Errorf("list assistant runs: %w", err)
	}

	start, end := period.AssistantWindow()
	records := make([]domain.RunRecord, 0, len(raw))
	dropped := 0
	for _, run := range raw {
		startedAt, err := parseUTC(run.StartedAt)
		if err != nil {
			dropped++
			continue
		}
		if !domain.Contains(startedAt, start, end) {
			continue
		}
		records = append(records, domain.RunRecord{
			ProcessID:      run.AssistantID,
			ProcessName:    run.AssistantName,
			StartedAt:      startedAt,
			RuntimeMinutes: domain.CeilMinutes(run.DurationSeconds),
			Source:         domain.SourceAssistant,
		})
	}

	if dropped > 0 {
		n.logger.Warn("dropped assistant runs with invalid timestamps",
			"workspace_id", workspaceID, "dropped", dropped)
	}
	return records, dropped, nil
}

// UnattendedRuns fetches process runs started inside the unattended window
// and sums each run's step durations, each step rounded up to the whole
// minute, nil durations contributing nothing. A failed step-run fetch is
// retried once after a fixed delay before the error propagates.
func (n *Normalizer) UnattendedRuns(ctx context.Context, workspaceID string, period domain.BillingPeriod) ([]domain.RunRecord, int, error) {
	raw, err := n.platform.ListProcessRuns(ctx, workspaceID)
	if err != nil {
		return nil, 0, fmt.Errorf("list process runs: %w", err)
	}

	start, end := period.UnattendedWindow()
	records := make([]domain.RunRecord, 0, len(raw))
	dropped := 0
	for _, run := range raw {
		startedAt, err := parseUTC(run.StartedAt)
		if err != nil {
			dropped++
			continue
		}
		if !domain.Contains(startedAt, start, end) {
			continue
		}

		steps, err := n.listStepRuns(ctx, workspaceID, run.ID)
		if err != nil {
			return nil, dropped, fmt.Errorf("list step runs for process run %s: %w", run.ID, err)
		}

		minutes := 0
		for _, step := range steps {
			if step.DurationSeconds == nil {
				continue
			}
			minutes += domain.CeilMinutes(*step.DurationSeconds)
		}

		records = append(records, domain.RunRecord{
			ProcessID:      run.ProcessID,
			ProcessName:    run.ProcessName,
			StartedAt:      startedAt,
			RuntimeMinutes: minutes,
			Source:         domain.SourceUnattended,
		})
	}

	if dropped > 0 {
		n.logger.Warn("dropped process runs with invalid timestamps",
			"workspace_id", workspaceID, "dropped", dropped)
	}
	return records, dropped, nil
}

func (n *Normalizer) listStepRuns(ctx context.Context, workspaceID, processRunID string) ([]ports.StepRun, error) {
	steps, err := n.platform.ListStepRuns(ctx, workspaceID, processRunID)
	if err == nil {
		return steps, nil
	}

	n.logger.Warn("step run fetch failed, retrying once",
		"process_run_id", processRunID, "delay", n.retryDelay, "err", err)
	n.sleep(n.retryDelay)

	return n.platform.ListStepRuns(ctx, workspaceID, processRunID)
}

// SnapshotUsage sums the pre-aggregated unattended minutes for one
// organization and returns the matching rows for the archive export. The
// platform already rounded these, so they are summed as-is.
func SnapshotUsage(rows []ports.SnapshotRow, organizationID string) (int, []ports.SnapshotRow) {
	total := 0.0
	var matched []ports.SnapshotRow
	for _, row := range rows {
		if row.OrganizationID != organizationID {
			continue
		}
		total += row.TotalRunMinutes
		matched = append(matched, row)
	}
	return int(total), matched
}

// parseUTC accepts only timestamps carrying an explicit offset (RFC 3339) and
// normalizes them to UTC. Zone-less values fail rather than being assumed.
func parseUTC(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse started_at %q: %w", raw, err)
	}
	return t.UTC(), nil
}
