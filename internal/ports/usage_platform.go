package ports

import "context"

// ProcessRun is a raw unattended process run as returned by the usage
// platform. StartedAt stays a raw wire string so the core can enforce its
// UTC/offset policy at ingestion instead of trusting the adapter.
type ProcessRun struct {
	ID          string
	ProcessID   string
	ProcessName string
	StartedAt   string
}

// StepRun is one step inside an unattended process run. DurationSeconds is
// nil when the platform reports no duration; nil contributes zero minutes.
type StepRun struct {
	DurationSeconds *float64
}

// AssistantRun is a raw interactive run with a single top-level duration.
type AssistantRun struct {
	AssistantID     string
	AssistantName   string
	StartedAt       string
	DurationSeconds float64
}

// Workspace is the metadata the process-catalog sync needs.
type Workspace struct {
	ID               string
	Name             string
	URL              string
	OrganizationName string
}

// CatalogItem is a process or assistant definition (not a run).
type CatalogItem struct {
	ID   string
	Name string
}

// UsagePlatform is the automation cloud's API surface, with pagination hidden
// behind slice-returning methods. Implementations are scoped to one client's
// API credential.
type UsagePlatform interface {
	ListProcessRuns(ctx context.Context, workspaceID string) ([]ProcessRun, error)
	ListStepRuns(ctx context.Context, workspaceID, processRunID string) ([]StepRun, error)
	ListAssistantRuns(ctx context.Context, workspaceID string) ([]AssistantRun, error)
	GetWorkspace(ctx context.Context, workspaceID string) (Workspace, error)
	ListProcesses(ctx context.Context, workspaceID string) ([]CatalogItem, error)
	ListAssistants(ctx context.Context, workspaceID string) ([]CatalogItem, error)
}

// UsagePlatformFactory binds a per-client API token to a platform client.
type UsagePlatformFactory interface {
	ForToken(token string) UsagePlatform
}
