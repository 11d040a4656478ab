// Package cloudops talks to the Control Room API of the usage platform. One
// Client is bound to one workspace API key; the Factory hands out clients per
// token so the batch can iterate clients with different credentials.
package cloudops

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/whartman-APD/invoice-send-aws/internal/ports"
)

const (
	apiKeyHeader     = "Authorization"
	apiKeyScheme     = "RC-WSKEY"
	pageLimit        = 500
	maxResponseBytes = 1 << 20
)

// Factory builds per-token clients sharing one HTTP client and rate limiter.
// The platform throttles per source IP, not per token, so the limiter is
// shared across all workspaces.
type Factory struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
}

func NewFactory(baseURL string, httpClient *http.Client) *Factory {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Factory{
		BaseURL:    baseURL,
		HTTPClient: httpClient,
		Limiter:    rate.NewLimiter(rate.Limit(5), 5),
	}
}

func (f *Factory) ForToken(token string) ports.UsagePlatform {
	return &Client{baseURL: f.BaseURL, token: token, httpClient: f.HTTPClient, limiter: f.Limiter}
}

var _ ports.UsagePlatformFactory = (*Factory)(nil)

// Client is a UsagePlatform bound to a single workspace API key.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ ports.UsagePlatform = (*Client)(nil)

type page[T any] struct {
	Data    []T    `json:"data"`
	HasMore bool   `json:"has_more"`
	Next    string `json:"next"`
}

type processRunWire struct {
	ID        string `json:"id"`
	StartedAt string `json:"started_at"`
	Process   struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"process"`
}

type stepRunWire struct {
	DurationSeconds *float64 `json:"duration_seconds"`
}

type assistantRunWire struct {
	StartedAt       string  `json:"started_at"`
	DurationSeconds float64 `json:"duration_seconds"`
	Assistant       struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"assistant"`
}

type workspaceWire struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	Organization struct {
		Name string `json:"name"`
	} `json:"organization"`
}

type catalogItemWire struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c *Client) ListProcessRuns(ctx context.Context, workspaceID string) ([]ports.ProcessRun, error) {
	wire, err := listPaged[processRunWire](ctx, c, fmt.Sprintf("workspaces/%s/process-runs", url.PathEscape(workspaceID)))
	if err != nil {
		return nil, fmt.Errorf("list process runs: %w", err)
	}

	runs := make([]ports.ProcessRun, 0, len(wire))
	for _, w := range wire {
		runs = append(runs, ports.ProcessRun{
			ID:          w.ID,
			ProcessID:   w.Process.ID,
			ProcessName: w.Process.Name,
			StartedAt:   w.StartedAt,
		})
	}
	return runs, nil
}

func (c *Client) ListStepRuns(ctx context.Context, workspaceID, processRunID string) ([]ports.StepRun, error) {
	path := fmt.Sprintf("workspaces/%s/step-runs?process_run_id=%s",
		url.PathEscape(workspaceID), url.QueryEscape(processRunID))
	wire, err := listPaged[stepRunWire](ctx, c, path)
	if err != nil {
		return nil, fmt.Errorf("list step runs for %s: %w", processRunID, err)
	}

	steps := make([]ports.StepRun, 0, len(wire))
	for _, w := range wire {
		steps = append(steps, ports.StepRun{DurationSeconds: w.DurationSeconds})
	}
	return steps, nil
}

func (c *Client) ListAssistantRuns(ctx context.Context, workspaceID string) ([]ports.AssistantRun, error) {
	wire, err := listPaged[assistantRunWire](ctx, c, fmt.Sprintf("workspaces/%s/assistant-runs", url.PathEscape(workspaceID)))
	if err != nil {
		return nil, fmt.Errorf("list assistant runs: %w", err)
	}

	runs := make([]ports.AssistantRun, 0, len(wire))
	for _, w := range wire {
		runs = append(runs, ports.AssistantRun{
			AssistantID:     w.Assistant.ID,
			AssistantName:   w.Assistant.Name,
			StartedAt:       w.StartedAt,
			DurationSeconds: w.DurationSeconds,
		})
	}
	return runs, nil
}

func (c *Client) GetWorkspace(ctx context.Context, workspaceID string) (ports.Workspace, error) {
	var wire workspaceWire
	if err := c.getJSON(ctx, fmt.Sprintf("workspaces/%s", url.PathEscape(workspaceID)), &wire); err != nil {
		return ports.Workspace{}, fmt.Errorf("get workspace: %w", err)
	}
	return ports.Workspace{
		ID:               wire.ID,
		Name:             wire.Name,
		URL:              wire.URL,
		OrganizationName: wire.Organization.Name,
	}, nil
}

func (c *Client) ListProcesses(ctx context.Context, workspaceID string) ([]ports.CatalogItem, error) {
	return c.listCatalog(ctx, fmt.Sprintf("workspaces/%s/processes", url.PathEscape(workspaceID)))
}

func (c *Client) ListAssistants(ctx context.Context, workspaceID string) ([]ports.CatalogItem, error) {
	return c.listCatalog(ctx, fmt.Sprintf("workspaces/%s/assistants", url.PathEscape(workspaceID)))
}

func (c *Client) listCatalog(ctx context.Context, path string) ([]ports.CatalogItem, error) {
	wire, err := listPaged[catalogItemWire](ctx, c, path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}

	items := make([]ports.CatalogItem, 0, len(wire))
	for _, w := range wire {
		items = append(items, ports.CatalogItem{ID: w.ID, Name: w.Name})
	}
	return items, nil
}

// listPaged walks the cursor pagination until has_more goes false. The next
// token is opaque; the limit is fixed at the API maximum.
func listPaged[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T
	next := ""
	for {
		pagePath := path
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		pagePath += fmt.Sprintf("%slimit=%d", sep, pageLimit)
		if next != "" {
			pagePath += "&next=" + url.QueryEscape(next)
		}

		var p page[T]
		if err := c.getJSON(ctx, pagePath, &p); err != nil {
			return nil, err
		}
		all = append(all, p.Data...)

		if !p.HasMore || p.Next == "" {
			return all, nil
		}
		next = p.Next
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, apiKeyScheme+" "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
