// Package docstore implements the snapshot and archive ports against the
// document library's HTTP API: GET by path for reads, PUT for uploads.
package docstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/whartman-APD/invoice-send-aws/internal/domain"
	"github.com/whartman-APD/invoice-send-aws/internal/ports"
)

// Snapshot exports land in the library root under a fixed naming scheme.
const snapshotFilePattern = "account-usage-%s.csv"

const maxSnapshotBytes = 16 << 20

type Client struct {
	baseURL    string
	driveID    string
	token      string
	httpClient *http.Client
}

var (
	_ ports.SnapshotStore = (*Client)(nil)
	_ ports.DocumentStore = (*Client)(nil)
)

func NewClient(baseURL, driveID, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{baseURL: baseURL, driveID: driveID, token: token, httpClient: httpClient}
}

// FetchCSVSnapshot downloads and parses the shared usage export for the
// period. A missing file maps to domain.ErrSnapshotNotFound so the batch can
// abort before touching any client.
func (c *Client) FetchCSVSnapshot(ctx context.Context, periodLabel string) ([]ports.SnapshotRow, error) {
	name := fmt.Sprintf(snapshotFilePattern, periodLabel)
	content, err := c.download(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot %s: %w", name, err)
	}
	rows, err := parseSnapshot(content)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", name, err)
	}
	return rows, nil
}

// UploadFile writes content to path in the library, replacing any existing
// file.
func (c *Client) UploadFile(ctx context.Context, path string, content []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.itemURL(path), bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return fmt.Errorf("upload %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func (c *Client) download(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.itemURL(path), nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perform request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrSnapshotNotFound
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes))
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return content, nil
}

func (c *Client) itemURL(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/drives/%s/items/%s/content",
		strings.TrimRight(c.baseURL, "/"), url.PathEscape(c.driveID), strings.Join(segments, "/"))
}

// parseSnapshot reads the export by header name, so extra or reordered
// columns in the upstream export do not break the batch.
func parseSnapshot(content []byte) ([]ports.SnapshotRow, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []ports.SnapshotRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		total, err := parseMinutes(field(record, "Process total run minutes used"))
		if err != nil {
			return nil, fmt.Errorf("line %d: total run minutes: %w", line, err)
		}
		onDemand, err := parseMinutes(field(record, "Process On-demand run minutes used"))
		if err != nil {
			return nil, fmt.Errorf("line %d: on-demand run minutes: %w", line, err)
		}

		rows = append(rows, ports.SnapshotRow{
			OrganizationID:     field(record, "Organization ID"),
			OrganizationName:   field(record, "Organization name"),
			ProcessID:          field(record, "Process ID"),
			ProcessName:        field(record, "Process name"),
			TotalRunMinutes:    total,
			OnDemandRunMinutes: onDemand,
		})
	}
}

func parseMinutes(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}
