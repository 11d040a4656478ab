// Package tracker implements the task-tracker port against the tracker's
// REST API. Organization tasks live in one configured list; the client id is
// matched against the "Account #" custom field.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/whartman-APD/invoice-send-aws/internal/ports"
)

const (
	accountNumberField = "Account #"
	maxResponseBytes   = 1 << 20
)

type Client struct {
	baseURL    string
	token      string
	listID     string
	httpClient *http.Client
}

var _ ports.TaskTracker = (*Client)(nil)

func NewClient(baseURL, token, listID string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, token: token, listID: listID, httpClient: httpClient}
}

type taskPage struct {
	Tasks    []taskWire `json:"tasks"`
	LastPage bool       `json:"last_page"`
}

type taskWire struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	CustomFields []fieldWire `json:"custom_fields"`
}

type fieldWire struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Value      any    `json:"value"`
	TypeConfig struct {
		Options []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"options"`
	} `json:"type_config"`
}

// FindOrganizationTask pages through the configured list until a task's
// "Account #" field equals clientID. Absence is reported as found=false, not
// an error.
func (c *Client) FindOrganizationTask(ctx context.Context, clientID string) (ports.OrganizationTask, bool, error) {
	for pageNum := 0; ; pageNum++ {
		path := fmt.Sprintf("list/%s/task?include_closed=true&page=%d", url.PathEscape(c.listID), pageNum)
		var page taskPage
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return ports.OrganizationTask{}, false, fmt.Errorf("list organization tasks page %d: %w", pageNum, err)
		}

		for _, task := range page.Tasks {
			if accountNumber(task) == clientID {
				return toOrganizationTask(task), true, nil
			}
		}

		if page.LastPage || len(page.Tasks) == 0 {
			return ports.OrganizationTask{}, false, nil
		}
	}
}

// SetCustomFieldValue writes one custom field on one task.
func (c *Client) SetCustomFieldValue(ctx context.Context, taskID, fieldID, value string) error {
	path := fmt.Sprintf("task/%s/field/%s", url.PathEscape(taskID), url.PathEscape(fieldID))
	payload := map[string]string{"value": value}
	if err := c.do(ctx, http.MethodPost, path, payload, nil); err != nil {
		return fmt.Errorf("set field %s on task %s: %w", fieldID, taskID, err)
	}
	return nil
}

func accountNumber(task taskWire) string {
	for _, f := range task.CustomFields {
		if f.Name == accountNumberField {
			if v, err := cast.ToStringE(f.Value); err == nil {
				return v
			}
		}
	}
	return ""
}

func toOrganizationTask(task taskWire) ports.OrganizationTask {
	fields := make([]ports.CustomField, 0, len(task.CustomFields))
	for _, f := range task.CustomFields {
		field := ports.CustomField{ID: f.ID, Name: f.Name, Value: f.Value}
		for _, opt := range f.TypeConfig.Options {
			field.Options = append(field.Options, ports.FieldOption{ID: opt.ID, Name: opt.Name})
		}
		fields = append(fields, field)
	}
	return ports.OrganizationTask{ID: task.ID, Name: task.Name, Fields: fields}
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + "/" + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
