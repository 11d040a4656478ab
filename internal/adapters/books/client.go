// Package books implements the accounting port against the bookkeeping
// platform's REST API (query language for reads, JSON entities for writes).
package books

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/whartman-APD/invoice-send-aws/internal/domain"
	"github.com/whartman-APD/invoice-send-aws/internal/ports"
)

const maxResponseBytes = 1 << 20

type Client struct {
	baseURL    string
	realmID    string
	token      string
	httpClient *http.Client
}

var _ ports.Accounting = (*Client)(nil)

func NewClient(baseURL, realmID, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, realmID: realmID, token: token, httpClient: httpClient}
}

type customerWire struct {
	ID                 string `json:"Id"`
	FullyQualifiedName string `json:"FullyQualifiedName"`
	PrimaryEmailAddr   struct {
		Address string `json:"Address"`
	} `json:"PrimaryEmailAddr"`
}

type invoiceWire struct {
	ID           string          `json:"Id"`
	DocNumber    string          `json:"DocNumber"`
	TxnDate      string          `json:"TxnDate"`
	DueDate      string          `json:"DueDate"`
	TotalAmt     decimal.Decimal `json:"TotalAmt"`
	CustomerRef  refWire         `json:"CustomerRef"`
}

type refWire struct {
	Value string `json:"value"`
	Name  string `json:"name,omitempty"`
}

type queryResponse struct {
	QueryResponse struct {
		Customer []customerWire `json:"Customer"`
		Invoice  []invoiceWire  `json:"Invoice"`
	} `json:"QueryResponse"`
}

// FindCustomerByClientID queries customers whose qualified name starts with
// the client id. Customer names are maintained as "<client id> <company>".
func (c *Client) FindCustomerByClientID(ctx context.Context, clientID string) (ports.Customer, error) {
	query := fmt.Sprintf("select * from Customer where FullyQualifiedName like '%s%%'", clientID)
	var resp queryResponse
	if err := c.query(ctx, query, &resp); err != nil {
		return ports.Customer{}, fmt.Errorf("query customer %s: %w", clientID, err)
	}
	if len(resp.QueryResponse.Customer) == 0 {
		return ports.Customer{}, fmt.Errorf("customer %s: %w", clientID, domain.ErrCustomerNotFound)
	}

	wire := resp.QueryResponse.Customer[0]
	return ports.Customer{
		ID:                 wire.ID,
		FullyQualifiedName: wire.FullyQualifiedName,
		Email:              wire.PrimaryEmailAddr.Address,
	}, nil
}

type invoiceLineWire struct {
	Amount              decimal.Decimal `json:"Amount"`
	Description         string          `json:"Description,omitempty"`
	DetailType          string          `json:"DetailType"`
	SalesItemLineDetail struct {
		ItemRef   refWire          `json:"ItemRef"`
		UnitPrice *decimal.Decimal `json:"UnitPrice,omitempty"`
		Qty       *int             `json:"Qty,omitempty"`
	} `json:"SalesItemLineDetail"`
}

type createInvoiceWire struct {
	TxnDate                      string            `json:"TxnDate"`
	DueDate                      string            `json:"DueDate"`
	Line                         []invoiceLineWire `json:"Line"`
	CustomerRef                  refWire           `json:"CustomerRef"`
	BillEmail                    *emailWire        `json:"BillEmail,omitempty"`
	BillEmailCc                  *emailWire        `json:"BillEmailCc,omitempty"`
	SalesTermRef                 refWire           `json:"SalesTermRef"`
	AllowIPNPayment              bool              `json:"AllowIPNPayment"`
	AllowOnlineCreditCardPayment bool              `json:"AllowOnlineCreditCardPayment"`
	AllowOnlineACHPayment        bool              `json:"AllowOnlineACHPayment"`
}

type emailWire struct {
	Address string `json:"Address"`
}

type invoiceResponse struct {
	Invoice invoiceWire `json:"Invoice"`
}

func (c *Client) CreateInvoice(ctx context.Context, invoice domain.Invoice) (ports.CreatedInvoice, error) {
	payload := createInvoiceWire{
		TxnDate:                      invoice.TxnDate,
		DueDate:                      invoice.DueDate,
		CustomerRef:                  refWire{Value: invoice.CustomerID},
		SalesTermRef:                 refWire{Value: invoice.SalesTermID},
		AllowIPNPayment:              invoice.AllowIPNPayment,
		AllowOnlineCreditCardPayment: invoice.AllowOnlineCreditCardPayment,
		AllowOnlineACHPayment:        invoice.AllowOnlineACHPayment,
	}
	if invoice.BillEmail != "" {
		payload.BillEmail = &emailWire{Address: invoice.BillEmail}
	}
	if invoice.BillEmailCC != "" {
		payload.BillEmailCc = &emailWire{Address: invoice.BillEmailCC}
	}
	for _, line := range invoice.Lines {
		wire := invoiceLineWire{
			Amount:      line.Amount,
			Description: line.Description,
			DetailType:  "SalesItemLineDetail",
		}
		wire.SalesItemLineDetail.ItemRef = refWire{Value: line.ItemID, Name: line.ItemName}
		if line.Kind == domain.LineOverage {
			unitPrice := line.UnitPrice
			qty := line.Quantity
			wire.SalesItemLineDetail.UnitPrice = &unitPrice
			wire.SalesItemLineDetail.Qty = &qty
		}
		payload.Line = append(payload.Line, wire)
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return ports.CreatedInvoice{}, fmt.Errorf("encode invoice: %w", err)
	}

	var resp invoiceResponse
	if err := c.do(ctx, http.MethodPost, c.entityURL("invoice", nil), bytes.NewReader(encoded), "application/json", &resp); err != nil {
		return ports.CreatedInvoice{}, fmt.Errorf("create invoice: %w", err)
	}
	return ports.CreatedInvoice{ID: resp.Invoice.ID, DocNumber: resp.Invoice.DocNumber}, nil
}

// AttachFile uploads a document and links it to the invoice in one multipart
// request: a metadata part plus the file content part.
func (c *Client) AttachFile(ctx context.Context, invoiceID, filename string, content []byte, contentType string) error {
	metadata := map[string]any{
		"AttachableRef": []map[string]any{{
			"EntityRef": map[string]string{"type": "Invoice", "value": invoiceID},
		}},
		"FileName":    filename,
		"ContentType": contentType,
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encode attachment metadata: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Disposition", `form-data; name="file_metadata_01"`)
	metaHeader.Set("Content-Type", "application/json")
	metaPart, err := mw.CreatePart(metaHeader)
	if err != nil {
		return fmt.Errorf("create metadata part: %w", err)
	}
	if _, err := metaPart.Write(encoded); err != nil {
		return fmt.Errorf("write metadata part: %w", err)
	}

	fileHeader := textproto.MIMEHeader{}
	fileHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file_content_01"; filename="%s"`, filename))
	fileHeader.Set("Content-Type", contentType)
	filePart, err := mw.CreatePart(fileHeader)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := filePart.Write(content); err != nil {
		return fmt.Errorf("write file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finish multipart body: %w", err)
	}

	if err := c.do(ctx, http.MethodPost, c.entityURL("upload", nil), &body, mw.FormDataContentType(), nil); err != nil {
		return fmt.Errorf("attach %s to invoice %s: %w", filename, invoiceID, err)
	}
	return nil
}

func (c *Client) QueryInvoicesByDate(ctx context.Context, date string) ([]ports.InvoiceSummary, error) {
	query := fmt.Sprintf("select * from Invoice where TxnDate = '%s'", date)
	var resp queryResponse
	if err := c.query(ctx, query, &resp); err != nil {
		return nil, fmt.Errorf("query invoices for %s: %w", date, err)
	}

	summaries := make([]ports.InvoiceSummary, 0, len(resp.QueryResponse.Invoice))
	for _, wire := range resp.QueryResponse.Invoice {
		summaries = append(summaries, ports.InvoiceSummary{
			ID:           wire.ID,
			DocNumber:    wire.DocNumber,
			CustomerName: wire.CustomerRef.Name,
			TxnDate:      wire.TxnDate,
			DueDate:      wire.DueDate,
			TotalAmount:  wire.TotalAmt,
		})
	}
	return summaries, nil
}

// SendInvoice emails the invoice to its billing addresses on file.
func (c *Client) SendInvoice(ctx context.Context, invoiceID string) error {
	endpoint := c.entityURL("invoice/"+url.PathEscape(invoiceID)+"/send", nil)
	if err := c.do(ctx, http.MethodPost, endpoint, nil, "application/octet-stream", nil); err != nil {
		return fmt.Errorf("send invoice %s: %w", invoiceID, err)
	}
	return nil
}

func (c *Client) query(ctx context.Context, query string, out any) error {
	endpoint := c.entityURL("query", url.Values{"query": {query}})
	return c.do(ctx, http.MethodGet, endpoint, nil, "", out)
}

func (c *Client) entityURL(path string, params url.Values) string {
	endpoint := fmt.Sprintf("%s/v3/company/%s/%s",
		strings.TrimRight(c.baseURL, "/"), url.PathEscape(c.realmID), path)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	return endpoint
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
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
