package books

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whartman-APD/invoice-send-aws/internal/domain"
)

func TestFindCustomerByClientID(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/company/realm-1/query", r.URL.Path)
		gotQuery = r.URL.Query().Get("query")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"QueryResponse": map[string]any{
				"Customer": []map[string]any{{
					"Id":                 "cust-42",
					"FullyQualifiedName": "10010 Acme Corp",
					"PrimaryEmailAddr":   map[string]string{"Address": "billing@acme.example"},
				}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "realm-1", "token", srv.Client())
	customer, err := client.FindCustomerByClientID(context.Background(), "10010")
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "like '10010%'")
	assert.Equal(t, "cust-42", customer.ID)
	assert.Equal(t, "billing@acme.example", customer.Email)
}

func TestFindCustomerByClientIDNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"QueryResponse": map[string]any{}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "realm-1", "token", srv.Client())
	_, err := client.FindCustomerByClientID(context.Background(), "99999")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestCreateInvoicePayload(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/company/realm-1/invoice", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"Invoice": map[string]any{"Id": "inv-7", "DocNumber": "1042"},
		})
	}))
	defer srv.Close()

	invoice := domain.Invoice{
		TxnDate: "2025-10-01",
		DueDate: "2025-11-01",
		Lines: []domain.LineItem{
			{
				Kind:        domain.LineBaseService,
				Amount:      decimal.NewFromInt(2500),
				Description: "Managed Automation Services",
				ItemID:      "11",
				ItemName:    "Managed Automation Services",
			},
			{
				Kind:      domain.LineOverage,
				Amount:    decimal.RequireFromString("125"),
				ItemID:    "1010000001",
				UnitPrice: decimal.RequireFromString("0.5"),
				Quantity:  250,
			},
		},
		CustomerID:            "cust-42",
		BillEmail:             "billing@acme.example",
		BillEmailCC:           "ap@acme.example",
		AllowIPNPayment:       true,
		AllowOnlineACHPayment: true,
		SalesTermID:           "1",
	}

	client := NewClient(srv.URL, "realm-1", "token", srv.Client())
	created, err := client.CreateInvoice(context.Background(), invoice)
	require.NoError(t, err)

	assert.Equal(t, "inv-7", created.ID)
	assert.Equal(t, "1042", created.DocNumber)

	assert.Equal(t, "2025-10-01", gotBody["TxnDate"])
	assert.Equal(t, "cust-42", gotBody["CustomerRef"].(map[string]any)["value"])
	assert.Equal(t, "ap@acme.example", gotBody["BillEmailCc"].(map[string]any)["Address"])

	lines := gotBody["Line"].([]any)
	require.Len(t, lines, 2)
	base := lines[0].(map[string]any)
	assert.Equal(t, "SalesItemLineDetail", base["DetailType"])
	// Unit price and quantity appear only on the overage line.
	assert.NotContains(t, base["SalesItemLineDetail"].(map[string]any), "Qty")
	overage := lines[1].(map[string]any)["SalesItemLineDetail"].(map[string]any)
	assert.Equal(t, 250.0, overage["Qty"])
}

func TestAttachFileIsMultipart(t *testing.T) {
	t.Parallel()

	var metadata, fileContent []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/company/realm-1/upload", r.URL.Path)
		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		reader := multipart.NewReader(r.Body, params["boundary"])
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			data, _ := io.ReadAll(part)
			switch part.FormName() {
			case "file_metadata_01":
				metadata = data
			case "file_content_01":
				fileContent = data
				assert.Equal(t, "report.csv", part.FileName())
			}
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "realm-1", "token", srv.Client())
	err := client.AttachFile(context.Background(), "inv-7", "report.csv", []byte("a,b\n"), "text/csv")
	require.NoError(t, err)

	assert.Equal(t, []byte("a,b\n"), fileContent)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(metadata, &meta))
	refs := meta["AttachableRef"].([]any)
	assert.Equal(t, "inv-7", refs[0].(map[string]any)["EntityRef"].(map[string]any)["value"])
}

func TestQueryInvoicesByDate(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"QueryResponse": map[string]any{
				"Invoice": []map[string]any{{
					"Id":          "inv-7",
					"DocNumber":   "1042",
					"TxnDate":     "2025-10-01",
					"DueDate":     "2025-11-01",
					"TotalAmt":    2625.0,
					"CustomerRef": map[string]string{"value": "cust-42", "name": "10010 Acme Corp"},
				}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "realm-1", "token", srv.Client())
	invoices, err := client.QueryInvoicesByDate(context.Background(), "2025-10-01")
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "TxnDate = '2025-10-01'")
	require.Len(t, invoices, 1)
	assert.Equal(t, "10010 Acme Corp", invoices[0].CustomerName)
	assert.True(t, invoices[0].TotalAmount.Equal(decimal.RequireFromString("2625")))
}

func TestSendInvoice(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "realm-1", "token", srv.Client())
	require.NoError(t, client.SendInvoice(context.Background(), "inv-7"))
	assert.Equal(t, "/v3/company/realm-1/invoice/inv-7/send", gotPath)
}
