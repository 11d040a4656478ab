package application

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whartman-APD/invoice-send-aws/internal/domain"
	"github.com/whartman-APD/invoice-send-aws/internal/ports"
)

func managedContract() domain.Contract {
	return domain.Contract{
		ClientID:        "10010",
		Found:           true,
		MonthlyRate:     decimal.NewFromInt(2500),
		IncludedMinutes: 1000,
		ConsumptionRate: decimal.RequireFromString("0.5"),
		BillingDay:      1,
		ServiceType:     "Managed Service",
		ClientType:      "Client",
		BillingCC:       "ap@acme.example",
	}
}

func billingCustomer() ports.Customer {
	return ports.Customer{ID: "cust-42", FullyQualifiedName: "10010 Acme Corp", Email: "billing@acme.example"}
}

func octoberPeriod() domain.BillingPeriod {
	return domain.NewBillingPeriod(time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC))
}

func TestBuildInvoiceBaseLineOnly(t *testing.T) {
	t.Parallel()

	usage := domain.UsageSummary{TotalRuntimeMinutes: 900}
	invoice := BuildInvoice(managedContract(), usage, billingCustomer(), octoberPeriod(), nil)

	require.Len(t, invoice.Lines, 1)
	base := invoice.Lines[0]
	assert.Equal(t, domain.LineBaseService, base.Kind)
	assert.True(t, base.Amount.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, "11", base.ItemID)
	assert.Equal(t, "Managed Automation Services for the period from October 1, 2025 to October 31, 2025.", base.Description)

	assert.Equal(t, "2025-10-01", invoice.TxnDate)
	assert.Equal(t, "2025-10-01", invoice.DueDate)
	assert.Equal(t, "cust-42", invoice.CustomerID)
	assert.Equal(t, "billing@acme.example", invoice.BillEmail)
	assert.Equal(t, "ap@acme.example", invoice.BillEmailCC)
}

func TestBuildInvoiceOverageLine(t *testing.T) {
	t.Parallel()

	usage := domain.UsageSummary{TotalRuntimeMinutes: 1250}
	invoice := BuildInvoice(managedContract(), usage, billingCustomer(), octoberPeriod(), nil)

	overage, ok := invoice.OverageLine()
	require.True(t, ok)
	assert.Equal(t, 250, overage.Quantity)
	assert.True(t, overage.UnitPrice.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, overage.Amount.Equal(decimal.NewFromInt(125)))
	assert.Equal(t, "1010000001", overage.ItemID)
	assert.Equal(t, "Runtime Overage for September 2025", overage.Description)
}

func TestBuildInvoiceNoOverageAtExactAllotment(t *testing.T) {
	t.Parallel()

	usage := domain.UsageSummary{TotalRuntimeMinutes: 1000}
	invoice := BuildInvoice(managedContract(), usage, billingCustomer(), octoberPeriod(), nil)

	_, ok := invoice.OverageLine()
	assert.False(t, ok)
	assert.Len(t, invoice.Lines, 1)
}

func TestBuildInvoiceNet30DueDate(t *testing.T) {
	t.Parallel()

	usage := domain.UsageSummary{TotalRuntimeMinutes: 0}
	net30 := map[string]struct{}{"10010": {}}
	invoice := BuildInvoice(managedContract(), usage, billingCustomer(), octoberPeriod(), net30)

	assert.Equal(t, "2025-10-01", invoice.TxnDate)
	assert.Equal(t, "2025-11-01", invoice.DueDate)
}

func TestBuildInvoiceBillingDay(t *testing.T) {
	t.Parallel()

	contract := managedContract()
	contract.BillingDay = 15
	usage := domain.UsageSummary{}

	invoice := BuildInvoice(contract, usage, billingCustomer(), octoberPeriod(), nil)

	assert.Equal(t, "2025-10-15", invoice.TxnDate)
	assert.Contains(t, invoice.Lines[0].Description, "from October 15, 2025 to November 14, 2025")
}

func TestBuildInvoiceInvalidBillingDayFallsBackToFirst(t *testing.T) {
	t.Parallel()

	contract := managedContract()
	contract.BillingDay = 0

	invoice := BuildInvoice(contract, domain.UsageSummary{}, billingCustomer(), octoberPeriod(), nil)
	assert.Equal(t, "2025-10-01", invoice.TxnDate)
}

func TestBuildInvoiceMaintenanceDescription(t *testing.T) {
	t.Parallel()

	contract := managedContract()
	contract.ClientType = "Client (Maintenance)"

	invoice := BuildInvoice(contract, domain.UsageSummary{}, billingCustomer(), octoberPeriod(), nil)
	assert.Contains(t, invoice.Lines[0].Description, "Managed Automation Maintenance")
}

func TestBuildInvoiceUnknownTypesGetEmptyDescription(t *testing.T) {
	t.Parallel()

	contract := managedContract()
	contract.ServiceType = "Consumption Only"

	invoice := BuildInvoice(contract, domain.UsageSummary{}, billingCustomer(), octoberPeriod(), nil)
	assert.Empty(t, invoice.Lines[0].Description)
}

func TestBuildInvoicePaymentFlags(t *testing.T) {
	t.Parallel()

	invoice := BuildInvoice(managedContract(), domain.UsageSummary{}, billingCustomer(), octoberPeriod(), nil)

	assert.True(t, invoice.AllowIPNPayment)
	assert.False(t, invoice.AllowOnlineCreditCardPayment)
	assert.True(t, invoice.AllowOnlineACHPayment)
	assert.Equal(t, "1", invoice.SalesTermID)
}

func TestBuildInvoiceDeterministic(t *testing.T) {
	t.Parallel()

	usage := domain.UsageSummary{TotalRuntimeMinutes: 1250}

	first := BuildInvoice(managedContract(), usage, billingCustomer(), octoberPeriod(), nil)
	second := BuildInvoice(managedContract(), usage, billingCustomer(), octoberPeriod(), nil)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
