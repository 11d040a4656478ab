package application

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/whartman-APD/invoice-send-aws/internal/domain"
	"github.com/whartman-APD/invoice-send-aws/internal/ports"
)

// Accounting-platform item references for the two line kinds.
const (
	baseServiceItemID   = "11"
	baseServiceItemName = "Managed Automation Services"
	overageItemID       = "1010000001"
	overageItemName     = "Runtime Overage Minutes"
	defaultSalesTermID  = "1"
)

const (
	serviceTypeManaged     = "Managed Service"
	clientTypeStandard     = "Client"
	clientTypeMaintenance  = "Client (Maintenance)"
	invoiceDateLayout      = "2006-01-02"
	invoiceLongDateLayout  = "January 2, 2006"
	invoiceMonthYearLayout = "January 2006"
)

// BuildInvoice assembles the invoice payload for one client from the resolved
// contract and aggregated usage. Pure: identical inputs produce identical
// invoices; submission and attachments are the caller's job.
//
// The transaction date is the contract's billing day in the current billing
// month. Clients on the net-30 allow-list get their due date pushed one
// calendar month; everyone else is due on the transaction date.
func BuildInvoice(contract domain.Contract, usage domain.UsageSummary, customer ports.Customer, period domain.BillingPeriod, net30Clients map[string]struct{}) domain.Invoice {
	billingDay := contract.BillingDay
	if billingDay < 1 || billingDay > 31 {
		billingDay = 1
	}
	txnDate := time.Date(period.CurrentStart.Year(), period.CurrentStart.Month(), billingDay, 0, 0, 0, 0, time.UTC)
	dueDate := txnDate
	if _, ok := net30Clients[contract.ClientID]; ok {
		dueDate = txnDate.AddDate(0, 1, 0)
	}

	lines := []domain.LineItem{{
		Kind:        domain.LineBaseService,
		Amount:      contract.MonthlyRate,
		Description: baseDescription(contract, txnDate),
		ItemID:      baseServiceItemID,
		ItemName:    baseServiceItemName,
	}}

	if overage := contract.OverageMinutes(usage.TotalRuntimeMinutes); overage > 0 {
		qty := decimal.NewFromInt(int64(overage))
		lines = append(lines, domain.LineItem{
			Kind:        domain.LineOverage,
			Amount:      contract.ConsumptionRate.Mul(qty),
			Description: fmt.Sprintf("Runtime Overage for %s", period.PriorStart.Format(invoiceMonthYearLayout)),
			ItemID:      overageItemID,
			ItemName:    overageItemName,
			UnitPrice:   contract.ConsumptionRate,
			Quantity:    overage,
		})
	}

	return domain.Invoice{
		TxnDate:                      txnDate.Format(invoiceDateLayout),
		DueDate:                      dueDate.Format(invoiceDateLayout),
		Lines:                        lines,
		CustomerID:                   customer.ID,
		BillEmail:                    customer.Email,
		BillEmailCC:                  contract.BillingCC,
		AllowIPNPayment:              true,
		AllowOnlineCreditCardPayment: false,
		AllowOnlineACHPayment:        true,
		SalesTermID:                  defaultSalesTermID,
	}
}

// baseDescription picks between the two fixed wordings keyed by service and
// client type. Any other combination gets an empty description, which the
// accounting platform accepts.
func baseDescription(contract domain.Contract, txnDate time.Time) string {
	if contract.ServiceType != serviceTypeManaged {
		return ""
	}

	from := txnDate.Format(invoiceLongDateLayout)
	to := txnDate.AddDate(0, 1, -1).Format(invoiceLongDateLayout)
	switch contract.ClientType {
	case clientTypeStandard:
		return fmt.Sprintf("Managed Automation Services for the period from %s to %s.", from, to)
	case clientTypeMaintenance:
		return fmt.Sprintf("Managed Automation Maintenance for the period from %s to %s.", from, to)
	default:
		return ""
	}
}
