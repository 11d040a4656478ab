package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/whartman-APD/invoice-send-aws/internal/domain"
)

type Customer struct {
	ID                 string
	FullyQualifiedName string
	Email              string
}

type CreatedInvoice struct {
	ID        string
	DocNumber string
}

// InvoiceSummary is the slice of an existing invoice the send pass needs.
type InvoiceSummary struct {
	ID           string
	DocNumber    string
	CustomerName string
	TxnDate      string
	DueDate      string
	TotalAmount  decimal.Decimal
}

type Accounting interface {
	// FindCustomerByClientID matches customers whose qualified name starts
	// with the client id. Returns domain.ErrCustomerNotFound on no match.
	FindCustomerByClientID(ctx context.Context, clientID string) (Customer, error)
	CreateInvoice(ctx context.Context, invoice domain.Invoice) (CreatedInvoice, error)
	AttachFile(ctx context.Context, invoiceID, filename string, content []byte, contentType string) error
	QueryInvoicesByDate(ctx context.Context, date string) ([]InvoiceSummary, error)
	SendInvoice(ctx context.Context, invoiceID string) error
}
