package domain

import "github.com/shopspring/decimal"

type LineKind string

const (
	LineBaseService LineKind = "base_service"
	LineOverage     LineKind = "overage"
)

// LineItem is one billable invoice line. UnitPrice and Quantity are only
// meaningful for overage lines.
type LineItem struct {
	Kind        LineKind
	Amount      decimal.Decimal
	Description string
	ItemID      string
	ItemName    string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// Invoice is the assembled request payload for the accounting platform.
// Building one performs no I/O; submission belongs to the caller.
type Invoice struct {
	TxnDate string // "2006-01-02"
	DueDate string

	Lines []LineItem

	CustomerID  string
	BillEmail   string
	BillEmailCC string // empty means no CC recipient

	AllowIPNPayment              bool
	AllowOnlineCreditCardPayment bool
	AllowOnlineACHPayment        bool
	SalesTermID                  string
}

// OverageLine returns the overage line item and whether one is present.
func (i Invoice) OverageLine() (LineItem, bool) {
	for _, line := range i.Lines {
		if line.Kind == LineOverage {
			return line, true
		}
	}
	return LineItem{}, false
}
