package domain

import "github.com/shopspring/decimal"

// DefaultConsumptionRate applies when a contract does not specify a per-minute
// overage rate. Unlike the other financial fields it defaults to a non-zero
// value so overage is never accidentally free.
var DefaultConsumptionRate = decimal.RequireFromString("0.50")

// Contract holds the per-client billing terms resolved from the task tracker.
// It is consumed as a value object; the only mutation of external state tied
// to it is the usage counter write-back, performed at most once per batch run.
type Contract struct {
	ClientID       string
	WorkspaceID    string
	OrganizationID string

	// TaskID identifies the organization task backing this contract; empty
	// when Found is false.
	TaskID string
	Found  bool

	MonthlyRate     decimal.Decimal
	IncludedMinutes int
	ConsumptionRate decimal.Decimal
	BillingDay      int
	ServiceType     string
	ClientType      string
	BillingCC       string

	// LifetimeMinutes is the cumulative billed-minutes counter as read from
	// the tracker before this run's increment.
	LifetimeMinutes int

	// Custom-field ids needed for the usage write-back.
	LifetimeFieldID   string
	PriorMonthFieldID string
}

// DefaultContract returns the documented fallback terms for a client whose
// organization task is missing or unreadable: zero rate, zero included
// minutes, and the default consumption rate. The batch keeps going on these.
func DefaultContract(clientID string) Contract {
	return Contract{
		ClientID:        clientID,
		MonthlyRate:     decimal.Zero,
		ConsumptionRate: DefaultConsumptionRate,
		BillingDay:      1,
	}
}

// OverageMinutes is the billable excess over the included allotment, never
// negative.
func (c Contract) OverageMinutes(totalRuntimeMinutes int) int {
	if totalRuntimeMinutes > c.IncludedMinutes {
		return totalRuntimeMinutes - c.IncludedMinutes
	}
	return 0
}
