package application

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/whartman-APD/invoice-send-aws/internal/domain"
	"github.com/whartman-APD/invoice-send-aws/internal/ports"
)

// Custom-field names on the organization task, as configured in the tracker.
const (
	fieldMonthlyRate     = "Rate"
	fieldIncludedMinutes = "Included Consumption"
	fieldConsumptionRate = "Consumption Rate"
	fieldBillingDay      = "Day to Bill"
	fieldServiceType     = "Service Type"
	fieldClientType      = "Type"
	fieldBillingCC       = "Billing CC"
	fieldLifetimeUsage   = "Robocorp Lifetime"
	fieldPriorMonthUsage = "Robocorp Prior Month"
)

// fieldAppliers maps custom-field names to contract attributes. Unparseable
// or missing values leave the documented defaults in place; a partially
// configured contract never fails a client.
var fieldAppliers = map[string]func(*domain.Contract, ports.CustomField){
	fieldMonthlyRate: func(c *domain.Contract, f ports.CustomField) {
		if v, ok := decimalValue(f.Value); ok {
			c.MonthlyRate = v
		}
	},
	fieldIncludedMinutes: func(c *domain.Contract, f ports.CustomField) {
		if v, err := cast.ToIntE(f.Value); err == nil {
			c.IncludedMinutes = v
		}
	},
	fieldConsumptionRate: func(c *domain.Contract, f ports.CustomField) {
		if v, ok := decimalValue(f.Value); ok && !v.IsZero() {
			c.ConsumptionRate = v
		}
	},
	fieldBillingDay: func(c *domain.Contract, f ports.CustomField) {
		if v, err := cast.ToIntE(f.Value); err == nil && v >= 1 && v <= 31 {
			c.BillingDay = v
		}
	},
	fieldServiceType: func(c *domain.Contract, f ports.CustomField) {
		c.ServiceType = optionName(f)
	},
	fieldClientType: func(c *domain.Contract, f ports.CustomField) {
		c.ClientType = optionName(f)
	},
	fieldBillingCC: func(c *domain.Contract, f ports.CustomField) {
		if v, err := cast.ToStringE(f.Value); err == nil {
			c.BillingCC = v
		}
	},
	fieldLifetimeUsage: func(c *domain.Contract, f ports.CustomField) {
		c.LifetimeFieldID = f.ID
		if v, err := cast.ToIntE(f.Value); err == nil {
			c.LifetimeMinutes = v
		}
	},
	fieldPriorMonthUsage: func(c *domain.Contract, f ports.CustomField) {
		c.PriorMonthFieldID = f.ID
	},
}

// ContractResolver looks up client billing terms in the task tracker and,
// unless running dry, writes the usage counters back.
type ContractResolver struct {
	tracker        ports.TaskTracker
	logger         *slog.Logger
	updateCounters bool
}

func NewContractResolver(tracker ports.TaskTracker, logger *slog.Logger, updateCounters bool) *ContractResolver {
	return &ContractResolver{tracker: tracker, logger: logger, updateCounters: updateCounters}
}

// Resolve fetches the organization task for clientID and extracts the
// contract. A missing organization yields the defaulted contract with
// Found=false and no error, so the batch can keep going and flag it.
func (r *ContractResolver) Resolve(ctx context.Context, clientID string) (domain.Contract, error) {
	contract := domain.DefaultContract(clientID)

	task, found, err := r.tracker.FindOrganizationTask(ctx, clientID)
	if err != nil {
		return contract, fmt.Errorf("find organization task: %w", err)
	}
	if !found {
		r.logger.Warn("organization not found in tracker, using contract defaults", "client_id", clientID)
		return contract, nil
	}

	contract.Found = true
	contract.TaskID = task.ID
	for _, field := range task.Fields {
		if apply, ok := fieldAppliers[field.Name]; ok {
			apply(&contract, field)
		}
	}
	return contract, nil
}

// CommitUsage adds the period total to the lifetime counter and persists both
// the new lifetime value and the period total to the tracker. The write is
// skipped (values still computed and returned) when counter updates are
// disabled. Callers invoke this at most once per client per batch run.
func (r *ContractResolver) CommitUsage(ctx context.Context, contract domain.Contract, totalMinutes int) (int, error) {
	lifetime := contract.LifetimeMinutes + totalMinutes

	if !r.updateCounters {
		r.logger.Info("counter updates disabled, skipping contract write-back",
			"client_id", contract.ClientID, "lifetime_minutes", lifetime, "period_minutes", totalMinutes)
		return lifetime, nil
	}
	if !contract.Found {
		return lifetime, nil
	}
	if contract.LifetimeFieldID == "" || contract.PriorMonthFieldID == "" {
		r.logger.Warn("usage counter fields missing on organization task, skipping write-back",
			"client_id", contract.ClientID, "task_id", contract.TaskID)
		return lifetime, nil
	}

	if err := r.tracker.SetCustomFieldValue(ctx, contract.TaskID, contract.LifetimeFieldID, strconv.Itoa(lifetime)); err != nil {
		return lifetime, fmt.Errorf("update lifetime usage counter: %w", err)
	}
	if err := r.tracker.SetCustomFieldValue(ctx, contract.TaskID, contract.PriorMonthFieldID, strconv.Itoa(totalMinutes)); err != nil {
		return lifetime, fmt.Errorf("update prior month usage counter: %w", err)
	}
	return lifetime, nil
}

// optionName resolves a dropdown field: the wire value is an index into the
// field's configured option list.
func optionName(f ports.CustomField) string {
	idx, err := cast.ToIntE(f.Value)
	if err != nil || idx < 0 || idx >= len(f.Options) {
		return ""
	}
	return f.Options[idx].Name
}

func decimalValue(v any) (decimal.Decimal, bool) {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}
