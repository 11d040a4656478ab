package application

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/whartman-APD/invoice-send-aws/internal/ports"
)

// SenderConfig controls which of the day's invoices go out and who gets the
// summary afterwards.
type SenderConfig struct {
	// BookkeeperEmail receives the HTML run summary.
	BookkeeperEmail string
	// SenderEmail is the From address on the summary.
	SenderEmail string
	// ExcludedCustomers are customer display names whose invoices are
	// created but never emailed.
	ExcludedCustomers map[string]struct{}
}

// SendOutcome records what happened to one invoice during a send run.
type SendOutcome struct {
	Invoice ports.InvoiceSummary
	Status  string
	Err     error
}

const (
	sendStatusSent     = "sent"
	sendStatusSkipped  = "skipped"
	sendStatusFailed   = "failed"
	sendSummarySubject = "Invoice send summary for %s"
)

// Sender emails the invoices dated today and reports the outcome to the
// bookkeeper. Zero-amount invoices and excluded customers are skipped, not
// failures.
type Sender struct {
	cfg        SenderConfig
	accounting ports.Accounting
	mailer     ports.Mailer
	clock      ports.Clock
	logger     *slog.Logger
}

func NewSender(cfg SenderConfig, accounting ports.Accounting, mailer ports.Mailer, clock ports.Clock, logger *slog.Logger) *Sender {
	return &Sender{cfg: cfg, accounting: accounting, mailer: mailer, clock: clock, logger: logger}
}

// Run sends every invoice dated today and mails the bookkeeper a summary.
// Returns the per-invoice outcomes; the error is non-nil only when the run
// could not query invoices or deliver the summary.
func (s *Sender) Run(ctx context.Context) ([]SendOutcome, error) {
	today := s.clock.Now().Format("2006-01-02")
	invoices, err := s.accounting.QueryInvoicesByDate(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("query invoices for %s: %w", today, err)
	}
	s.logger.Info("sending invoices", "date", today, "count", len(invoices))

	outcomes := make([]SendOutcome, 0, len(invoices))
	failed := 0
	for _, inv := range invoices {
		outcome := s.sendOne(ctx, inv)
		if outcome.Status == sendStatusFailed {
			failed++
		}
		outcomes = append(outcomes, outcome)
	}

	if err := s.mailSummary(ctx, today, outcomes); err != nil {
		return outcomes, fmt.Errorf("mail send summary: %w", err)
	}
	if failed > 0 {
		return outcomes, fmt.Errorf("%d of %d invoices failed to send", failed, len(invoices))
	}
	return outcomes, nil
}

func (s *Sender) sendOne(ctx context.Context, inv ports.InvoiceSummary) SendOutcome {
	logger := s.logger.With("invoice_id", inv.ID, "doc_number", inv.DocNumber, "customer", inv.CustomerName)

	if inv.TotalAmount.IsZero() {
		logger.Info("skipping zero-amount invoice")
		return SendOutcome{Invoice: inv, Status: sendStatusSkipped}
	}
	if _, ok := s.cfg.ExcludedCustomers[inv.CustomerName]; ok {
		logger.Info("skipping excluded customer")
		return SendOutcome{Invoice: inv, Status: sendStatusSkipped}
	}

	if err := s.accounting.SendInvoice(ctx, inv.ID); err != nil {
		logger.Error("send failed", "err", err)
		return SendOutcome{Invoice: inv, Status: sendStatusFailed, Err: err}
	}
	logger.Info("invoice sent", "amount", inv.TotalAmount)
	return SendOutcome{Invoice: inv, Status: sendStatusSent}
}

var summaryTemplate = template.Must(template.New("summary").Parse(`<html><body>
<h3>Invoice send run for {{.Date}}</h3>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Doc #</th><th>Customer</th><th>Amount</th><th>Due</th><th>Status</th></tr>
{{range .Outcomes}}<tr>
<td>{{.Invoice.DocNumber}}</td>
<td>{{.Invoice.CustomerName}}</td>
<td>{{.Invoice.TotalAmount}}</td>
<td>{{.Invoice.DueDate}}</td>
<td>{{.Status}}{{with .Err}}: {{.}}{{end}}</td>
</tr>{{end}}
</table>
</body></html>`))

func (s *Sender) mailSummary(ctx context.Context, date string, outcomes []SendOutcome) error {
	var body bytes.Buffer
	data := struct {
		Date     string
		Outcomes []SendOutcome
	}{Date: date, Outcomes: outcomes}
	if err := summaryTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}

	return s.mailer.Send(ctx, ports.Message{
		From:     s.cfg.SenderEmail,
		To:       []string{s.cfg.BookkeeperEmail},
		Subject:  fmt.Sprintf(sendSummarySubject, date),
		HTMLBody: body.String(),
	})
}
