package application

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/whartman-APD/invoice-send-aws/internal/domain"
	"github.com/whartman-APD/invoice-send-aws/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePlatform struct {
	assistantRuns []ports.AssistantRun
	processRuns   []ports.ProcessRun
	stepRuns      map[string][]ports.StepRun
	workspace     ports.Workspace
	processes     []ports.CatalogItem
	assistants    []ports.CatalogItem

	listErr      error
	stepErrs     map[string]int // remaining failures per process run id
	stepRunCalls int
}

func (f *fakePlatform) ListProcessRuns(context.Context, string) ([]ports.ProcessRun, error) {
	return f.processRuns, f.listErr
}

func (f *fakePlatform) ListStepRuns(_ context.Context, _ string, processRunID string) ([]ports.StepRun, error) {
	f.stepRunCalls++
	if remaining := f.stepErrs[processRunID]; remaining > 0 {
		f.stepErrs[processRunID] = remaining - 1
		return nil, errStepFetch
	}
	return f.stepRuns[processRunID], nil
}

func (f *fakePlatform) ListAssistantRuns(context.Context, string) ([]ports.AssistantRun, error) {
	return f.assistantRuns, f.listErr
}

func (f *fakePlatform) GetWorkspace(context.Context, string) (ports.Workspace, error) {
	return f.workspace, nil
}

func (f *fakePlatform) ListProcesses(context.Context, string) ([]ports.CatalogItem, error) {
	return f.processes, nil
}

func (f *fakePlatform) ListAssistants(context.Context, string) ([]ports.CatalogItem, error) {
	return f.assistants, nil
}

type fakePlatformFactory struct {
	platforms map[string]*fakePlatform
}

func (f *fakePlatformFactory) ForToken(token string) ports.UsagePlatform {
	if p, ok := f.platforms[token]; ok {
		return p
	}
	return &fakePlatform{}
}

type fakeTracker struct {
	tasks      map[string]ports.OrganizationTask
	findErr    error
	setErr     error
	fieldsSet  map[string]string // fieldID -> value
	setCalls   int
	foundCalls int
}

func (f *fakeTracker) FindOrganizationTask(_ context.Context, clientID string) (ports.OrganizationTask, bool, error) {
	f.foundCalls++
	if f.findErr != nil {
		return ports.OrganizationTask{}, false, f.findErr
	}
	task, ok := f.tasks[clientID]
	return task, ok, nil
}

func (f *fakeTracker) SetCustomFieldValue(_ context.Context, _ string, fieldID, value string) error {
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	if f.fieldsSet == nil {
		f.fieldsSet = map[string]string{}
	}
	f.fieldsSet[fieldID] = value
	return nil
}

type fakeRegistry struct {
	clients []ports.ClientRecord
	err     error
}

func (f *fakeRegistry) List(context.Context) ([]ports.ClientRecord, error) {
	return f.clients, f.err
}

type fakeSecrets struct {
	values map[string]string
}

func (f *fakeSecrets) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return "", domain.ErrSecretNotFound
}

func (f *fakeSecrets) Put(_ context.Context, key, value string) error {
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[key] = value
	return nil
}

func (f *fakeSecrets) Delete(_ context.Context, key string) error {
	delete(f.values, key)
	return nil
}

type fakeSnapshots struct {
	rows []ports.SnapshotRow
	err  error
}

func (f *fakeSnapshots) FetchCSVSnapshot(context.Context, string) ([]ports.SnapshotRow, error) {
	return f.rows, f.err
}

type fakeAccounting struct {
	customers map[string]ports.Customer
	invoices  []ports.InvoiceSummary

	created     []domain.Invoice
	attached    map[string][]byte
	sent        []string
	createErr   error
	sendErrs    map[string]error
	customerErr error
}

func (f *fakeAccounting) FindCustomerByClientID(_ context.Context, clientID string) (ports.Customer, error) {
	if f.customerErr != nil {
		return ports.Customer{}, f.customerErr
	}
	if c, ok := f.customers[clientID]; ok {
		return c, nil
	}
	return ports.Customer{}, domain.ErrCustomerNotFound
}

func (f *fakeAccounting) CreateInvoice(_ context.Context, invoice domain.Invoice) (ports.CreatedInvoice, error) {
	if f.createErr != nil {
		return ports.CreatedInvoice{}, f.createErr
	}
	f.created = append(f.created, invoice)
	return ports.CreatedInvoice{ID: "inv-1", DocNumber: "1001"}, nil
}

func (f *fakeAccounting) AttachFile(_ context.Context, _ string, filename string, content []byte, _ string) error {
	if f.attached == nil {
		f.attached = map[string][]byte{}
	}
	f.attached[filename] = content
	return nil
}

func (f *fakeAccounting) QueryInvoicesByDate(context.Context, string) ([]ports.InvoiceSummary, error) {
	return f.invoices, nil
}

func (f *fakeAccounting) SendInvoice(_ context.Context, invoiceID string) error {
	if err := f.sendErrs[invoiceID]; err != nil {
		return err
	}
	f.sent = append(f.sent, invoiceID)
	return nil
}

type fakeDocuments struct {
	uploads map[string][]byte
	err     error
}

func (f *fakeDocuments) UploadFile(_ context.Context, path string, content []byte) error {
	if f.err != nil {
		return f.err
	}
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[path] = content
	return nil
}

type fakeMailer struct {
	messages []ports.Message
	err      error
}

func (f *fakeMailer) Send(_ context.Context, msg ports.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

type fakeCatalog struct {
	rows []ports.ProcessRow
	err  error
}

func (f *fakeCatalog) UpsertProcesses(_ context.Context, rows []ports.ProcessRow) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, rows...)
	return nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }
