package ports

import "context"

// FieldOption is one configured choice of a select/dropdown custom field.
type FieldOption struct {
	ID   string
	Name string
}

// CustomField is a named, loosely typed field on an organization task.
// Value keeps the wire type (string, number, index) and is parsed tolerantly
// by the contract resolver.
type CustomField struct {
	ID      string
	Name    string
	Value   any
	Options []FieldOption
}

// OrganizationTask represents the client organization record in the task
// tracker, carrying the billing contract fields.
type OrganizationTask struct {
	ID     string
	Name   string
	Fields []CustomField
}

type TaskTracker interface {
	// FindOrganizationTask locates the task whose "Account #" field equals
	// clientID. found=false with a nil error means no match; the batch
	// continues on contract defaults.
	FindOrganizationTask(ctx context.Context, clientID string) (task OrganizationTask, found bool, err error)
	SetCustomFieldValue(ctx context.Context, taskID, fieldID, value string) error
}
