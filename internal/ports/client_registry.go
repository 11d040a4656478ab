package ports

import "context"

// ClientRecord identifies one managed client and where its usage lives.
// APIKeyRef names the secret holding that client's usage-platform credential.
type ClientRecord struct {
	ClientID       string
	OrganizationID string
	WorkspaceID    string
	APIKeyRef      string
}

type ClientRegistry interface {
	List(ctx context.Context) ([]ClientRecord, error)
}
