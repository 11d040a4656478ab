package toml

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, contents string) *Registry {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "clients.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg := viper.New()
	cfg.Set(clientsPathKey, path)
	registry, err := NewRegistry(cfg)
	require.NoError(t, err)
	return registry
}

func TestListReadsClients(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, `
version = 1

[[clients]]
client_id = "10010"
organization_id = "org-1"
workspace_id = "ws-1"
api_key_ref = "cloudops/10010"

[[clients]]
client_id = "10020"
organization_id = "org-2"
workspace_id = "ws-2"
api_key_ref = "cloudops/10020"
`)

	clients, err := registry.List(context.Background())
	require.NoError(t, err)

	require.Len(t, clients, 2)
	assert.Equal(t, "10010", clients[0].ClientID)
	assert.Equal(t, "org-1", clients[0].OrganizationID)
	assert.Equal(t, "ws-1", clients[0].WorkspaceID)
	assert.Equal(t, "cloudops/10010", clients[0].APIKeyRef)
	assert.Equal(t, "10020", clients[1].ClientID)
}

func TestListMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	cfg := viper.New()
	cfg.Set(clientsPathKey, filepath.Join(t.TempDir(), "absent.toml"))
	registry, err := NewRegistry(cfg)
	require.NoError(t, err)

	clients, err := registry.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, clients)
}

func TestListRejectsNewerSchemaVersion(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, "version = 99\n")

	_, err := registry.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported clients schema version")
}

func TestListRejectsMalformedFile(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, "not valid toml [[")

	_, err := registry.List(context.Background())
	require.Error(t, err)
}
