// Package toml reads the client registry from a TOML file: which clients
// exist, their platform organization and workspace ids, and the reference to
// their API credential in the secret store.
package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/whartman-APD/invoice-send-aws/internal/ports"
)

const (
	configName         = "config"
	configType         = "toml"
	clientsPathKey     = "clients.path"
	registryConfigDir  = ".invoicer"
	registryConfigFile = "clients.toml"
)

type Registry struct {
	clientsPath string
}

var _ ports.ClientRegistry = (*Registry)(nil)

func NewRegistry(cfg *viper.Viper) (*Registry, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	defaultPath := filepath.Join(homeDir, registryConfigDir, registryConfigFile)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, registryConfigDir))
	cfg.SetDefault(clientsPathKey, defaultPath)

	err = cfg.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	clientsPath := cfg.GetString(clientsPathKey)
	if clientsPath == "" {
		return nil, errors.New("clients path is empty")
	}
	clientsPath, err = normalizeClientsPath(clientsPath)
	if err != nil {
		return nil, err
	}

	return &Registry{clientsPath: clientsPath}, nil
}

func (r *Registry) List(ctx context.Context) ([]ports.ClientRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	clients := make([]ports.ClientRecord, 0, len(file.Clients))
	for _, entry := range file.Clients {
		clients = append(clients, ports.ClientRecord{
			ClientID:       entry.ClientID,
			OrganizationID: entry.OrganizationID,
			WorkspaceID:    entry.WorkspaceID,
			APIKeyRef:      entry.APIKeyRef,
		})
	}

	return clients, nil
}

func (r *Registry) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.clientsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read clients file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode clients file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizeClientsPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve clients path: %w", err)
	}

	return filepath.Clean(absPath), nil
}
