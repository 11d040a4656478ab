package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int            `toml:"version"`
	Clients []clientSchema `toml:"clients"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported clients schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type clientSchema struct {
	ClientID       string `toml:"client_id"`
	OrganizationID string `toml:"organization_id"`
	WorkspaceID    string `toml:"workspace_id"`
	APIKeyRef      string `toml:"api_key_ref"`
}
