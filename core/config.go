package core

import (
	"strings"
)

// Provider identifies a backend kind. Postgres and MySQL are reserved: their
// configuration shape is accepted but the registry refuses to construct an
// adapter for them.
type Provider string

const (
	ProviderSQLite   Provider = "sqlite"
	ProviderSupabase Provider = "supabase"
	ProviderPostgres Provider = "postgres"
	ProviderMySQL    Provider = "mysql"
)

func (p Provider) Known() bool {
	switch p {
	case ProviderSQLite, ProviderSupabase, ProviderPostgres, ProviderMySQL:
		return true
	}
	return false
}

func (p Provider) Reserved() bool {
	return p == ProviderPostgres || p == ProviderMySQL
}

type SQLiteConfig struct {
	FilePath string `koanf:"file_path" mapstructure:"file_path"`
}

type SupabaseConfig struct {
	URL            string `koanf:"url" mapstructure:"url"`
	AnonKey        string `koanf:"anon_key" mapstructure:"anon_key"`
	ServiceRoleKey string `koanf:"service_role_key" mapstructure:"service_role_key"`
}

type Config struct {
	Provider Provider       `koanf:"provider" mapstructure:"provider"`
	SQLite   SQLiteConfig   `koanf:"sqlite" mapstructure:"sqlite"`
	Supabase SupabaseConfig `koanf:"supabase" mapstructure:"supabase"`
}

func DefaultConfig() Config {
	return Config{
		Provider: ProviderSupabase,
		SQLite: SQLiteConfig{
			FilePath: "./paybridge.db",
		},
	}
}

// Validate enforces the per-provider required fields. Reserved providers pass
// validation; refusing them is the registry's job, so a reserved selection
// surfaces as an unsupported-provider failure rather than a config one.
func (c *Config) Validate() error {
	if c == nil {
		return NewValidationError("config is nil")
	}
	provider := Provider(strings.TrimSpace(string(c.Provider)))
	if provider == "" {
		return NewConfigValidationError(provider, "provider")
	}
	if !provider.Known() {
		return NewConfigValidationError(provider, "provider")
	}

	switch provider {
	case ProviderSQLite:
		if strings.TrimSpace(c.SQLite.FilePath) == "" {
			return NewConfigValidationError(provider, "sqlite.file_path")
		}
	case ProviderSupabase:
		missing := []string{}
		if strings.TrimSpace(c.Supabase.URL) == "" {
			missing = append(missing, "supabase.url")
		}
		if strings.TrimSpace(c.Supabase.AnonKey) == "" {
			missing = append(missing, "supabase.anon_key")
		}
		if len(missing) > 0 {
			return NewConfigValidationError(provider, missing...)
		}
	}
	return nil
}
