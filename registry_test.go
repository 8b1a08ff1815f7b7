package paybridge

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-paybridge/core"
)

func sqliteTestConfig(t *testing.T) core.Config {
	t.Helper()
	return core.Config{
		Provider: core.ProviderSQLite,
		SQLite: core.SQLiteConfig{
			FilePath: filepath.Join(t.TempDir(), "paybridge.db"),
		},
	}
}

func supabaseTestConfig() core.Config {
	return core.Config{
		Provider: core.ProviderSupabase,
		Supabase: core.SupabaseConfig{
			URL:     "https://demo.supabase.co",
			AnonKey: "anon-key",
		},
	}
}

func TestRegistry_CreateClientIsSingleton(t *testing.T) {
	registry := NewRegistry()
	t.Cleanup(registry.Reset)

	first, err := registry.CreateClient(context.Background(), sqliteTestConfig(t))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	// A later call returns the installed client even with a different config.
	second, err := registry.CreateClient(context.Background(), supabaseTestConfig())
	if err != nil {
		t.Fatalf("create client again: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same client instance across calls")
	}
	if second.Provider() != core.ProviderSQLite {
		t.Fatalf("expected first-installed provider to win, got %q", second.Provider())
	}
}

func TestRegistry_ResetInstallsFreshClient(t *testing.T) {
	registry := NewRegistry()
	t.Cleanup(registry.Reset)

	first, err := registry.CreateClient(context.Background(), sqliteTestConfig(t))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	registry.Reset()

	second, err := registry.CreateClient(context.Background(), supabaseTestConfig())
	if err != nil {
		t.Fatalf("create client after reset: %v", err)
	}
	if first == second {
		t.Fatalf("expected a fresh client after reset")
	}
	if second.Provider() != core.ProviderSupabase {
		t.Fatalf("expected the new config to apply after reset, got %q", second.Provider())
	}
}

func TestRegistry_RefusesReservedProviders(t *testing.T) {
	for _, provider := range []core.Provider{core.ProviderPostgres, core.ProviderMySQL} {
		registry := NewRegistry()
		_, err := registry.CreateClient(context.Background(), core.Config{Provider: provider})
		if err == nil || !core.IsUnsupportedProvider(err) {
			t.Fatalf("provider %s: expected unsupported-provider error, got %v", provider, err)
		}
	}
}

func TestRegistry_RejectsInvalidConfig(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.CreateClient(context.Background(), core.Config{Provider: core.ProviderSQLite})
	if err == nil || !core.IsConfigValidation(err) {
		t.Fatalf("expected config validation error for missing file path, got %v", err)
	}

	_, err = registry.CreateClient(context.Background(), core.Config{Provider: core.ProviderSupabase})
	if err == nil || !core.IsConfigValidation(err) {
		t.Fatalf("expected config validation error for missing supabase keys, got %v", err)
	}

	_, err = registry.CreateClient(context.Background(), core.Config{Provider: "dynamo"})
	if err == nil || !core.IsConfigValidation(err) {
		t.Fatalf("expected config validation error for unknown provider, got %v", err)
	}
}

func TestRegistry_InstallsSupabaseAdapterWithoutNetwork(t *testing.T) {
	registry := NewRegistry()
	t.Cleanup(registry.Reset)

	client, err := registry.CreateClient(context.Background(), supabaseTestConfig())
	if err != nil {
		t.Fatalf("create supabase client: %v", err)
	}
	if client.Provider() != core.ProviderSupabase {
		t.Fatalf("unexpected provider %q", client.Provider())
	}
	if client.UnderlyingClient() == nil {
		t.Fatalf("expected a backend adapter to be installed")
	}
}
