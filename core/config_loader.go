package core

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"
)

// ConfigProvider resolves the effective configuration at startup.
type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

// RawConfigLoader supplies an untyped configuration layer for cfgx.
type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

// EnvRawConfigLoader reads the provider discriminator and per-provider
// connection parameters from the environment. Lookup defaults to os.Getenv;
// tests swap it out.
type EnvRawConfigLoader struct {
	Lookup func(key string) string
}

func (l EnvRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	lookup := l.Lookup
	if lookup == nil {
		lookup = os.Getenv
	}
	raw := map[string]any{}
	if provider := strings.TrimSpace(lookup("DATABASE_PROVIDER")); provider != "" {
		raw["provider"] = strings.ToLower(provider)
	}
	sqlite := map[string]any{}
	if path := strings.TrimSpace(lookup("SQLITE_FILE_PATH")); path != "" {
		sqlite["file_path"] = path
	}
	if len(sqlite) > 0 {
		raw["sqlite"] = sqlite
	}
	supabase := map[string]any{}
	if url := strings.TrimSpace(lookup("SUPABASE_URL")); url != "" {
		supabase["url"] = url
	}
	if key := strings.TrimSpace(lookup("SUPABASE_ANON_KEY")); key != "" {
		supabase["anon_key"] = key
	}
	if key := strings.TrimSpace(lookup("SUPABASE_SERVICE_ROLE_KEY")); key != "" {
		supabase["service_role_key"] = key
	}
	if len(supabase) > 0 {
		raw["supabase"] = supabase
	}
	return raw, nil
}

// CfgxConfigProvider builds a validated Config from a raw layer merged over
// defaults.
type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = EnvRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ResolveConfig is the startup-time resolution path: environment over
// defaults, validated, failure is immediate.
func ResolveConfig(ctx context.Context) (Config, error) {
	return NewCfgxConfigProvider(EnvRawConfigLoader{}).Load(ctx, DefaultConfig())
}

// GoOptionsResolver merges defaults, a loaded config, and runtime overrides
// as layered scopes, then revalidates the result.
type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(string(cfg.Provider)) != "" {
		layer["provider"] = string(cfg.Provider)
	}
	if includeZero || strings.TrimSpace(cfg.SQLite.FilePath) != "" {
		layer["sqlite"] = map[string]any{
			"file_path": cfg.SQLite.FilePath,
		}
	}
	supabase := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Supabase.URL) != "" {
		supabase["url"] = cfg.Supabase.URL
	}
	if includeZero || strings.TrimSpace(cfg.Supabase.AnonKey) != "" {
		supabase["anon_key"] = cfg.Supabase.AnonKey
	}
	if includeZero || strings.TrimSpace(cfg.Supabase.ServiceRoleKey) != "" {
		supabase["service_role_key"] = cfg.Supabase.ServiceRoleKey
	}
	if len(supabase) > 0 {
		layer["supabase"] = supabase
	}
	return layer
}
