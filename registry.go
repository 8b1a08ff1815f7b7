package paybridge

import (
	"context"
	"sync"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-paybridge/core"
	sqlstore "github.com/goliatone/go-paybridge/store/sql"
	supastore "github.com/goliatone/go-paybridge/store/supabase"
)

// Registry owns the singleton client. The first CreateClient installs an
// adapter for the resolved provider, every later call returns the cached
// client regardless of the config it was handed.
type Registry struct {
	mu     sync.Mutex
	logger core.Logger
	client *Client
}

type RegistryOption func(*Registry)

func WithRegistryLogger(logger core.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRegistry(options ...RegistryOption) *Registry {
	registry := &Registry{
		logger: glog.Nop(),
	}
	for _, option := range options {
		if option != nil {
			option(registry)
		}
	}
	return registry
}

// CreateClient returns the installed client, building it on first use.
// Without an explicit config the environment is resolved once, at install
// time, never lazily per call.
func (r *Registry) CreateClient(ctx context.Context, cfgs ...core.Config) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		return r.client, nil
	}

	var cfg core.Config
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	} else {
		resolved, err := core.ResolveConfig(ctx)
		if err != nil {
			return nil, err
		}
		cfg = resolved
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	data, err := r.buildAdapter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client, err := NewClient(cfg, data)
	if err != nil {
		return nil, err
	}

	r.logger.Info("data client installed", "provider", string(cfg.Provider))
	r.client = client
	return client, nil
}

func (r *Registry) buildAdapter(ctx context.Context, cfg core.Config) (core.DataClient, error) {
	switch cfg.Provider {
	case core.ProviderSQLite:
		return sqlstore.New(ctx, cfg.SQLite, sqlstore.WithLogger(r.logger))
	case core.ProviderSupabase:
		return supastore.New(cfg.Supabase, supastore.WithLogger(r.logger))
	case core.ProviderPostgres, core.ProviderMySQL:
		return nil, core.NewUnsupportedProviderError(cfg.Provider)
	default:
		return nil, core.NewUnsupportedProviderError(cfg.Provider)
	}
}

// Reset drops the installed client so the next CreateClient builds a fresh
// one. Not safe to call while operations are in flight on the old client.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		if closer, ok := r.client.data.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}
	r.client = nil
}

var defaultRegistry = NewRegistry()

// CreateClient installs or returns the package-level singleton client.
func CreateClient(ctx context.Context, cfgs ...core.Config) (*Client, error) {
	return defaultRegistry.CreateClient(ctx, cfgs...)
}

// Reset clears the package-level singleton.
func Reset() {
	defaultRegistry.Reset()
}
