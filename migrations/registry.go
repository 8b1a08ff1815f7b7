// Package migrations exposes the embedded sqlite schema to persistence
// clients. Only the embedded provider owns DDL; the remote provider's schema
// is assumed pre-provisioned.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"
)

// migrationsFS carries the embedded sqlite schema for the embedded provider.
// The remote provider's schema is provisioned server side and ships nothing
// here.
//
//go:embed data/sql/migrations/sqlite/*.sql
var migrationsFS embed.FS

// FS returns the embedded migration tree.
func FS() fs.FS {
	return migrationsFS
}

const DialectSQLite = "sqlite"

type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

type Registration struct {
	SourceLabel string
	Filesystems []FilesystemSpec
}

type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type Option func(*Registration)

func WithSourceLabel(label string) Option {
	return func(r *Registration) {
		trimmed := strings.TrimSpace(label)
		if trimmed != "" {
			r.SourceLabel = trimmed
		}
	}
}

// Filesystems resolves the embedded migration tree into per-dialect specs.
// An alternate root may be supplied for tests.
func Filesystems(sources ...fs.FS) ([]FilesystemSpec, error) {
	root := FS()
	if len(sources) > 0 && sources[0] != nil {
		root = sources[0]
	}

	sqliteFS, err := fs.Sub(root, "data/sql/migrations/sqlite")
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite filesystem: %w", err)
	}
	matches, err := fs.Glob(sqliteFS, "*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("migrations: glob sqlite migrations: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("migrations: sqlite filesystem has no *.up.sql files")
	}

	return []FilesystemSpec{
		{
			Dialect: DialectSQLite,
			Path:    "data/sql/migrations/sqlite",
			FS:      sqliteFS,
		},
	}, nil
}

// Register hands each dialect filesystem to registerFn, typically a
// persistence client's RegisterSQLMigrations.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	reg := Registration{
		SourceLabel: "go-paybridge",
	}

	filesystems, err := Filesystems()
	if err != nil {
		return reg, err
	}
	reg.Filesystems = filesystems

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&reg)
	}

	if registerFn == nil {
		return reg, fmt.Errorf("migrations: register function is required")
	}
	for _, fsys := range reg.Filesystems {
		if err := registerFn(ctx, fsys.Dialect, reg.SourceLabel, fsys.FS); err != nil {
			return reg, fmt.Errorf("migrations: register %s (%s): %w", fsys.Dialect, fsys.Path, err)
		}
	}
	return reg, nil
}
