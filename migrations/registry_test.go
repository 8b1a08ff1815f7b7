package migrations_test

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-paybridge/migrations"
)

func TestFilesystems_ExposesSQLiteSchema(t *testing.T) {
	specs, err := migrations.Filesystems()
	if err != nil {
		t.Fatalf("resolve filesystems: %v", err)
	}
	if len(specs) != 1 || specs[0].Dialect != migrations.DialectSQLite {
		t.Fatalf("expected a single sqlite filesystem, got %#v", specs)
	}

	matches, err := fs.Glob(specs[0].FS, "*.up.sql")
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("expected at least one sqlite migration file")
	}

	content, err := fs.ReadFile(specs[0].FS, matches[0])
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	schema := string(content)
	for _, table := range []string{"users", "customers", "products", "prices", "subscriptions", "auth_sessions"} {
		if !strings.Contains(schema, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Fatalf("expected idempotent schema for table %q", table)
		}
	}
}

func TestRegister_HandsFilesystemsToCallback(t *testing.T) {
	var dialects []string
	reg, err := migrations.Register(context.Background(), func(_ context.Context, dialect string, label string, fsys fs.FS) error {
		if fsys == nil {
			t.Fatalf("expected non-nil filesystem for %s", dialect)
		}
		if label != "go-paybridge" {
			t.Fatalf("unexpected source label %q", label)
		}
		dialects = append(dialects, dialect)
		return nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(reg.Filesystems) != 1 || len(dialects) != 1 || dialects[0] != migrations.DialectSQLite {
		t.Fatalf("expected sqlite registration, got %v / %#v", dialects, reg.Filesystems)
	}
}

func TestRegister_RequiresCallback(t *testing.T) {
	if _, err := migrations.Register(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil register function")
	}
}
