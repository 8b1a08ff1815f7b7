package paybridge

import (
	"io/fs"

	"github.com/goliatone/go-paybridge/migrations"
)

// GetMigrationsFS returns the embedded sqlite migration tree. The schema
// itself lives with the migrations package; this accessor exists so embedders
// can mount the DDL without importing that package directly.
func GetMigrationsFS() fs.FS {
	return migrations.FS()
}
