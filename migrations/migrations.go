// Package migrations embeds the versioned schema for every supported backend.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// FS returns the migration files of one backend ("postgres" or "sqlite").
func FS(backend string) (fs.FS, error) {
	sub, err := fs.Sub(files, backend)
	if err != nil {
		return nil, fmt.Errorf("migrations for %q: %w", backend, err)
	}
	return sub, nil
}
