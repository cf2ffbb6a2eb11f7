// Package migrations embebe el DDL de Postgres. Los archivos se aplican en
// orden lexicográfico y deben ser idempotentes (IF NOT EXISTS): se ejecutan
// en cada arranque.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed *.sql
var FS embed.FS

// Files devuelve los nombres de los .sql en orden de aplicación.
func Files() ([]string, error) {
	entries, err := fs.ReadDir(FS, ".")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
