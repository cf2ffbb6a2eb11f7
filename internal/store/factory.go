// Package store abre el UserRepository configurado.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/aestheticops/internal/domain/repository"
	"github.com/dropDatabas3/aestheticops/internal/store/fs"
	"github.com/dropDatabas3/aestheticops/internal/store/memory"
	"github.com/dropDatabas3/aestheticops/internal/store/pg"
)

type Config struct {
	Driver   string
	DSN      string
	FSPath   string
	MaxConns int
}

// Open devuelve el repositorio según Driver: "fs" (db.json), "postgres" o
// "memory".
func Open(ctx context.Context, cfg Config) (repository.UserRepository, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "fs", "file", "json":
		return fs.New(cfg.FSPath)
	case "postgres", "pg", "postgresql":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("store: postgres driver requires a DSN")
		}
		return pg.New(ctx, cfg.DSN, pg.Options{MaxConns: cfg.MaxConns})
	case "memory", "mem":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("store: unsupported driver: %s", cfg.Driver)
	}
}
