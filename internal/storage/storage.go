// Package storage persists canonical documents and enforces the
// content-hash and access-key uniqueness that powers deduplication.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fiscalxml/processor/internal/model"
)

// Store is the persistence port of the processing pipeline. Insert returns
// model.ErrDuplicate when a document with the same content hash or access
// key is already stored; callers treat that as a benign skip.
type Store interface {
	Insert(ctx context.Context, doc *model.Document) (string, error)
	ExistsHash(ctx context.Context, hash string) (bool, error)
	ExistsAccessKey(ctx context.Context, key string) (bool, error)
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}

// Stats summarizes the stored corpus.
type Stats struct {
	Documents  int64                        `json:"documents"`
	Items      int64                        `json:"items"`
	ByType     map[model.DocumentType]int64 `json:"by_type"`
	TotalValue decimal.Decimal              `json:"total_value"`
}

// Config selects and configures a storage driver.
type Config struct {
	Driver string // "memory", "sqlite" or "postgres"
	Path   string // sqlite database file
	DSN    string // postgres connection string
}

// Open creates the store selected by cfg.Driver.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.Path, log)
	case "postgres":
		return OpenPostgres(ctx, cfg.DSN, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
